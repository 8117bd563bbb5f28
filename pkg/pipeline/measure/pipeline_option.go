package measure

import (
	"context"
	"time"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.EndStep.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareStep(step *model.StepInfo, _ []model.Link) error {
	pm.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) BeforeStep(ctx context.Context, _ *model.StepInfo) (context.Context, error) {
	return ctx, nil
}

func (pm *pipelineMeasure) AfterStep(_ context.Context, step *model.StepInfo, elapsed time.Duration, stepErr error) error {
	pm.AddMetric(step.Name).AddDuration(elapsed, stepErr != nil)

	return nil
}

func (pm *pipelineMeasure) Finish(totalDuration time.Duration) error {
	pm.AddMetric(model.EndStep.Name).AddDuration(totalDuration, false)

	return nil
}

// PipelineMeasure records the duration of every step into measure.
// The total duration of successful runs is recorded under the "end" step.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
