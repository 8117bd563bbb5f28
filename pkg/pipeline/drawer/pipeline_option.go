package drawer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/pipeline/measure"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m        measure.Measure
	lastStep string
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	pd.lastStep = model.StartStep.Name

	return nil
}

func (pd *pipelineDrawer) PrepareStep(step *model.StepInfo, inputs []model.Link) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	if len(inputs) == 0 && pd.lastStep != step.Name {
		err = pd.AddLink(pd.lastStep, step.Name, "")
		if err != nil {
			return err
		}
	}

	for _, link := range inputs {
		if link.From == link.To {
			continue
		}

		err := pd.AddLink(link.From, link.To, link.Key)
		if err != nil {
			return err
		}
	}

	pd.lastStep = step.Name

	return nil
}

func (pd *pipelineDrawer) BeforeStep(ctx context.Context, _ *model.StepInfo) (context.Context, error) {
	return ctx, nil
}

func (pd *pipelineDrawer) AfterStep(context.Context, *model.StepInfo, time.Duration, error) error {
	return nil
}

func (pd *pipelineDrawer) Finish(totalDuration time.Duration) error {
	err := pd.AddLink(pd.lastStep, model.EndStep.Name, "")
	if err != nil {
		return errors.Wrap(err, "unable to link end step")
	}

	err = pd.SetTotalTime(model.EndStep.Name, totalDuration)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline after every successful run. The measure
// may be nil, otherwise it must be the one given to measure.PipelineMeasure.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
