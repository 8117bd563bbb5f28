// Package trace provides a pipeline option opening an OpenTelemetry span around every step.
package trace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

const instrumentationName = "github.com/askiada/go-clusterphot/pkg/pipeline"

type pipelineTracer struct {
	tracer oteltrace.Tracer
}

func (pt *pipelineTracer) New() error {
	return nil
}

func (pt *pipelineTracer) PrepareStep(*model.StepInfo, []model.Link) error {
	return nil
}

func (pt *pipelineTracer) BeforeStep(ctx context.Context, step *model.StepInfo) (context.Context, error) {
	ctx, _ = pt.tracer.Start(ctx, step.Name,
		oteltrace.WithAttributes(
			attribute.Int("pipeline.step.index", step.Index),
			attribute.StringSlice("pipeline.step.reads", step.Keys.Reads),
			attribute.StringSlice("pipeline.step.writes", step.Keys.Writes),
		),
	)

	return ctx, nil
}

func (pt *pipelineTracer) AfterStep(ctx context.Context, _ *model.StepInfo, _ time.Duration, stepErr error) error {
	span := oteltrace.SpanFromContext(ctx)
	if stepErr != nil {
		span.RecordError(stepErr)
		span.SetStatus(codes.Error, stepErr.Error())
	}

	span.End()

	return nil
}

func (pt *pipelineTracer) Finish(time.Duration) error {
	return nil
}

// PipelineTracer traces every step with the given provider. A nil provider
// uses the global one registered with otel.SetTracerProvider.
func PipelineTracer(provider oteltrace.TracerProvider) model.PipelineOption {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &pipelineTracer{tracer: provider.Tracer(instrumentationName)}
}
