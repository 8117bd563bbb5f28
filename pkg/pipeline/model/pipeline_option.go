package model

import (
	"context"
	"time"
)

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStep runs once per step when the pipeline is built.
	PrepareStep(step *StepInfo, inputs []Link) error
	// BeforeStep runs before every step execution. The returned context is passed to the step.
	BeforeStep(ctx context.Context, step *StepInfo) (context.Context, error)
	// AfterStep runs after every step execution, stepErr is the error returned by the step.
	AfterStep(ctx context.Context, step *StepInfo, elapsed time.Duration, stepErr error) error
	// Finish runs after a successful run.
	Finish(totalDuration time.Duration) error
}
