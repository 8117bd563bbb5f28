package pipeline

import (
	"context"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

// Step transforms the data record of a run.
type Step interface {
	// Keys declares the data contract of the step.
	Keys() model.Keys
	// Transform reads from in and returns a new Data with the declared writes.
	Transform(ctx context.Context, in Data) (Data, error)
}

// Configurable is implemented by steps exposing parameters to SetParams.
type Configurable interface {
	Params() model.Params
}

// NamedStep associates a name with a step.
type NamedStep struct {
	Step Step
	Name string
}

// Named is a shorthand for NamedStep{Name: name, Step: step}.
func Named(name string, step Step) NamedStep {
	return NamedStep{Name: name, Step: step}
}

// Func adapts a function to the Step interface.
type Func struct {
	fn   func(ctx context.Context, in Data) (Data, error)
	keys model.Keys
}

// NewFunc creates a step from a function and its data contract.
func NewFunc(keys model.Keys, fn func(ctx context.Context, in Data) (Data, error)) *Func {
	return &Func{fn: fn, keys: keys}
}

func (f *Func) Keys() model.Keys {
	return f.keys
}

func (f *Func) Transform(ctx context.Context, in Data) (Data, error) {
	return f.fn(ctx, in)
}

var _ Step = (*Func)(nil)
