package pipeline_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

var (
	errNegativeFactor = errors.New("negative factor")
	errBeforeStep     = errors.New("before step failed")
)

// scaleStep writes y = factor * x.
type scaleStep struct {
	factor float64
	in     string
	out    string
}

func newScaleStep(in, out string, factor float64) *scaleStep {
	return &scaleStep{factor: factor, in: in, out: out}
}

func (s *scaleStep) Keys() model.Keys {
	return model.Keys{Reads: []string{s.in}, Writes: []string{s.out}}
}

func (s *scaleStep) Transform(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
	x, err := pipeline.Get[float64](in, s.in)
	if err != nil {
		return pipeline.Data{}, err
	}

	return in.With(s.out, s.factor*x), nil
}

func (s *scaleStep) Params() model.Params {
	return model.Params{
		"factor": model.TypedParam(
			func() float64 { return s.factor },
			func(v float64) error {
				if v < 0 {
					return errNegativeFactor
				}

				s.factor = v

				return nil
			},
		),
	}
}

var (
	_ pipeline.Step         = (*scaleStep)(nil)
	_ pipeline.Configurable = (*scaleStep)(nil)
)

// recordStep appends its name to the "order" key.
func recordStep(name string) pipeline.Step {
	return pipeline.NewFunc(model.Keys{Optional: []string{"order"}, Writes: []string{"order"}},
		func(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
			order, err := pipeline.GetOr(in, "order", []string{})
			if err != nil {
				return pipeline.Data{}, err
			}

			return in.With("order", append(append([]string{}, order...), name)), nil
		})
}

func failingStep(err error) pipeline.Step {
	return pipeline.NewFunc(model.Keys{}, func(context.Context, pipeline.Data) (pipeline.Data, error) {
		return pipeline.Data{}, err
	})
}

func newScalePipeline(t *testing.T, opts ...model.PipelineOption) *pipeline.Pipeline {
	t.Helper()

	pipe, err := pipeline.New([]pipeline.NamedStep{
		pipeline.Named("double", newScaleStep("x", "y", 2)),
		pipeline.Named("triple", newScaleStep("y", "z", 3)),
	}, opts...)
	require.NoError(t, err)

	return pipe
}
