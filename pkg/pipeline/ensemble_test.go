package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/pipeline"
)

func TestRunEnsemble(t *testing.T) {
	t.Parallel()

	runs := make([]pipeline.EnsembleRun, 5)
	for i := range runs {
		runs[i] = pipeline.EnsembleRun{
			Pipeline: newScalePipeline(t),
			Input:    pipeline.NewData(map[string]any{"x": float64(i)}),
		}
	}

	results, err := pipeline.RunEnsemble(context.Background(), runs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(runs))

	for i, out := range results {
		z, err := pipeline.Get[float64](out, "z")
		require.NoError(t, err)
		assert.InDelta(t, 6*float64(i), z, 0)
	}
}

func TestRunEnsembleSharedPipeline(t *testing.T) {
	t.Parallel()

	pipe := newScalePipeline(t)
	input := pipeline.NewData(map[string]any{"x": 1.0})

	_, err := pipeline.RunEnsemble(context.Background(), []pipeline.EnsembleRun{
		{Pipeline: pipe, Input: input},
		{Pipeline: pipe, Input: input},
	}, 2)
	require.ErrorIs(t, err, pipeline.ErrSharedPipeline)
}

func TestRunEnsembleErrors(t *testing.T) {
	t.Parallel()

	_, err := pipeline.RunEnsemble(context.Background(), []pipeline.EnsembleRun{{}}, 1)
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)

	results, err := pipeline.RunEnsemble(context.Background(), []pipeline.EnsembleRun{
		{Pipeline: newScalePipeline(t), Input: pipeline.NewData(map[string]any{"x": 1.0})},
		{Pipeline: newScalePipeline(t), Input: pipeline.Data{}},
	}, 0)
	require.ErrorIs(t, err, pipeline.ErrMissingKey)
	assert.Contains(t, err.Error(), "run 1")
	assert.Nil(t, results)
}
