package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// EnsembleRun is one member of an ensemble.
type EnsembleRun struct {
	Pipeline *Pipeline
	Input    Data
}

// RunEnsemble runs independent pipelines with at most concurrent runs in flight.
// Results are returned in the order of runs. Steps are not safe to share across
// concurrent runs, so every run must own its pipeline.
func RunEnsemble(ctx context.Context, runs []EnsembleRun, concurrent int) ([]Data, error) {
	seen := make(map[*Pipeline]int, len(runs))

	for i, run := range runs {
		if run.Pipeline == nil {
			return nil, errors.Wrapf(ErrPipelineMustBeSet, "run %d", i)
		}

		if j, ok := seen[run.Pipeline]; ok {
			return nil, errors.Wrapf(ErrSharedPipeline, "runs %d and %d", j, i)
		}

		seen[run.Pipeline] = i
	}

	if concurrent <= 0 {
		concurrent = 1
	}

	results := make([]Data, len(runs))

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrent)

	for i, run := range runs {
		errGrp.Go(func() error {
			out, err := run.Pipeline.Run(dCtx, run.Input)
			if err != nil {
				return errors.Wrapf(err, "run %d", i)
			}

			results[i] = out

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, err
	}

	return results, nil
}
