package clustersim

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/internal/catalog/sqlite"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("CLUSTERSIM_EXTINCTION_LAW", "cardelli")

	fs := flag.NewFlagSet("clustersim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-seed", "3", "-av", "0.5", "-filters", "SDSS_g, SDSS_r,", "-runs", "2"})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), cfg.Simulation.Seed)
	assert.InDelta(t, 0.5, cfg.Simulation.Av, 1e-12)
	assert.Equal(t, "cardelli", cfg.Simulation.Law)
	assert.Equal(t, []string{"SDSS_g", "SDSS_r"}, cfg.Simulation.Filters)
	assert.Equal(t, 2, cfg.Runs)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestParseConfigInvalid(t *testing.T) {
	tcs := map[string][]string{
		"zero runs":        {"-runs", "0"},
		"zero concurrency": {"-concurrency", "0"},
		"list without db":  {"-list", "3"},
		"negative list":    {"-list", "-1", "-db", "runs.db"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			fs := flag.NewFlagSet("clustersim", flag.ContinueOnError)
			_, err := ParseConfig(fs, args)
			require.ErrorIs(t, err, ErrInvalidFlag)
		})
	}
}

func TestRun(t *testing.T) {
	t.Setenv("CLUSTERSIM_OTEL_ENDPOINT", "")

	dot := filepath.Join(t.TempDir(), "pipeline.dot")

	fs := flag.NewFlagSet("clustersim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-mass", "20", "-filters", "SDSS_g,GROUND_JOHNSON_V", "-runs", "2", "-concurrency", "2", "-draw", dot, "-measure"})
	require.NoError(t, err)

	var out, logs bytes.Buffer

	require.NoError(t, Run(context.Background(), cfg, &out, &logs))

	assert.Contains(t, out.String(), "# run ")
	assert.Contains(t, out.String(), "SDSS_g")
	assert.Contains(t, out.String(), "GROUND_JOHNSON_V")
	assert.Contains(t, out.String(), "photometry")

	content, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Contains(t, string(content), "digraph")
	assert.Contains(t, string(content), "specs")
}

func TestRunRecordsCatalog(t *testing.T) {
	t.Setenv("CLUSTERSIM_OTEL_ENDPOINT", "")

	db := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("CLUSTERSIM_DB", db)

	fs := flag.NewFlagSet("clustersim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-mass", "20", "-filters", "SDSS_g", "-runs", "2", "-seed", "7"})
	require.NoError(t, err)
	assert.Equal(t, db, cfg.Database)

	var out, logs bytes.Buffer

	require.NoError(t, Run(context.Background(), cfg, &out, &logs))

	store, err := sqlite.Open(context.Background(), db)
	require.NoError(t, err)

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 2)

	seeds := []uint64{runs[0].Seed, runs[1].Seed}
	assert.ElementsMatch(t, []uint64{7, 8}, seeds)
	assert.Equal(t, "fitzpatrick", runs[0].Law)

	fs = flag.NewFlagSet("clustersim", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-list", "5"})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, Run(context.Background(), cfg, &out, &logs))
	assert.Contains(t, out.String(), "# run")
	assert.Contains(t, out.String(), runs[0].ID)
	assert.Contains(t, out.String(), runs[1].ID)
}
