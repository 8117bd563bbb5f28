package sqlite_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/internal/catalog"
	"github.com/askiada/go-clusterphot/internal/catalog/sqlite"
)

func openTempStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func TestRecordAndGetRun(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	run := catalog.Run{
		ID:          "run-1",
		CreatedAt:   created,
		Seed:        math.MaxUint64,
		ClusterMass: 100,
		LogAge:      8,
		Z:           0.0152,
		Law:         "fitzpatrick",
		Av:          0.3,
		Stars:       3,
		Magnitudes: map[string][]float64{
			"SDSS_g": {12.5, 14.25},
			"SDSS_r": {12, math.Inf(1)},
		},
	}

	require.NoError(t, store.RecordRun(ctx, run))

	got, err := store.Run(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, uint64(math.MaxUint64), got.Seed)
	assert.Equal(t, "fitzpatrick", got.Law)
	assert.Equal(t, 3, got.Stars)
	assert.Equal(t, []float64{12.5, 14.25}, got.Magnitudes["SDSS_g"])
	require.Len(t, got.Magnitudes["SDSS_r"], 2)
	assert.InDelta(t, 12.0, got.Magnitudes["SDSS_r"][0], 0)
	assert.True(t, math.IsNaN(got.Magnitudes["SDSS_r"][1]))

	err = store.RecordRun(ctx, run)
	require.Error(t, err)
}

func TestRunNotFound(t *testing.T) {
	t.Parallel()

	_, err := openTempStore(t).Run(context.Background(), "missing")
	require.ErrorIs(t, err, catalog.ErrRunNotFound)
}

func TestRecordRunValidation(t *testing.T) {
	t.Parallel()

	err := openTempStore(t).RecordRun(context.Background(), catalog.Run{})
	require.ErrorIs(t, err, catalog.ErrInvalidRun)
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, store.RecordRun(ctx, catalog.Run{ID: id, CreatedAt: start.Add(time.Duration(i) * time.Minute)}))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
	assert.Nil(t, runs[0].Magnitudes)

	_, err = store.ListRuns(ctx, 0)
	require.ErrorIs(t, err, catalog.ErrInvalidLimit)
}

func TestReopenKeepsRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.RecordRun(ctx, catalog.Run{ID: "kept"}))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(ctx, path)
	require.NoError(t, err)

	defer store.Close()

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "kept", runs[0].ID)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := sqlite.Open(context.Background(), " ")
	require.Error(t, err)
}
