package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/cluster"
)

func TestGalacticToICRS(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		sample  cluster.PhaseSpace
		ra, dec float64
	}{
		"galactic centre":     {sample: cluster.PhaseSpace{8000, 0, 0, 0, 0, 0}, ra: 266.405, dec: -28.936},
		"north galactic pole": {sample: cluster.PhaseSpace{0, 0, 100, 0, 0, 0}, ra: 192.859, dec: 27.128},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := cluster.GalacticToICRS{}.ToObserverFrame([]cluster.PhaseSpace{tc.sample})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.InDelta(t, tc.ra, got[0].RA, 1e-2)
			assert.InDelta(t, tc.dec, got[0].Dec, 1e-2)
		})
	}
}

func TestGalacticToICRSMotion(t *testing.T) {
	t.Parallel()

	// Receding along the line of sight only.
	got, err := cluster.GalacticToICRS{}.ToObserverFrame([]cluster.PhaseSpace{{1000, 0, 0, 10, 0, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 1000, got[0].Distance, 1e-9)
	assert.InDelta(t, 10, got[0].RadialVelocity, 1e-9)
	assert.InDelta(t, 0, got[0].PMRA, 1e-9)
	assert.InDelta(t, 0, got[0].PMDec, 1e-9)

	// 4.74 km/s tangential at 1 kpc is 1 mas/yr.
	got, err = cluster.GalacticToICRS{}.ToObserverFrame([]cluster.PhaseSpace{{0, 0, 1000, 4.740470463533348, 0, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 0, got[0].RadialVelocity, 1e-9)
	assert.InDelta(t, 1, got[0].PMRA*got[0].PMRA+got[0].PMDec*got[0].PMDec, 1e-9)
}
