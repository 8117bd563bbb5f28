package cluster_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/cluster"
)

func TestKroupaSample(t *testing.T) {
	t.Parallel()

	kroupa, err := cluster.NewKroupa(rand.New(rand.NewPCG(1, 2)), 0.03, 120)
	require.NoError(t, err)

	masses, err := kroupa.Sample(500)
	require.NoError(t, err)
	require.NotEmpty(t, masses)

	sum := 0.0
	for _, m := range masses {
		assert.GreaterOrEqual(t, m, 0.03)
		assert.LessOrEqual(t, m, 120.0)

		sum += m
	}

	assert.InDelta(t, 500, sum, 120)
}

func TestKroupaDeterministic(t *testing.T) {
	t.Parallel()

	sample := func() []float64 {
		kroupa, err := cluster.NewKroupa(rand.New(rand.NewPCG(7, 7)), 0.1, 50)
		require.NoError(t, err)

		masses, err := kroupa.Sample(100)
		require.NoError(t, err)

		return masses
	}

	assert.Equal(t, sample(), sample())
}

func TestKroupaErrors(t *testing.T) {
	t.Parallel()

	_, err := cluster.NewKroupa(rand.New(rand.NewPCG(1, 1)), 1, 0.5)
	require.ErrorIs(t, err, cluster.ErrInvalidMassRange)

	kroupa, err := cluster.NewKroupa(rand.New(rand.NewPCG(1, 1)), 0.1, 1)
	require.NoError(t, err)

	_, err = kroupa.Sample(0)
	require.ErrorIs(t, err, cluster.ErrInvalidMass)
}

func TestFixedIMF(t *testing.T) {
	t.Parallel()

	imf := cluster.FixedIMF{2, 1}
	got, err := imf.Sample(100)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, got)

	got[0] = 5
	assert.Equal(t, 2.0, imf[0])
}
