package cluster_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/cluster"
	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/units"
)

func diagonalCov(pos, vel float64) []float64 {
	cov := make([]float64, 36)
	for i := 0; i < 6; i++ {
		v := pos
		if i >= 3 {
			v = vel
		}

		cov[i*6+i] = v
	}

	return cov
}

func testConfig() cluster.Config {
	return cluster.Config{
		Mu:          []float64{500, 100, 20, -10, 5, 2},
		Cov:         diagonalCov(4, 1),
		ClusterMass: 100,
		LogAge:      8,
		Z:           0.0152,
		Seed:        42,
	}
}

func TestSamplerTransform(t *testing.T) {
	t.Parallel()

	sampler, err := cluster.NewSampler(testConfig(), cluster.WithIMF(cluster.FixedIMF{2, 0.5, 1}))
	require.NoError(t, err)

	out, err := sampler.Transform(context.Background(), pipeline.NewData(nil))
	require.NoError(t, err)

	mass, err := pipeline.Get[units.Quantity](out, keys.Mass)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 2}, mass.Values().Data())
	assert.True(t, mass.Unit().Equal(units.SolarMass))

	distance, err := pipeline.Get[units.Quantity](out, keys.Distance)
	require.NoError(t, err)
	require.Equal(t, 3, distance.Values().Rows())
	require.NoError(t, distance.Check(units.Signature{"parsec": 1}))

	for _, d := range distance.Values().Data() {
		assert.InDelta(t, math.Sqrt(500*500+100*100+20*20), d, 20)
	}

	lifetime, err := pipeline.Get[[]float64](out, keys.LifetimeLogAge)
	require.NoError(t, err)
	assert.InDelta(t, 10+2.5*math.Log10(2), lifetime[0], 1e-12)
	assert.InDelta(t, 10, lifetime[1], 1e-12)

	logAge, err := pipeline.Get[[]float64](out, keys.LogAge)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 8, 8}, logAge)

	z, err := pipeline.Get[[]float64](out, keys.Z)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0152, 0.0152, 0.0152}, z)

	sky, err := pipeline.Get[[]cluster.SkyCoord](out, keys.SkyCoords)
	require.NoError(t, err)
	assert.Len(t, sky, 3)
	assert.Len(t, sampler.Samples(), 3)
	assert.Equal(t, []float64{0.5, 1, 2}, sampler.Masses())
}

func TestSamplerDeterministic(t *testing.T) {
	t.Parallel()

	run := func() []float64 {
		sampler, err := cluster.NewSampler(testConfig())
		require.NoError(t, err)

		out, err := sampler.Transform(context.Background(), pipeline.NewData(nil))
		require.NoError(t, err)

		distance, err := pipeline.Get[units.Quantity](out, keys.Distance)
		require.NoError(t, err)

		return distance.Values().Data()
	}

	first := run()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, run())
}

func TestNewSamplerInvalidConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate  func(c *cluster.Config)
		wantErr error
	}{
		"short mu":  {mutate: func(c *cluster.Config) { c.Mu = c.Mu[:3] }, wantErr: cluster.ErrInvalidGeometry},
		"short cov": {mutate: func(c *cluster.Config) { c.Cov = c.Cov[:6] }, wantErr: cluster.ErrInvalidGeometry},
		"no mass":   {mutate: func(c *cluster.Config) { c.ClusterMass = 0 }, wantErr: cluster.ErrInvalidMass},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tc.mutate(&cfg)

			_, err := cluster.NewSampler(cfg)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSamplerSingularCovariance(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Cov = make([]float64, 36)

	sampler, err := cluster.NewSampler(cfg, cluster.WithIMF(cluster.FixedIMF{1}))
	require.NoError(t, err)

	_, err = sampler.Transform(context.Background(), pipeline.NewData(nil))
	require.ErrorIs(t, err, cluster.ErrInvalidCovariance)
}

func TestSamplerParams(t *testing.T) {
	t.Parallel()

	sampler, err := cluster.NewSampler(testConfig())
	require.NoError(t, err)

	params := sampler.Params()
	require.NoError(t, params["cluster_mass"].Set(250.0))
	assert.Equal(t, 250.0, params["cluster_mass"].Get())

	require.ErrorIs(t, params["cluster_mass"].Set(-1.0), cluster.ErrInvalidMass)
	assert.Equal(t, 250.0, params["cluster_mass"].Get())

	require.ErrorIs(t, params["mu"].Set([]float64{1}), cluster.ErrInvalidGeometry)
}
