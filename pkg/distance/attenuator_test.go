package distance_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/distance"
	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/units"
)

const parsecCm = 3.0856775814913673e18

func luminosity(t *testing.T, rows int) units.Quantity {
	t.Helper()

	values := make([]float64, rows*3)
	for i := range values {
		values[i] = 1e33
	}

	arr, err := units.NewArray(rows, 3, values)
	require.NoError(t, err)

	return units.NewQuantity(arr, units.LuminosityDensity)
}

func TestFluxAt(t *testing.T) {
	t.Parallel()

	dist := units.NewQuantity(units.Column([]float64{10, 100}), units.Parsec)
	flux, err := distance.FluxAt(luminosity(t, 2), dist)
	require.NoError(t, err)

	require.NoError(t, flux.Check(units.Signature{"erg": 1, "second": -1, "centimeter": -2, "angstrom": -1}))
	want := 1e33 / (4 * math.Pi * (10 * parsecCm) * (10 * parsecCm))
	assert.InEpsilon(t, want, flux.Values().At(0, 0), 1e-9)
	assert.InEpsilon(t, want/100, flux.Values().At(1, 2), 1e-9)

	_, err = distance.FluxAt(luminosity(t, 2).Retag(units.Erg), dist)
	require.ErrorIs(t, err, units.ErrUnitMismatch)

	_, err = distance.FluxAt(luminosity(t, 2), dist.Retag(units.Second))
	require.ErrorIs(t, err, units.ErrIncompatibleUnits)
}

func TestFluxDecreasesWithDistance(t *testing.T) {
	t.Parallel()

	var prev float64

	for i, d := range []float64{1, 10, 1e3, 1e5} {
		flux, err := distance.FluxAt(luminosity(t, 1), units.NewQuantity(units.Column([]float64{d}), units.Parsec))
		require.NoError(t, err)

		got := flux.Values().At(0, 0)
		if i > 0 {
			assert.Less(t, got, prev)
		}

		prev = got
	}
}

func TestAttenuatorTransform(t *testing.T) {
	t.Parallel()

	specs := luminosity(t, 2)
	dust := specs.Scale(0.5)

	tcs := map[string]struct {
		extra     map[string]any
		wantRatio float64
	}{
		"no dust step": {
			extra:     map[string]any{},
			wantRatio: 1,
		},
		"dust applied": {
			extra:     map[string]any{keys.SpecsDust: dust, keys.DustApplied: true},
			wantRatio: 0.5,
		},
		"stale dust ignored": {
			extra:     map[string]any{keys.SpecsDust: dust},
			wantRatio: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			in := pipeline.NewData(map[string]any{
				keys.Distance: units.NewQuantity(units.Column([]float64{10, 1e6, 20}), units.Parsec),
				keys.Specs:    specs,
				keys.Mask:     units.Mask{true, false, true},
			}).Merge(tc.extra)

			out, err := distance.Attenuator{}.Transform(context.Background(), in)
			require.NoError(t, err)

			flam, err := pipeline.Get[units.Quantity](out, keys.Flam)
			require.NoError(t, err)
			flamDust, err := pipeline.Get[units.Quantity](out, keys.FlamDust)
			require.NoError(t, err)

			assert.Equal(t, 2, flam.Values().Rows())
			// Masked rows pair the first spectrum with 10 pc and the second with 20 pc.
			assert.InEpsilon(t, 4, flam.Values().At(0, 0)/flam.Values().At(1, 0), 1e-9)

			for i, v := range flamDust.Values().Data() {
				assert.InEpsilon(t, tc.wantRatio, v/flam.Values().Data()[i], 1e-12)
			}
		})
	}
}

func TestAttenuatorUnitMismatch(t *testing.T) {
	t.Parallel()

	in := pipeline.NewData(map[string]any{
		keys.Distance: units.NewQuantity(units.Column([]float64{10}), units.Parsec),
		keys.Specs:    luminosity(t, 1).Retag(units.Erg.Div(units.Second)),
		keys.Mask:     units.Mask{true},
	})

	_, err := distance.Attenuator{}.Transform(context.Background(), in)
	require.ErrorIs(t, err, units.ErrUnitMismatch)
}
