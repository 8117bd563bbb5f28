package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/units"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	required := units.Signature{"erg": 1, "second": -1, "angstrom": -1}

	tcs := map[string]struct {
		sig     units.Signature
		wantErr bool
	}{
		"exact":         {sig: units.LuminosityDensity.Signature()},
		"superset":      {sig: units.FluxDensity.Signature()},
		"missing entry": {sig: units.Signature{"erg": 1, "second": -1}, wantErr: true},
		"wrong power":   {sig: units.Signature{"erg": 1, "second": -2, "angstrom": -1}, wantErr: true},
		"empty":         {sig: units.Signature{}, wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := units.Check(tc.sig, required)
			if !tc.wantErr {
				assert.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, units.ErrUnitMismatch)

			var mismatch *units.MismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Contains(t, err.Error(), mismatch.Unit)
		})
	}
}

func TestCheckReportsActualSignature(t *testing.T) {
	t.Parallel()

	err := units.Angstrom.Check(units.Signature{"centimeter": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "centimeter not found")
	assert.Contains(t, err.Error(), "angstrom")
}

func TestUnitArithmetic(t *testing.T) {
	t.Parallel()

	flux := units.FluxDensity
	assert.Equal(t, units.Signature{"erg": 1, "second": -1, "centimeter": -2, "angstrom": -1}, flux.Signature())
	assert.True(t, units.Angstrom.Div(units.Angstrom).Equal(units.Dimensionless))
	assert.Equal(t, units.Dimension{2, 1, -2, 0}, units.Erg.Dimension())
	assert.True(t, units.Angstrom.Div(units.Centimeter).Dimension().IsZero())
}

func TestNewUnknownUnit(t *testing.T) {
	t.Parallel()

	_, err := units.New(units.Signature{"furlong": 1})
	require.ErrorIs(t, err, units.ErrUnknownUnit)
}

func TestConversionFactor(t *testing.T) {
	t.Parallel()

	factor, err := units.ConversionFactor(units.Parsec, units.Centimeter)
	require.NoError(t, err)
	assert.InEpsilon(t, 3.0856775814913673e18, factor, 1e-12)

	factor, err = units.ConversionFactor(units.Micron, units.Angstrom)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e4, factor, 1e-12)

	_, err = units.ConversionFactor(units.Parsec, units.Second)
	require.ErrorIs(t, err, units.ErrIncompatibleUnits)
}
