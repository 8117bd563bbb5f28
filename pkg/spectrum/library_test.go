package spectrum_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/askiada/go-clusterphot/pkg/spectrum"
	"github.com/askiada/go-clusterphot/pkg/units"
)

func TestBlackbodyInDomain(t *testing.T) {
	t.Parallel()

	bb, err := spectrum.NewBlackbody(spectrum.DefaultMinWavelength, spectrum.DefaultMaxWavelength, 100)
	require.NoError(t, err)

	mask, err := bb.InDomain(
		[]float64{3.76, math.NaN(), 5, 3.2, 4.0},
		[]float64{4.4, 4.4, 4.4, 4.4, 7},
	)
	require.NoError(t, err)
	assert.Equal(t, units.Mask{true, false, false, false, false}, mask)

	_, err = bb.InDomain([]float64{3.7}, nil)
	require.ErrorIs(t, err, units.ErrShapeMismatch)
}

func TestBlackbodyGenerate(t *testing.T) {
	t.Parallel()

	bb, err := spectrum.NewBlackbody(spectrum.DefaultMinWavelength, spectrum.DefaultMaxWavelength, 2000)
	require.NoError(t, err)

	wave, specs, err := bb.Generate([]float64{math.Log10(5772), 4}, []float64{4.44, 4}, []float64{0, 1}, []float64{0.02, 0.02})
	require.NoError(t, err)

	require.NoError(t, wave.Check(units.Signature{"angstrom": 1}))
	require.NoError(t, specs.Check(units.Signature{"erg": 1, "second": -1, "angstrom": -1}))
	assert.Equal(t, 1, wave.Values().Rows())
	assert.Equal(t, 2, specs.Values().Rows())
	assert.Equal(t, wave.Values().Cols(), specs.Values().Cols())
	assert.True(t, floats.Min(specs.Values().Data()) > 0)

	// Most of the solar luminosity is emitted inside the grid.
	total := integrate.Trapezoidal(wave.Values().Data(), specs.Values().RowView(0))
	assert.Greater(t, total, 0.95*3.828e33)
	assert.Less(t, total, 3.828e33)

	_, _, err = bb.Generate([]float64{6}, []float64{4}, []float64{0}, []float64{0})
	require.ErrorIs(t, err, spectrum.ErrOutOfDomain)

	_, _, err = bb.Generate([]float64{3.7}, []float64{4}, []float64{0}, nil)
	require.ErrorIs(t, err, units.ErrShapeMismatch)
}

func TestNewBlackbodyInvalidGrid(t *testing.T) {
	t.Parallel()

	_, err := spectrum.NewBlackbody(3000, 1000, 10)
	require.ErrorIs(t, err, spectrum.ErrInvalidGrid)

	_, err = spectrum.NewBlackbody(1000, 3000, 1)
	require.ErrorIs(t, err, spectrum.ErrInvalidGrid)
}
