package spectrum

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/askiada/go-clusterphot/pkg/units"
)

// Interpolator is a spectral library.
type Interpolator interface {
	// InDomain reports which (logT, logg) points the library supports.
	InDomain(logT, logg []float64) (units.Mask, error)
	// Generate returns the shared wavelength grid (1 x w, angstrom) and one
	// spectrum per star (n x w, erg/s/angstrom). Every star must be in the domain.
	Generate(logT, logg, logL, z []float64) (units.Quantity, units.Quantity, error)
}

const (
	DefaultMinWavelength = 1000.0
	DefaultMaxWavelength = 30000.0
	DefaultBins          = 500

	planckH     = 6.62607015e-27 // erg s
	lightSpeed  = 2.99792458e10  // cm/s
	boltzmannK  = 1.380649e-16   // erg/K
	stefanSigma = 5.670374419e-5 // erg/s/cm^2/K^4
	solarLumErg = 3.828e33       // erg/s
	cmPerAA     = 1e-8
)

// Blackbody is a spectral library emitting Planck spectra normalised to the
// star luminosity. Metallicity is ignored.
type Blackbody struct {
	wave             []float64
	minLogT, maxLogT float64
	minLogG, maxLogG float64
}

// NewBlackbody creates a blackbody library on a log-spaced wavelength grid in angstrom.
func NewBlackbody(minWave, maxWave float64, bins int) (*Blackbody, error) {
	if minWave <= 0 || maxWave <= minWave || bins < 2 {
		return nil, errors.Wrapf(ErrInvalidGrid, "[%g, %g] with %d bins", minWave, maxWave, bins)
	}

	return &Blackbody{
		wave:    floats.LogSpan(make([]float64, bins), minWave, maxWave),
		minLogT: 3.4,
		maxLogT: 4.7,
		minLogG: -0.5,
		maxLogG: 6,
	}, nil
}

func (b *Blackbody) InDomain(logT, logg []float64) (units.Mask, error) {
	if len(logT) != len(logg) {
		return nil, errors.Wrapf(units.ErrShapeMismatch, "%d temperatures for %d gravities", len(logT), len(logg))
	}

	mask := make(units.Mask, len(logT))
	for i := range logT {
		// NaN fails every comparison and stays outside.
		mask[i] = logT[i] >= b.minLogT && logT[i] <= b.maxLogT && logg[i] >= b.minLogG && logg[i] <= b.maxLogG
	}

	return mask, nil
}

func (b *Blackbody) Generate(logT, logg, logL, z []float64) (units.Quantity, units.Quantity, error) {
	n := len(logT)
	if len(logg) != n || len(logL) != n || len(z) != n {
		return units.Quantity{}, units.Quantity{}, errors.Wrapf(units.ErrShapeMismatch,
			"%d temperatures, %d gravities, %d luminosities, %d metallicities", n, len(logg), len(logL), len(z))
	}

	mask, err := b.InDomain(logT, logg)
	if err != nil {
		return units.Quantity{}, units.Quantity{}, err
	}

	if mask.Count() != n {
		return units.Quantity{}, units.Quantity{}, errors.Wrapf(ErrOutOfDomain, "%d of %d stars", n-mask.Count(), n)
	}

	flux := units.Zeros(n, len(b.wave))
	for i := 0; i < n; i++ {
		temp := math.Pow(10, logT[i])
		lum := math.Pow(10, logL[i]) * solarLumErg
		row := flux.RowView(i)

		for j, w := range b.wave {
			row[j] = lum * math.Pi * Planck(w*cmPerAA, temp) / (stefanSigma * math.Pow(temp, 4)) * cmPerAA
		}
	}

	wave := units.NewQuantity(units.Row(b.wave), units.Angstrom)

	return wave, units.NewQuantity(flux, units.LuminosityDensity), nil
}

// Planck is the spectral radiance B_lambda in erg/s/cm^2/sr/cm for a wavelength in cm.
func Planck(lambda, temp float64) float64 {
	x := planckH * lightSpeed / (lambda * boltzmannK * temp)

	return 2 * planckH * lightSpeed * lightSpeed / math.Pow(lambda, 5) / math.Expm1(x)
}

var _ Interpolator = (*Blackbody)(nil)
