// Package photometry integrates spectra through filter bands into magnitudes.
package photometry

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"

	"github.com/askiada/go-clusterphot/pkg/spectrum"
	"github.com/askiada/go-clusterphot/pkg/units"
)

const (
	// abFluxNu is 3631 Jy in erg/s/cm^2/Hz.
	abFluxNu = 3.631e-20
	// lightAA is the speed of light in angstrom/s.
	lightAA = 2.99792458e18

	vegaTemperature = 9550.0
	vegaRefWave     = 5556.0
	vegaRefFlux     = 3.44e-9
)

// Band is a filter transmission curve with its derived quantities.
// Fluxes are photon-weighted means in erg/s/cm^2/angstrom.
type Band struct {
	curve    interp.PiecewiseLinear
	name     string
	wave     []float64
	trans    []float64
	central  float64
	abZero   float64
	vegaZero float64
}

// NewBand creates a band from a transmission curve sampled on wave.
func NewBand(name string, wave units.Quantity, trans []float64) (*Band, error) {
	aa, err := wave.To(units.Angstrom)
	if err != nil {
		return nil, errors.Wrapf(err, "band %q", name)
	}

	w := append([]float64(nil), aa.Values().Data()...)
	if len(w) < 2 || len(w) != len(trans) {
		return nil, errors.Wrapf(ErrInvalidBand, "%q: %d wavelengths for %d transmissions", name, len(w), len(trans))
	}

	if !sort.Float64sAreSorted(w) {
		return nil, errors.Wrapf(ErrInvalidBand, "%q: wavelengths must increase", name)
	}

	tr := make([]float64, len(trans))
	for i, t := range trans {
		if t < 0 || math.IsNaN(t) {
			return nil, errors.Wrapf(ErrInvalidBand, "%q: transmission %g at %g angstrom", name, t, w[i])
		}

		tr[i] = t
	}

	b := &Band{name: name, wave: w, trans: tr}

	err = b.curve.Fit(w, tr)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidBand, "%q: %v", name, err)
	}

	norm := integrate.Trapezoidal(w, tr)
	if norm <= 0 {
		return nil, errors.Wrapf(ErrInvalidBand, "%q: null transmission", name)
	}

	weighted := make([]float64, len(w))
	for i := range w {
		weighted[i] = w[i] * tr[i]
	}

	b.central = integrate.Trapezoidal(w, weighted) / norm
	b.abZero = b.flux(w, tr, abSpectrum(w))
	b.vegaZero = b.flux(w, tr, vegaSpectrum(w))

	return b, nil
}

func (b *Band) Name() string { return b.name }

// Central returns the transmission-weighted mean wavelength.
func (b *Band) Central() units.Quantity {
	return units.NewQuantity(units.Scalar(b.central), units.Angstrom)
}

// ZeroPoint returns the flux of the reference spectrum of the system through the band.
func (b *Band) ZeroPoint(system System) float64 {
	if system == AB {
		return b.abZero
	}

	return b.vegaZero
}

// Transmission returns the transmission interpolated at each wavelength, zero outside the band.
func (b *Band) Transmission(wave []float64) []float64 {
	out := make([]float64, len(wave))
	last := len(b.wave) - 1

	for i, w := range wave {
		if w < b.wave[0] || w > b.wave[last] {
			continue
		}

		out[i] = b.curve.Predict(w)
	}

	return out
}

// flux is the photon-weighted mean of flam through trans on wave.
func (b *Band) flux(wave, trans, flam []float64) float64 {
	num := make([]float64, len(wave))
	den := make([]float64, len(wave))

	for i := range wave {
		den[i] = wave[i] * trans[i]
		num[i] = flam[i] * den[i]
	}

	norm := integrate.Trapezoidal(wave, den)
	if norm == 0 {
		return math.NaN()
	}

	return integrate.Trapezoidal(wave, num) / norm
}

// Flux integrates every row of flam, sampled on the wavelength grid wave, through the band.
// A band that does not overlap the grid yields NaN.
func (b *Band) Flux(wave []float64, flam units.Array) ([]float64, error) {
	if flam.Cols() != len(wave) {
		return nil, errors.Wrapf(units.ErrShapeMismatch, "%d wavelengths for %d flux columns", len(wave), flam.Cols())
	}

	trans := b.Transmission(wave)
	out := make([]float64, flam.Rows())

	for i := range out {
		out[i] = b.flux(wave, trans, flam.RowView(i))
	}

	return out, nil
}

func abSpectrum(wave []float64) []float64 {
	out := make([]float64, len(wave))
	for i, w := range wave {
		out[i] = abFluxNu * lightAA / (w * w)
	}

	return out
}

// vegaSpectrum approximates Vega by a blackbody scaled to its flux at 5556 angstrom.
func vegaSpectrum(wave []float64) []float64 {
	scale := vegaRefFlux / spectrum.Planck(vegaRefWave*1e-8, vegaTemperature)

	out := make([]float64, len(wave))
	for i, w := range wave {
		out[i] = scale * spectrum.Planck(w*1e-8, vegaTemperature)
	}

	return out
}
