// Package stellar derives the atmospheric parameters of the sampled stars.
package stellar

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/units"
)

const (
	solarTeff = 5772.0
	solarLogG = 4.438
)

// luminosity is the piecewise main-sequence mass-luminosity relation, in solar units.
func luminosity(mass float64) float64 {
	switch {
	case mass < 0.43:
		return 0.23 * math.Pow(mass, 2.3)
	case mass < 2:
		return math.Pow(mass, 4)
	case mass < 55:
		return 1.4 * math.Pow(mass, 3.5)
	default:
		return 32000 * mass
	}
}

// radius is the main-sequence mass-radius relation, in solar units.
func radius(mass float64) float64 {
	if mass < 1 {
		return math.Pow(mass, 0.8)
	}

	return math.Pow(mass, 0.57)
}

// Parameters are log10 of the effective temperature (K), surface gravity (cgs) and luminosity (solar units).
type Parameters struct {
	LogT, LogG, LogL float64
}

// ZeroAgeParameters returns the main-sequence parameters of a star of the given mass.
func ZeroAgeParameters(mass float64) Parameters {
	l, r := luminosity(mass), radius(mass)

	return Parameters{
		LogT: math.Log10(solarTeff) + 0.25*(math.Log10(l)-2*math.Log10(r)),
		LogG: solarLogG + math.Log10(mass) - 2*math.Log10(r),
		LogL: math.Log10(l),
	}
}

// MainSequence places every star on the main sequence. Stars whose lifetime
// is shorter than their age have left it and get a NaN temperature, which no
// spectral library accepts.
type MainSequence struct{}

func (MainSequence) Keys() model.Keys {
	return model.Keys{
		Reads:  []string{keys.Mass, keys.LogAge, keys.LifetimeLogAge},
		Writes: []string{keys.LogT, keys.LogG, keys.LogL},
	}
}

func (MainSequence) Transform(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
	mass, err := pipeline.Get[units.Quantity](in, keys.Mass)
	if err != nil {
		return pipeline.Data{}, err
	}

	mass, err = mass.To(units.SolarMass)
	if err != nil {
		return pipeline.Data{}, err
	}

	logAge, err := pipeline.Get[[]float64](in, keys.LogAge)
	if err != nil {
		return pipeline.Data{}, err
	}

	lifetime, err := pipeline.Get[[]float64](in, keys.LifetimeLogAge)
	if err != nil {
		return pipeline.Data{}, err
	}

	masses := mass.Values().Data()
	if len(logAge) != len(masses) || len(lifetime) != len(masses) {
		return pipeline.Data{}, errors.Wrapf(units.ErrShapeMismatch,
			"%d masses, %d ages, %d lifetimes", len(masses), len(logAge), len(lifetime))
	}

	n := len(masses)
	logT, logG, logL := make([]float64, n), make([]float64, n), make([]float64, n)

	for i, m := range masses {
		p := ZeroAgeParameters(m)
		if lifetime[i] < logAge[i] {
			p.LogT = math.NaN()
		}

		logT[i], logG[i], logL[i] = p.LogT, p.LogG, p.LogL
	}

	return in.Merge(map[string]any{
		keys.LogT: logT,
		keys.LogG: logG,
		keys.LogL: logL,
	}), nil
}

var _ pipeline.Step = MainSequence{}
