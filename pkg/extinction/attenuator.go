package extinction

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
	DefaultLaw = "fitzpatrick"
	DefaultAv  = 0.0
	DefaultRv  = 3.1
)

var (
	wavelengthUnits = units.Signature{"angstrom": 1}
	spectraUnits    = units.Signature{"erg": 1, "second": -1, "angstrom": -1}
)

// Config selects the extinction law by name.
type Config struct {
	Law string
}

// Attenuator is the pipeline step applying dust extinction to the spectra.
type Attenuator struct {
	law Law
	fn  Func
}

// NewAttenuator creates an attenuator. An empty law name selects DefaultLaw.
func NewAttenuator(cfg Config) (*Attenuator, error) {
	a := &Attenuator{}

	name := cfg.Law
	if name == "" {
		name = DefaultLaw
	}

	err := a.setLaw(name)
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Attenuator) setLaw(name string) error {
	law, err := ParseLaw(name)
	if err != nil {
		return err
	}

	fn, err := law.Func()
	if err != nil {
		return err
	}

	a.law, a.fn = law, fn

	return nil
}

// Law returns the active law.
func (a *Attenuator) Law() Law {
	return a.law
}

// ApplyExtinction returns a copy of specs attenuated by the law.
//
// av and rv hold either a single value applied to every spectrum, or one value
// per spectrum row. A single value may be mixed with a per-row slice.
func (a *Attenuator) ApplyExtinction(wave, specs units.Quantity, av, rv []float64) (units.Quantity, error) {
	err := wave.Check(wavelengthUnits)
	if err != nil {
		return units.Quantity{}, errors.Wrap(err, "wavelength")
	}

	err = specs.Check(spectraUnits)
	if err != nil {
		return units.Quantity{}, errors.Wrap(err, "spectra")
	}

	grid := wave.Values()
	if grid.Rows() != 1 || grid.Cols() != specs.Values().Cols() {
		return units.Quantity{}, errors.Wrapf(units.ErrShapeMismatch, "wavelength (%d, %d) for spectra (%d, %d)",
			grid.Rows(), grid.Cols(), specs.Values().Rows(), specs.Values().Cols())
	}

	rows, err := reddeningRows(len(av), len(rv), specs.Values().Rows())
	if err != nil {
		return units.Quantity{}, err
	}

	factor := units.Zeros(rows, grid.Cols())
	for i := 0; i < rows; i++ {
		tau, err := a.fn(grid.Data(), at(av, i), at(rv, i))
		if err != nil {
			return units.Quantity{}, errors.Wrapf(err, "unable to compute %s extinction", a.law)
		}

		row := factor.RowView(i)
		for j, t := range tau {
			row[j] = math.Exp(-t)
		}
	}

	// A 1 x w factor broadcasts over every spectrum, an n x w factor is applied row by row.
	return specs.Apply(factor)
}

func at(values []float64, i int) float64 {
	if len(values) == 1 {
		return values[0]
	}

	return values[i]
}

// reddeningRows returns the number of attenuation curves to compute.
func reddeningRows(nav, nrv, nspecs int) (int, error) {
	for _, n := range []int{nav, nrv} {
		if n != 1 && n != nspecs {
			return 0, errors.Wrapf(units.ErrShapeMismatch, "%d reddening values for %d spectra", n, nspecs)
		}
	}

	if nav == 1 && nrv == 1 {
		return 1, nil
	}

	return nspecs, nil
}

func (a *Attenuator) Keys() model.Keys {
	return model.Keys{
		Reads:    []string{keys.Wavelength, keys.Specs},
		Optional: []string{keys.Av, keys.Rv, keys.Mask},
		Writes:   []string{keys.SpecsDust, keys.DustApplied},
	}
}

func (a *Attenuator) Transform(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
	wave, err := pipeline.Get[units.Quantity](in, keys.Wavelength)
	if err != nil {
		return pipeline.Data{}, err
	}

	specs, err := pipeline.Get[units.Quantity](in, keys.Specs)
	if err != nil {
		return pipeline.Data{}, err
	}

	mask, err := pipeline.GetOr(in, keys.Mask, units.AllTrue(specs.Values().Rows()))
	if err != nil {
		return pipeline.Data{}, err
	}

	av, err := reddening(in, keys.Av, DefaultAv, mask)
	if err != nil {
		return pipeline.Data{}, err
	}

	rv, err := reddening(in, keys.Rv, DefaultRv, mask)
	if err != nil {
		return pipeline.Data{}, err
	}

	dust, err := a.ApplyExtinction(wave, specs, av, rv)
	if err != nil {
		return pipeline.Data{}, err
	}

	return in.Merge(map[string]any{
		keys.SpecsDust:   dust,
		keys.DustApplied: true,
	}), nil
}

// reddening reads a scalar or per-star value. Per-star values are aligned with
// the sampled stars and restricted to the stars that have a spectrum.
func reddening(in pipeline.Data, key string, def float64, mask units.Mask) ([]float64, error) {
	raw, ok := in.Value(key)
	if !ok {
		return []float64{def}, nil
	}

	switch v := raw.(type) {
	case float64:
		return []float64{v}, nil
	case []float64:
		if len(v) == 1 {
			return v, nil
		}

		selected, err := mask.Select(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", key)
		}

		return selected, nil
	}

	return nil, errors.Wrapf(pipeline.ErrKeyType, "%q holds %T, want float64 or []float64", key, raw)
}

// Params exposes law.
func (a *Attenuator) Params() model.Params {
	return model.Params{
		"law": model.TypedParam(
			func() string { return a.law.String() },
			a.setLaw,
		),
	}
}

var (
	_ pipeline.Step         = (*Attenuator)(nil)
	_ pipeline.Configurable = (*Attenuator)(nil)
)
