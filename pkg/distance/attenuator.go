// Package distance turns the luminosity spectra emitted by the stars into the
// flux received at the observer.
package distance

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/units"
)

var spectraUnits = units.Signature{"erg": 1, "second": -1, "angstrom": -1}

// Attenuator is the pipeline step applying the inverse-square law.
//
// When no dust step ran, flam_dust is computed from the unattenuated spectra
// and equals flam.
type Attenuator struct{}

// FluxAt returns L / (4 pi d^2) for every spectrum row, with distances given as
// an n x 1 column aligned with the rows.
func FluxAt(specs, dist units.Quantity) (units.Quantity, error) {
	err := specs.Check(spectraUnits)
	if err != nil {
		return units.Quantity{}, err
	}

	cm, err := dist.To(units.Centimeter)
	if err != nil {
		return units.Quantity{}, errors.Wrap(err, "unable to convert distance")
	}

	area := units.NewQuantity(cm.Values().Map(func(d float64) float64 { return 4 * math.Pi * d * d }), units.Centimeter.Pow(2))

	flux, err := specs.Div(area)
	if err != nil {
		return units.Quantity{}, err
	}

	err = flux.Check(units.FluxDensity.Signature())
	if err != nil {
		return units.Quantity{}, errors.Wrap(err, "flux at observer")
	}

	return flux, nil
}

func (Attenuator) Keys() model.Keys {
	return model.Keys{
		Reads:    []string{keys.Distance, keys.Specs, keys.Mask},
		Optional: []string{keys.SpecsDust, keys.DustApplied},
		Writes:   []string{keys.Flam, keys.FlamDust},
	}
}

func (Attenuator) Transform(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
	dist, err := pipeline.Get[units.Quantity](in, keys.Distance)
	if err != nil {
		return pipeline.Data{}, err
	}

	specs, err := pipeline.Get[units.Quantity](in, keys.Specs)
	if err != nil {
		return pipeline.Data{}, err
	}

	mask, err := pipeline.Get[units.Mask](in, keys.Mask)
	if err != nil {
		return pipeline.Data{}, err
	}

	dustApplied, err := pipeline.GetOr(in, keys.DustApplied, false)
	if err != nil {
		return pipeline.Data{}, err
	}

	dust := specs
	if dustApplied {
		dust, err = pipeline.Get[units.Quantity](in, keys.SpecsDust)
		if err != nil {
			return pipeline.Data{}, err
		}
	}

	if dist.Values().Cols() != 1 {
		return pipeline.Data{}, errors.Wrapf(units.ErrShapeMismatch, "distance of shape (%d, %d), want a column",
			dist.Values().Rows(), dist.Values().Cols())
	}

	// Keep only the stars that have a spectrum so rows stay aligned.
	dist, err = dist.SelectRows(mask)
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "unable to mask distance")
	}

	flam, err := FluxAt(specs, dist)
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "specs")
	}

	flamDust, err := FluxAt(dust, dist)
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "specs_dust")
	}

	return in.Merge(map[string]any{
		keys.Flam:     flam,
		keys.FlamDust: flamDust,
	}), nil
}

var _ pipeline.Step = Attenuator{}
