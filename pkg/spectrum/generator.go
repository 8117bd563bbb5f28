package spectrum

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/units"
)

// DefaultLibrary is the library used when none is configured.
const DefaultLibrary = "blackbody"

// Factory builds a spectral library.
type Factory func() (Interpolator, error)

func builtinLibraries() map[string]Factory {
	return map[string]Factory{
		DefaultLibrary: func() (Interpolator, error) {
			return NewBlackbody(DefaultMinWavelength, DefaultMaxWavelength, DefaultBins)
		},
	}
}

// Generator is the pipeline step producing one spectrum per star inside the
// library domain.
type Generator struct {
	libraries map[string]Factory
	lib       Interpolator
	logger    *slog.Logger
	name      string
}

type Option func(g *Generator)

// WithLibrary registers an additional library under name.
func WithLibrary(name string, factory Factory) Option {
	return func(g *Generator) {
		g.libraries[name] = factory
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator using the library registered under stellib.
func NewGenerator(stellib string, opts ...Option) (*Generator, error) {
	g := &Generator{
		libraries: builtinLibraries(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	err := g.setLibrary(stellib)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Libraries returns the sorted names of the known libraries.
func (g *Generator) Libraries() []string {
	names := make([]string, 0, len(g.libraries))
	for name := range g.libraries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (g *Generator) setLibrary(name string) error {
	factory, ok := g.libraries[name]
	if !ok {
		return errors.Wrapf(ErrUnknownLibrary, "%q, valid libraries: %s", name, strings.Join(g.Libraries(), ", "))
	}

	lib, err := factory()
	if err != nil {
		return errors.Wrapf(err, "unable to build library %q", name)
	}

	g.lib = lib
	g.name = name

	return nil
}

// Library returns the active library.
func (g *Generator) Library() Interpolator {
	return g.lib
}

func (g *Generator) Keys() model.Keys {
	return model.Keys{
		Reads:  []string{keys.LogT, keys.LogG, keys.LogL, keys.Z},
		Writes: []string{keys.Wavelength, keys.Specs, keys.Mask},
	}
}

func (g *Generator) Transform(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
	params := make([][]float64, 0, 4)

	for _, key := range []string{keys.LogT, keys.LogG, keys.LogL, keys.Z} {
		values, err := pipeline.Get[[]float64](in, key)
		if err != nil {
			return pipeline.Data{}, err
		}

		params = append(params, values)
	}

	n := len(params[0])
	for _, values := range params[1:] {
		if len(values) != n {
			return pipeline.Data{}, errors.Wrapf(units.ErrShapeMismatch, "%d values for %d temperatures", len(values), n)
		}
	}

	mask, err := g.lib.InDomain(params[0], params[1])
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "unable to compute library domain")
	}

	if len(mask) != n {
		return pipeline.Data{}, errors.Wrapf(ErrLibraryOutput, "mask of length %d for %d stars", len(mask), n)
	}

	selected := make([][]float64, len(params))
	for i, values := range params {
		selected[i], err = mask.Select(values)
		if err != nil {
			return pipeline.Data{}, err
		}
	}

	wave, specs, err := g.lib.Generate(selected[0], selected[1], selected[2], selected[3])
	if err != nil {
		return pipeline.Data{}, errors.Wrapf(err, "unable to generate spectra with %q", g.name)
	}

	err = checkOutput(wave, specs, mask.Count())
	if err != nil {
		return pipeline.Data{}, err
	}

	g.logger.Debug("generated spectra",
		slog.String("stellib", g.name),
		slog.Int("stars", n),
		slog.Int("in_range", mask.Count()),
	)

	return in.Merge(map[string]any{
		keys.Wavelength: wave,
		keys.Specs:      specs,
		keys.Mask:       mask,
	}), nil
}

func checkOutput(wave, specs units.Quantity, rows int) error {
	err := wave.Check(units.Angstrom.Signature())
	if err != nil {
		return errors.Wrap(err, "wavelength")
	}

	err = specs.Check(units.LuminosityDensity.Signature())
	if err != nil {
		return errors.Wrap(err, "spectra")
	}

	if wave.Values().Rows() != 1 {
		return errors.Wrapf(ErrLibraryOutput, "wavelength grid has %d rows", wave.Values().Rows())
	}

	if specs.Values().Rows() != rows || specs.Values().Cols() != wave.Values().Cols() {
		return errors.Wrapf(ErrLibraryOutput, "spectra of shape (%d, %d), want (%d, %d)",
			specs.Values().Rows(), specs.Values().Cols(), rows, wave.Values().Cols())
	}

	return nil
}

// Params exposes stellib.
func (g *Generator) Params() model.Params {
	return model.Params{
		"stellib": model.TypedParam(
			func() string { return g.name },
			g.setLibrary,
		),
	}
}

var (
	_ pipeline.Step         = (*Generator)(nil)
	_ pipeline.Configurable = (*Generator)(nil)
)
