package photometry

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/units"
)

var (
	wavelengthUnits = units.Signature{"angstrom": 1}
	fluxUnits       = units.Signature{"erg": 1, "second": -1, "centimeter": -2, "angstrom": -1}
)

// Config lists the filters to evaluate. Download allows fetching the filters
// missing from the local library.
type Config struct {
	FilterNames []string
	Download    bool
}

// Evaluator is the pipeline step computing band fluxes and magnitudes.
//
// Filters are resolved on the first transform after a configuration change.
// Unavailable filters are logged, reported by Dropped and skipped.
type Evaluator struct {
	lib     *Library
	fetcher Fetcher
	logger  *slog.Logger

	mu       sync.Mutex
	cfg      Config
	bands    []*Band
	dropped  []string
	resolved bool
}

type Option func(e *Evaluator)

// WithLibrary replaces the built-in filter library.
func WithLibrary(lib *Library) Option {
	return func(e *Evaluator) {
		e.lib = lib
	}
}

// WithFetcher replaces the SVO fetcher.
func WithFetcher(fetcher Fetcher) Option {
	return func(e *Evaluator) {
		e.fetcher = fetcher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates a photometry evaluator.
func NewEvaluator(cfg Config, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		cfg:    Config{FilterNames: append([]string(nil), cfg.FilterNames...), Download: cfg.Download},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.lib == nil {
		lib, err := DefaultLibrary()
		if err != nil {
			return nil, errors.Wrap(err, "unable to build filter library")
		}

		e.lib = lib
	}

	if e.fetcher == nil {
		e.fetcher = NewSVOFetcher(SVOConfig{})
	}

	return e, nil
}

// Bands resolves the configured filters and returns the usable bands.
func (e *Evaluator) Bands(ctx context.Context) ([]*Band, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.resolve(ctx)
	if err != nil {
		return nil, err
	}

	return append([]*Band(nil), e.bands...), nil
}

// Dropped returns the filters skipped by the last resolution.
func (e *Evaluator) Dropped() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.dropped...)
}

func (e *Evaluator) resolve(ctx context.Context) error {
	if e.resolved {
		return nil
	}

	var (
		bands   []*Band
		dropped []string
	)

	for _, name := range e.cfg.FilterNames {
		found := e.lib.Find(name)
		if len(found) > 0 {
			bands = append(bands, found...)

			continue
		}

		if band, ok := e.lib.Get(BandName(name)); ok {
			bands = append(bands, band)

			continue
		}

		if !e.cfg.Download {
			e.logger.Warn(ErrFilterUnavailable.Error(),
				slog.String("filter", name),
				slog.String("reason", "not found locally and download is disabled"))

			dropped = append(dropped, name)

			continue
		}

		band, err := e.fetcher.Fetch(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return errors.Wrap(ctx.Err(), "unable to resolve filters")
			}

			e.logger.Warn(ErrFilterUnavailable.Error(),
				slog.String("filter", name),
				slog.Any("error", err))

			dropped = append(dropped, name)

			continue
		}

		e.lib.Add(band)
		bands = append(bands, band)
	}

	e.bands, e.dropped, e.resolved = bands, dropped, true

	return nil
}

func (e *Evaluator) Keys() model.Keys {
	return model.Keys{
		Reads:  []string{keys.Wavelength, keys.FlamDust},
		Writes: []string{keys.MagBand, keys.FlamBand, keys.ClBand},
	}
}

func (e *Evaluator) Transform(ctx context.Context, in pipeline.Data) (pipeline.Data, error) {
	wave, err := pipeline.Get[units.Quantity](in, keys.Wavelength)
	if err != nil {
		return pipeline.Data{}, err
	}

	flam, err := pipeline.Get[units.Quantity](in, keys.FlamDust)
	if err != nil {
		return pipeline.Data{}, err
	}

	err = wave.Check(wavelengthUnits)
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "wavelength")
	}

	err = flam.Check(fluxUnits)
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "flam_dust")
	}

	bands, err := e.Bands(ctx)
	if err != nil {
		return pipeline.Data{}, err
	}

	grid, err := wave.To(units.Angstrom)
	if err != nil {
		return pipeline.Data{}, err
	}

	mags := make(map[string][]float64, len(bands))
	fluxes := make(map[string]units.Quantity, len(bands))
	centrals := make(map[string]units.Quantity, len(bands))

	for _, b := range bands {
		inBand, err := b.Flux(grid.Values().Data(), flam.Values())
		if err != nil {
			return pipeline.Data{}, errors.Wrapf(err, "band %q", b.Name())
		}

		zp := b.ZeroPoint(SystemFor(b.Name()))

		mag := make([]float64, len(inBand))
		for i, f := range inBand {
			mag[i] = -2.5 * math.Log10(f/zp)
		}

		central, err := b.Central().To(wave.Unit())
		if err != nil {
			return pipeline.Data{}, err
		}

		mags[b.Name()] = mag
		fluxes[b.Name()] = units.NewQuantity(units.Column(inBand), units.FluxDensity)
		centrals[b.Name()] = central
	}

	return in.Merge(map[string]any{
		keys.MagBand:  mags,
		keys.FlamBand: fluxes,
		keys.ClBand:   centrals,
	}), nil
}

func (e *Evaluator) update(fn func(cfg *Config)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(&e.cfg)
	e.resolved = false

	return nil
}

// Params exposes filter_names and download.
func (e *Evaluator) Params() model.Params {
	return model.Params{
		"filter_names": model.TypedParam(
			func() []string {
				e.mu.Lock()
				defer e.mu.Unlock()

				return append([]string(nil), e.cfg.FilterNames...)
			},
			func(v []string) error {
				return e.update(func(cfg *Config) { cfg.FilterNames = append([]string(nil), v...) })
			},
		),
		"download": model.TypedParam(
			func() bool {
				e.mu.Lock()
				defer e.mu.Unlock()

				return e.cfg.Download
			},
			func(v bool) error {
				return e.update(func(cfg *Config) { cfg.Download = v })
			},
		),
	}
}

var (
	_ pipeline.Step         = (*Evaluator)(nil)
	_ pipeline.Configurable = (*Evaluator)(nil)
)
