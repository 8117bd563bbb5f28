package cluster

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/units"
)

const phaseDims = 6

// Config describes the cluster to sample.
type Config struct {
	// Mu is the mean galactic position (pc) and velocity (km/s): X, Y, Z, U, V, W.
	Mu []float64
	// Cov is the 6x6 covariance of Mu, row-major.
	Cov []float64
	// ClusterMass is the total mass in solar masses.
	ClusterMass float64
	// LogAge is log10 of the cluster age in years.
	LogAge float64
	// Z is the metallicity shared by every star.
	Z float64
	// Seed makes the sampling deterministic when no random source is given.
	Seed uint64
}

func (c Config) validate() error {
	if len(c.Mu) != phaseDims {
		return errors.Wrapf(ErrInvalidGeometry, "mu has %d values, want %d", len(c.Mu), phaseDims)
	}

	if len(c.Cov) != phaseDims*phaseDims {
		return errors.Wrapf(ErrInvalidGeometry, "cov has %d values, want %d", len(c.Cov), phaseDims*phaseDims)
	}

	if c.ClusterMass <= 0 || math.IsNaN(c.ClusterMass) {
		return errors.Wrapf(ErrInvalidMass, "%g", c.ClusterMass)
	}

	return nil
}

// Sampler is the pipeline step drawing the stars of a cluster.
type Sampler struct {
	imf       IMF
	transform CoordinateTransform
	rng       *rand.Rand
	logger    *slog.Logger
	cfg       Config

	masses  []float64
	samples []PhaseSpace
}

type Option func(s *Sampler)

// WithIMF replaces the default Kroupa mass function.
func WithIMF(imf IMF) Option {
	return func(s *Sampler) {
		s.imf = imf
	}
}

// WithTransform replaces the default galactic to ICRS transform.
func WithTransform(transform CoordinateTransform) Option {
	return func(s *Sampler) {
		s.transform = transform
	}
}

// WithRand replaces the random source seeded from Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sampler) {
		s.rng = rng
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// NewSampler creates a cluster sampler.
func NewSampler(cfg Config, opts ...Option) (*Sampler, error) {
	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	s := &Sampler{
		cfg:       cfg,
		transform: GalacticToICRS{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	}

	if s.imf == nil {
		s.imf, err = NewKroupa(s.rng, defaultMinMass, defaultMaxMass)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Masses returns the masses drawn by the last transform, sorted ascending.
func (s *Sampler) Masses() []float64 {
	return append([]float64(nil), s.masses...)
}

// Samples returns the galactic phase-space samples drawn by the last transform.
func (s *Sampler) Samples() []PhaseSpace {
	return append([]PhaseSpace(nil), s.samples...)
}

func (s *Sampler) simulate() error {
	masses, err := s.imf.Sample(s.cfg.ClusterMass)
	if err != nil {
		return errors.Wrap(err, "unable to sample masses")
	}

	sort.Float64s(masses)

	normal, ok := distmv.NewNormal(s.cfg.Mu, mat.NewSymDense(phaseDims, append([]float64(nil), s.cfg.Cov...)), s.rng)
	if !ok {
		return ErrInvalidCovariance
	}

	samples := make([]PhaseSpace, len(masses))
	for i := range samples {
		copy(samples[i][:], normal.Rand(nil))
	}

	s.masses = masses
	s.samples = samples

	return nil
}

// lifetimeLogAge is log10 of the main-sequence lifetime in years, 10^10 (1/M)^2.5.
func lifetimeLogAge(mass float64) float64 {
	return math.Log10(1e10 * math.Pow(1/mass, 2.5))
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func (s *Sampler) Keys() model.Keys {
	return model.Keys{
		Writes: []string{keys.Distance, keys.SkyCoords, keys.LogAge, keys.Z, keys.Mass, keys.LifetimeLogAge},
	}
}

func (s *Sampler) Transform(_ context.Context, in pipeline.Data) (pipeline.Data, error) {
	err := s.simulate()
	if err != nil {
		return pipeline.Data{}, err
	}

	sky, err := s.transform.ToObserverFrame(s.samples)
	if err != nil {
		return pipeline.Data{}, errors.Wrap(err, "unable to transform to observer frame")
	}

	n := len(s.masses)
	distances := make([]float64, n)
	lifetimes := make([]float64, n)

	for i := range s.masses {
		distances[i] = sky[i].Distance
		lifetimes[i] = lifetimeLogAge(s.masses[i])
	}

	s.logger.Debug("sampled cluster", slog.Int("stars", n), slog.Float64("cluster_mass", s.cfg.ClusterMass))

	return in.Merge(map[string]any{
		keys.Distance:       units.NewQuantity(units.Column(distances), units.Parsec),
		keys.SkyCoords:      sky,
		keys.LogAge:         fill(n, s.cfg.LogAge),
		keys.Z:              fill(n, s.cfg.Z),
		keys.Mass:           units.NewQuantity(units.Column(s.masses), units.SolarMass),
		keys.LifetimeLogAge: lifetimes,
	}), nil
}

// Params exposes mu, cov, cluster_mass, logAge and Z.
func (s *Sampler) Params() model.Params {
	return model.Params{
		"mu": model.TypedParam(
			func() []float64 { return append([]float64(nil), s.cfg.Mu...) },
			func(v []float64) error { return s.update(func(c *Config) { c.Mu = append([]float64(nil), v...) }) },
		),
		"cov": model.TypedParam(
			func() []float64 { return append([]float64(nil), s.cfg.Cov...) },
			func(v []float64) error { return s.update(func(c *Config) { c.Cov = append([]float64(nil), v...) }) },
		),
		"cluster_mass": model.TypedParam(
			func() float64 { return s.cfg.ClusterMass },
			func(v float64) error { return s.update(func(c *Config) { c.ClusterMass = v }) },
		),
		"logAge": model.TypedParam(
			func() float64 { return s.cfg.LogAge },
			func(v float64) error { return s.update(func(c *Config) { c.LogAge = v }) },
		),
		"Z": model.TypedParam(
			func() float64 { return s.cfg.Z },
			func(v float64) error { return s.update(func(c *Config) { c.Z = v }) },
		),
	}
}

func (s *Sampler) update(fn func(c *Config)) error {
	cfg := s.cfg
	fn(&cfg)

	err := cfg.validate()
	if err != nil {
		return err
	}

	s.cfg = cfg

	return nil
}

var (
	_ pipeline.Step         = (*Sampler)(nil)
	_ pipeline.Configurable = (*Sampler)(nil)
)
