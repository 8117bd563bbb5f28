// Package simulation assembles the default cluster photometry pipeline:
// cluster sampling, main sequence, spectra, dust, distance and photometry.
package simulation

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/pkg/cluster"
	"github.com/askiada/go-clusterphot/pkg/distance"
	"github.com/askiada/go-clusterphot/pkg/extinction"
	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/photometry"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/spectrum"
	"github.com/askiada/go-clusterphot/pkg/stellar"
)

// Step names of the default pipeline, used to address parameters, e.g. "dust__law".
const (
	ClusterStep      = "cluster"
	MainSequenceStep = "main_sequence"
	SpectrumStep     = "spectrum"
	DustStep         = "dust"
	DistanceStep     = "distance"
	PhotometryStep   = "photometry"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

type options struct {
	logger      *slog.Logger
	imf         cluster.IMF
	fetcher     photometry.Fetcher
	pipelineOpt []model.PipelineOption
}

type Option func(o *options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIMF replaces the Kroupa mass function of the cluster sampler.
func WithIMF(imf cluster.IMF) Option {
	return func(o *options) {
		o.imf = imf
	}
}

// WithFetcher replaces the SVO fetcher of the photometry step.
func WithFetcher(fetcher photometry.Fetcher) Option {
	return func(o *options) {
		o.fetcher = fetcher
	}
}

// WithPipelineOptions adds measure, drawer or trace options to the pipeline.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(o *options) {
		o.pipelineOpt = append(o.pipelineOpt, opts...)
	}
}

// New builds the pipeline described by cfg.
func New(cfg Config, opts ...Option) (*pipeline.Pipeline, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	steps, err := buildSteps(cfg, o)
	if err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(steps, o.pipelineOpt...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	return pipe, nil
}

// buildSteps creates the named steps of the pipeline.
func buildSteps(cfg Config, o *options) ([]pipeline.NamedStep, error) {
	cov, err := cfg.Covariance()
	if err != nil {
		return nil, err
	}

	samplerOpts := []cluster.Option{cluster.WithLogger(o.logger)}
	if o.imf != nil {
		samplerOpts = append(samplerOpts, cluster.WithIMF(o.imf))
	}

	sampler, err := cluster.NewSampler(cluster.Config{
		Mu:          cfg.Mu,
		Cov:         cov,
		ClusterMass: cfg.ClusterMass,
		LogAge:      cfg.LogAge,
		Z:           cfg.Z,
		Seed:        cfg.Seed,
	}, samplerOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cluster sampler")
	}

	generator, err := spectrum.NewGenerator(cfg.Stellib, spectrum.WithLogger(o.logger))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create spectrum generator")
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = photometry.NewSVOFetcher(photometry.SVOConfig{URL: cfg.SVOURL})
	}

	evaluator, err := photometry.NewEvaluator(photometry.Config{
		FilterNames: cfg.Filters,
		Download:    cfg.Download,
	}, photometry.WithFetcher(fetcher), photometry.WithLogger(o.logger))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create photometry evaluator")
	}

	steps := []pipeline.NamedStep{
		pipeline.Named(ClusterStep, sampler),
		pipeline.Named(MainSequenceStep, stellar.MainSequence{}),
		pipeline.Named(SpectrumStep, generator),
	}

	if cfg.Dust {
		dust, err := extinction.NewAttenuator(extinction.Config{Law: cfg.Law})
		if err != nil {
			return nil, errors.Wrap(err, "unable to create dust attenuator")
		}

		steps = append(steps, pipeline.Named(DustStep, dust))
	}

	return append(steps,
		pipeline.Named(DistanceStep, distance.Attenuator{}),
		pipeline.Named(PhotometryStep, evaluator),
	), nil
}

// Input returns the run input holding the extinction of cfg.
func Input(cfg Config) pipeline.Data {
	return pipeline.NewData(map[string]any{
		keys.Av: cfg.Av,
		keys.Rv: cfg.Rv,
	})
}
