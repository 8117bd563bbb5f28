// Package clustersim runs cluster simulations from the command line.
package clustersim

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/askiada/go-clusterphot/internal/catalog"
	"github.com/askiada/go-clusterphot/internal/catalog/sqlite"
	"github.com/askiada/go-clusterphot/internal/platform/config"
	"github.com/askiada/go-clusterphot/internal/platform/otel"
	"github.com/askiada/go-clusterphot/pkg/keys"
	"github.com/askiada/go-clusterphot/pkg/pipeline"
	"github.com/askiada/go-clusterphot/pkg/pipeline/drawer"
	"github.com/askiada/go-clusterphot/pkg/pipeline/measure"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/pipeline/trace"
	"github.com/askiada/go-clusterphot/pkg/simulation"
	"github.com/askiada/go-clusterphot/pkg/units"
)

var ErrInvalidFlag = errors.New("invalid flag")

// Config holds the simulation and the command line only settings.
type Config struct {
	Simulation simulation.Config
	// Draw is the path of the DOT file describing the pipeline, empty to skip.
	Draw string
	// Measure prints the average duration of every step.
	Measure bool
	// Runs is the number of clusters simulated, run i uses seed Seed+i.
	Runs        int
	Concurrency int
	Verbose     bool
	// Database is the SQLite run catalog, empty to skip recording.
	Database string
	// List prints the last List runs of the catalog instead of simulating.
	List int
}

type cliEnv struct {
	Database string `env:"CLUSTERSIM_DB"`
}

// ParseConfig reads the environment, then overrides it with the flags in args.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	sim, err := simulation.LoadConfig()
	if err != nil {
		return Config{}, err
	}

	var ce cliEnv

	err = config.ParseEnv(&ce)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Simulation: sim, Runs: 1, Concurrency: 1, Database: ce.Database}
	filters := strings.Join(sim.Filters, ",")

	fs.Uint64Var(&cfg.Simulation.Seed, "seed", sim.Seed, "random seed of the first run")
	fs.Float64Var(&cfg.Simulation.ClusterMass, "mass", sim.ClusterMass, "cluster mass in solar masses")
	fs.Float64Var(&cfg.Simulation.LogAge, "log-age", sim.LogAge, "log10 of the cluster age in years")
	fs.Float64Var(&cfg.Simulation.Z, "z", sim.Z, "metallicity")
	fs.StringVar(&cfg.Simulation.Stellib, "stellib", sim.Stellib, "spectral library")
	fs.BoolVar(&cfg.Simulation.Dust, "dust", sim.Dust, "apply dust extinction")
	fs.StringVar(&cfg.Simulation.Law, "law", sim.Law, "extinction law: cardelli, odonnell, calzetti or fitzpatrick")
	fs.Float64Var(&cfg.Simulation.Av, "av", sim.Av, "V band extinction")
	fs.Float64Var(&cfg.Simulation.Rv, "rv", sim.Rv, "ratio of total to selective extinction")
	fs.StringVar(&filters, "filters", filters, "comma separated filter names")
	fs.BoolVar(&cfg.Simulation.Download, "download", sim.Download, "download missing filters from SVO")
	fs.StringVar(&cfg.Draw, "draw", "", "write the pipeline graph to this DOT file")
	fs.BoolVar(&cfg.Measure, "measure", false, "print step durations")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "number of simulated clusters")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "clusters simulated in parallel")
	fs.BoolVar(&cfg.Verbose, "v", false, "debug logs")
	fs.StringVar(&cfg.Database, "db", cfg.Database, "record the runs in this SQLite catalog")
	fs.IntVar(&cfg.List, "list", 0, "list the last runs of the catalog and exit")

	err = fs.Parse(args)
	if err != nil {
		return Config{}, err
	}

	cfg.Simulation.Filters = splitList(filters)

	if cfg.Runs < 1 {
		return Config{}, errors.Wrapf(ErrInvalidFlag, "runs must be positive, got %d", cfg.Runs)
	}

	if cfg.Concurrency < 1 {
		return Config{}, errors.Wrapf(ErrInvalidFlag, "concurrency must be positive, got %d", cfg.Concurrency)
	}

	if cfg.List < 0 || (cfg.List > 0 && cfg.Database == "") {
		return Config{}, errors.Wrap(ErrInvalidFlag, "list needs a positive count and a database")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}

	return out
}

// Run simulates the clusters and writes one magnitude table per run to out.
func Run(ctx context.Context, cfg Config, out, logOut io.Writer) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	var store catalog.Store

	if cfg.Database != "" {
		db, err := sqlite.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		store = db
	}

	if cfg.List > 0 {
		return listRuns(ctx, out, store, cfg.List)
	}

	tp, shutdown, err := otel.Setup(ctx, "clustersim")
	if err != nil {
		return errors.Wrap(err, "unable to set up tracing")
	}

	defer func() {
		shutdownErr := shutdown(context.WithoutCancel(ctx))
		if shutdownErr != nil {
			logger.Warn("unable to flush traces", slog.Any("error", shutdownErr))
		}
	}()

	var msr *measure.DefaultMeasure
	if cfg.Measure || cfg.Draw != "" {
		msr = measure.NewDefaultMeasure()
	}

	runs := make([]pipeline.EnsembleRun, 0, cfg.Runs)

	for i := 0; i < cfg.Runs; i++ {
		sim := cfg.Simulation
		sim.Seed += uint64(i)

		opts := []model.PipelineOption{trace.PipelineTracer(tp)}
		if msr != nil {
			opts = append(opts, measure.PipelineMeasure(msr))
		}

		// Only the first pipeline is drawn, they all share the same shape.
		if cfg.Draw != "" && i == 0 {
			opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(cfg.Draw), msr))
		}

		pipe, err := simulation.New(sim, simulation.WithLogger(logger), simulation.WithPipelineOptions(opts...))
		if err != nil {
			return err
		}

		runs = append(runs, pipeline.EnsembleRun{Pipeline: pipe, Input: simulation.Input(sim)})
	}

	results, err := pipeline.RunEnsemble(ctx, runs, cfg.Concurrency)
	if err != nil {
		return err
	}

	for i, res := range results {
		err := writeTable(out, res)
		if err != nil {
			return err
		}

		if store == nil {
			continue
		}

		sim := cfg.Simulation
		sim.Seed += uint64(i)

		err = recordRun(ctx, store, sim, res)
		if err != nil {
			return err
		}

		logger.Debug("run recorded", slog.String("database", cfg.Database), slog.Uint64("seed", sim.Seed))
	}

	if cfg.Measure {
		return writeMeasure(out, msr)
	}

	return nil
}

func writeTable(out io.Writer, res pipeline.Data) error {
	runID, err := pipeline.Get[string](res, pipeline.RunIDKey)
	if err != nil {
		return err
	}

	mask, err := pipeline.Get[units.Mask](res, keys.Mask)
	if err != nil {
		return err
	}

	mass, err := pipeline.Get[units.Quantity](res, keys.Mass)
	if err != nil {
		return err
	}

	mass, err = mass.SelectRows(mask)
	if err != nil {
		return err
	}

	logT, err := pipeline.Get[[]float64](res, keys.LogT)
	if err != nil {
		return err
	}

	logT, err = mask.Select(logT)
	if err != nil {
		return err
	}

	mags, err := pipeline.Get[map[string][]float64](res, keys.MagBand)
	if err != nil {
		return err
	}

	filters := make([]string, 0, len(mags))
	for name := range mags {
		filters = append(filters, name)
	}

	sort.Strings(filters)

	printer := message.NewPrinter(language.English)
	printer.Fprintf(out, "# run %s: %d stars, %d with a spectrum\n", runID, len(mask), mask.Count())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "star\tmass\tlogT\t%s\t\n", strings.Join(filters, "\t"))

	for i := 0; i < mask.Count(); i++ {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f", i, mass.Values().At(i, 0), logT[i])

		for _, name := range filters {
			fmt.Fprintf(tw, "\t%.3f", mags[name][i])
		}

		fmt.Fprint(tw, "\t\n")
	}

	return errors.Wrap(tw.Flush(), "unable to write table")
}

func writeMeasure(out io.Writer, msr measure.Measure) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "# step\taverage\t\n")

	for _, step := range measure.Slowest(msr) {
		fmt.Fprintf(tw, "%s\t%s\t\n", step.Name, step.Average)
	}

	return errors.Wrap(tw.Flush(), "unable to write measure")
}

func recordRun(ctx context.Context, store catalog.Store, sim simulation.Config, res pipeline.Data) error {
	runID, err := pipeline.Get[string](res, pipeline.RunIDKey)
	if err != nil {
		return err
	}

	mask, err := pipeline.Get[units.Mask](res, keys.Mask)
	if err != nil {
		return err
	}

	mags, err := pipeline.Get[map[string][]float64](res, keys.MagBand)
	if err != nil {
		return err
	}

	law := ""
	if sim.Dust {
		law = sim.Law
	}

	err = store.RecordRun(ctx, catalog.Run{
		ID:          runID,
		Seed:        sim.Seed,
		ClusterMass: sim.ClusterMass,
		LogAge:      sim.LogAge,
		Z:           sim.Z,
		Law:         law,
		Av:          sim.Av,
		Stars:       len(mask),
		Magnitudes:  mags,
	})
	if err != nil {
		return errors.Wrapf(err, "unable to record run %s", runID)
	}

	return nil
}

func listRuns(ctx context.Context, out io.Writer, store catalog.Store, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "# run\tcreated\tseed\tmass\tlog age\tlaw\tAv\tstars\t\n")

	for _, r := range runs {
		law := r.Law
		if law == "" {
			law = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.2f\t%s\t%.2f\t%s\t\n",
			r.ID, humanize.RelTime(r.CreatedAt, now, "ago", "from now"), r.Seed,
			humanize.Ftoa(r.ClusterMass), r.LogAge, law, r.Av, humanize.Comma(int64(r.Stars)))
	}

	return errors.Wrap(tw.Flush(), "unable to write runs")
}
