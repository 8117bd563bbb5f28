package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/internal/clustersim"
	"github.com/askiada/go-clusterphot/internal/platform/config"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("clustersim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg, err := clustersim.ParseConfig(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}

	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return clustersim.Run(ctx, cfg, stdout, stderr)
}
