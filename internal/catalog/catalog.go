// Package catalog records the simulated clusters and their photometry.
package catalog

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidRun   = errors.New("invalid run")
	ErrInvalidLimit = errors.New("invalid limit")
	ErrRunNotFound  = errors.New("run not found")
)

// Run summarises one pipeline run.
type Run struct {
	CreatedAt time.Time
	// Magnitudes holds, for every band, one magnitude per star with a spectrum.
	// NaN marks a star without flux in the band.
	Magnitudes  map[string][]float64
	ID          string
	Law         string
	Seed        uint64
	ClusterMass float64
	LogAge      float64
	Z           float64
	Av          float64
	Stars       int
}

// Bands returns the sorted band names.
func (r Run) Bands() []string {
	bands := make([]string, 0, len(r.Magnitudes))
	for name := range r.Magnitudes {
		bands = append(bands, name)
	}

	sort.Strings(bands)

	return bands
}

// Validate checks the fields every store requires.
func (r Run) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.Wrap(ErrInvalidRun, "id is required")
	}

	if r.Stars < 0 {
		return errors.Wrapf(ErrInvalidRun, "negative star count %d", r.Stars)
	}

	if math.IsNaN(r.ClusterMass) || math.IsNaN(r.LogAge) || math.IsNaN(r.Z) || math.IsNaN(r.Av) {
		return errors.Wrap(ErrInvalidRun, "cluster parameters must be numbers")
	}

	n := -1
	for _, name := range r.Bands() {
		if n >= 0 && len(r.Magnitudes[name]) != n {
			return errors.Wrapf(ErrInvalidRun, "band %s has %d magnitudes, want %d", name, len(r.Magnitudes[name]), n)
		}

		n = len(r.Magnitudes[name])
	}

	if n > r.Stars {
		return errors.Wrapf(ErrInvalidRun, "%d magnitudes for %d stars", n, r.Stars)
	}

	return nil
}

// Store persists runs.
type Store interface {
	// RecordRun stores r. Recording the same id twice fails.
	RecordRun(ctx context.Context, r Run) error
	// Run returns the run with its magnitudes.
	Run(ctx context.Context, id string) (Run, error)
	// ListRuns returns the newest runs first, without magnitudes.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}
