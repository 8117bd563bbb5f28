// Package sqlite stores the run catalog in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/askiada/go-clusterphot/internal/catalog"
)

// Store is a SQLite backed catalog.Store.
type Store struct {
	db *sql.DB
}

var _ catalog.Store = (*Store)(nil)

// Open opens, creating it if needed, the database at path and applies the migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite database")
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "unable to ping sqlite database")
	}

	err = applyMigrations(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// RecordRun inserts the run and its magnitudes in one transaction.
func (s *Store) RecordRun(ctx context.Context, r catalog.Run) error {
	err := r.Validate()
	if err != nil {
		return err
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}

	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (
    id,
    created_at,
    seed,
    cluster_mass,
    log_age,
    metallicity,
    law,
    av,
    stars
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.UTC().UnixMilli(),
		int64(r.Seed), //nolint:gosec // stored bit for bit
		r.ClusterMass,
		r.LogAge,
		r.Z,
		r.Law,
		r.Av,
		r.Stars,
	)
	if err != nil {
		return errors.Wrapf(err, "unable to insert run %s", r.ID)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO magnitudes (run_id, band, star, mag) VALUES (?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "unable to prepare magnitude insert")
	}
	defer stmt.Close()

	for _, band := range r.Bands() {
		for star, mag := range r.Magnitudes[band] {
			_, err := stmt.ExecContext(ctx, r.ID, band, star, nullable(mag))
			if err != nil {
				return errors.Wrapf(err, "unable to insert %s magnitude of star %d", band, star)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "unable to commit run")
}

// SQLite has no NaN or infinity.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

const selectRun = `
SELECT
    id,
    created_at,
    seed,
    cluster_mass,
    log_age,
    metallicity,
    law,
    av,
    stars
FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (catalog.Run, error) {
	var (
		r         catalog.Run
		createdAt int64
		seed      int64
	)

	err := row.Scan(&r.ID, &createdAt, &seed, &r.ClusterMass, &r.LogAge, &r.Z, &r.Law, &r.Av, &r.Stars)
	if err != nil {
		return catalog.Run{}, err
	}

	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	r.Seed = uint64(seed) //nolint:gosec // stored bit for bit

	return r, nil
}

// Run returns the run id with its magnitudes.
func (s *Store) Run(ctx context.Context, id string) (catalog.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Run{}, errors.Wrapf(catalog.ErrRunNotFound, "%q", id)
	}

	if err != nil {
		return catalog.Run{}, errors.Wrapf(err, "unable to get run %s", id)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT band, star, mag FROM magnitudes WHERE run_id = ? ORDER BY band, star", id)
	if err != nil {
		return catalog.Run{}, errors.Wrapf(err, "unable to get magnitudes of run %s", id)
	}
	defer rows.Close()

	r.Magnitudes = make(map[string][]float64)

	for rows.Next() {
		var (
			band string
			star int
			mag  sql.NullFloat64
		)

		err := rows.Scan(&band, &star, &mag)
		if err != nil {
			return catalog.Run{}, errors.Wrap(err, "unable to scan magnitude")
		}

		value := math.NaN()
		if mag.Valid {
			value = mag.Float64
		}

		r.Magnitudes[band] = append(r.Magnitudes[band], value)
	}

	return r, errors.Wrap(rows.Err(), "unable to iterate magnitudes")
}

// ListRuns returns at most limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]catalog.Run, error) {
	if limit <= 0 {
		return nil, errors.Wrapf(catalog.ErrInvalidLimit, "%d, want a positive limit", limit)
	}

	rows, err := s.db.QueryContext(ctx, selectRun+" ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list runs")
	}
	defer rows.Close()

	runs := make([]catalog.Run, 0, limit)

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "unable to scan run")
		}

		runs = append(runs, r)
	}

	return runs, errors.Wrap(rows.Err(), "unable to iterate runs")
}
