package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

// applyMigrations runs every embedded migration not yet recorded in the
// migration table, in file name order, each in its own transaction.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`)
	if err != nil {
		return errors.Wrap(err, "unable to create migration table")
	}

	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "unable to read migrations")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	for _, name := range names {
		err := applyMigration(ctx, db, name)
		if err != nil {
			return errors.Wrapf(err, "migration %s", name)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, name string) error {
	var found int

	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name).Scan(&found)
	if err == nil {
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "unable to check migration")
	}

	content, err := migrations.ReadFile("migrations/" + name)
	if err != nil {
		return errors.Wrap(err, "unable to read migration")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}

	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, upSection(string(content)))
	if err != nil {
		return errors.Wrap(err, "unable to apply migration")
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)", name, time.Now().UTC().UnixMilli())
	if err != nil {
		return errors.Wrap(err, "unable to record migration")
	}

	return errors.Wrap(tx.Commit(), "unable to commit migration")
}

// upSection returns the statements between the Up and Down markers.
func upSection(content string) string {
	if i := strings.Index(content, upMarker); i >= 0 {
		content = content[i+len(upMarker):]
	}

	if i := strings.Index(content, downMarker); i >= 0 {
		content = content[:i]
	}

	return content
}
