// Package migration applies the service's database schema.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"

	"boxplot/internal"
	"boxplot/internal/errors"
)

// Migration is one versioned schema step. Statements must be valid on both
// PostgreSQL and SQLite.
type Migration struct {
	Version    string
	Statements []string
}

// Checksum identifies the statements of a migration. Applied migrations are
// recorded with it so an edited migration is detected.
func (m Migration) Checksum() string {
	h := sha256.New()
	for _, s := range m.Statements {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Migrations is the schema history, oldest first.
var Migrations = []Migration{
	{
		Version: "001_charts",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS charts (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				viz_type TEXT NOT NULL,
				source_kind TEXT NOT NULL,
				source TEXT NOT NULL,
				form_data TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_charts_created_at ON charts (created_at)`,
		},
	},
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	migrations []Migration
	logger     *internal.Logger
}

// NewRunner creates a runner for the built-in migrations
func NewRunner() *MigrationRunner {
	return &MigrationRunner{migrations: Migrations, logger: internal.DefaultLogger.With("Migration")}
}

// Version returns the latest schema version known to the runner
func (r *MigrationRunner) Version() string {
	if len(r.migrations) == 0 {
		return ""
	}
	return r.migrations[len(r.migrations)-1].Version
}

// Run applies every pending migration, each in its own transaction. A
// migration whose recorded checksum differs from the built-in one fails the
// run.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return errors.DatabaseError("failed to create migrations table", err)
	}

	applied, err := r.appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range r.migrations {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum() {
				return errors.New(errors.CodeDatabaseError, fmt.Sprintf("migration %s changed after it was applied", m.Version))
			}
			continue
		}
		if err := r.apply(ctx, db, m); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s", m.Version)
		}
		r.logger.Info("applied migration %s", m.Version)
	}
	return nil
}

func (r *MigrationRunner) appliedMigrations(ctx context.Context, db *sqlx.DB) (map[string]string, error) {
	var rows []struct {
		Version  string `db:"version"`
		Checksum string `db:"checksum"`
	}
	if err := db.SelectContext(ctx, &rows, "SELECT version, checksum FROM schema_migrations"); err != nil {
		return nil, errors.DatabaseError("failed to read applied migrations", err)
	}
	applied := make(map[string]string, len(rows))
	for _, row := range rows {
		applied[row.Version] = row.Checksum
	}
	return applied, nil
}

func (r *MigrationRunner) apply(ctx context.Context, db *sqlx.DB, m Migration) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				r.logger.Warn("rollback of %s failed: %v", m.Version, rbErr)
			}
		}
	}()

	for _, stmt := range m.Statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.DatabaseError("migration statement failed", err)
		}
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_migrations (version, checksum) VALUES (?, ?)"), m.Version, m.Checksum()); err != nil {
		return errors.DatabaseError("failed to record migration", err)
	}
	return tx.Commit()
}
