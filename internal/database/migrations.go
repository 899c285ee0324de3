package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/checkfox/go_reassign/internal/logger"
)

// Migration is one numbered SQL file from the migrations directory,
// e.g. 001_create_reassignment_audit.sql
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationRunner applies pending migration files in version order,
// recording each applied version in schema_migrations
type MigrationRunner struct {
	db   *DB
	path string
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *DB, path string) *MigrationRunner {
	return &MigrationRunner{db: db, path: path}
}

// Run applies every migration file not yet recorded as applied
func (mr *MigrationRunner) Run() error {
	ctx := context.Background()

	if err := mr.ensureVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	migrations, err := mr.readMigrationFiles()
	if err != nil {
		return err
	}

	applied, err := mr.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := mr.apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		logger.Info(ctx, "Applied migration", "version", m.Version, "name", m.Name)
	}

	return nil
}

func (mr *MigrationRunner) ensureVersionTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := mr.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// readMigrationFiles loads *.sql files named <version>_<name>.sql, sorted by
// version. Files that don't match the naming scheme are skipped.
func (mr *MigrationRunner) readMigrationFiles() ([]Migration, error) {
	entries, err := os.ReadDir(mr.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		prefix, rest, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(mr.path, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (mr *MigrationRunner) appliedVersions(ctx context.Context) (map[int]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := mr.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// apply runs one migration and records it, both inside one transaction
func (mr *MigrationRunner) apply(ctx context.Context, m Migration) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := mr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
