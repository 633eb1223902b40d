package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationsTable is where golang-migrate keeps the schema version.
const MigrationsTable = "migration_history"

//go:embed migrations/*.sql
var migrationFiles embed.FS

type MigrationResult struct {
	From    uint `json:"from"`
	To      uint `json:"to"`
	Changed bool `json:"changed"`
}

type upMigrator interface {
	Up() error
	Version() (uint, bool, error)
}

// Migrate applies every pending embedded migration. A successful change is
// also written to migration_log with the invoking user.
func (s *Store) Migrate(ctx context.Context) (*MigrationResult, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	res, err := runUp(m)
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		s.logger.Info("no pending migrations", logging.Int("version", int(res.To)))
		return res, nil
	}
	if err := s.logMigration(ctx, res.To); err != nil {
		return res, err
	}
	s.logger.Info("migrations applied successfully",
		logging.Int("from", int(res.From)),
		logging.Int("to", int(res.To)),
	)
	return res, nil
}

func runUp(m upMigrator) (*MigrationResult, error) {
	from, err := currentVersion(m)
	if err != nil {
		return nil, err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return &MigrationResult{From: from, To: from}, nil
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	to, err := currentVersion(m)
	if err != nil {
		return nil, err
	}
	return &MigrationResult{From: from, To: to, Changed: to != from}, nil
}

func currentVersion(m upMigrator) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

func (s *Store) logMigration(ctx context.Context, version uint) error {
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	if _, err := s.db.ExecContext(ctx, createMigrationLog); err != nil {
		return fmt.Errorf("create migration log: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, insertMigrationLog, int64(version), time.Now().UTC(), user); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	return nil
}
