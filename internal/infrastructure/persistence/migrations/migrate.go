// Package migrations versions the postgres schema with golang-migrate,
// sourcing the SQL from files embedded at build time.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Migrator applies the embedded schema migrations against one database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New builds a migrator bound to the given database connection
func New(db *sql.DB, databaseName string, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(schemaFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
		DatabaseName:    databaseName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}

	return &Migrator{
		migrate: m,
		logger:  logger.Named("migrations"),
	}, nil
}

// Up brings the schema to the newest embedded version. Already being
// there is not an error.
func (m *Migrator) Up() error {
	start := time.Now()
	from, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		m.logger.Warn("schema is dirty from an interrupted migration",
			zap.Uint("version", from),
		)
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema is up to date", zap.Uint("version", from))
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	to, _, _ := m.Version()
	m.logger.Info("schema migrated",
		zap.Uint("from", from),
		zap.Uint("to", to),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Down rolls the schema back by one version
func (m *Migrator) Down() error {
	from, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := m.migrate.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	to, _, _ := m.Version()
	m.logger.Info("schema rolled back",
		zap.Uint("from", from),
		zap.Uint("to", to),
	)
	return nil
}

// Version reports the current schema version. A database that has never
// been migrated reports version zero, not an error.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the migration source and its database handle
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database handle: %w", dbErr)
	}
	return nil
}
