// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mealsmith/v2/internal/infrastructure/config"
	"github.com/mealsmith/v2/internal/infrastructure/persistence/migrations"
)

// TestDatabase provides a test database instance with cleanup
type TestDatabase struct {
	Container testcontainers.Container
	DB        *sql.DB
	GormDB    *gorm.DB
	PgxPool   *pgxpool.Pool
	DSN       string
	dbName    string
	t         *testing.T
}

// DatabaseConfig holds test database configuration
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
	Port     string
}

// DefaultDatabaseConfig returns the default test database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "mealsmith_test",
		Username: "test_user",
		Password: "test_password",
		Port:     "5432",
	}
}

// SetupTestDatabase creates a new test database using testcontainers
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

// SetupTestDatabaseWithConfig creates a test database with custom configuration
func SetupTestDatabaseWithConfig(t *testing.T, cfg DatabaseConfig) *TestDatabase {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        cfg.Image,
				ExposedPorts: []string{cfg.Port + "/tcp"},
				Env: map[string]string{
					"POSTGRES_DB":               cfg.Database,
					"POSTGRES_USER":             cfg.Username,
					"POSTGRES_PASSWORD":         cfg.Password,
					"POSTGRES_HOST_AUTH_METHOD": "trust",
				},
				WaitingFor: wait.ForAll(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(60*time.Second),
					wait.ForSQL(nat.Port(cfg.Port+"/tcp"), "pgx", func(host string, port nat.Port) string {
						return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
							cfg.Username, cfg.Password, host, port.Port(), cfg.Database)
					}),
				),
				Tmpfs: map[string]string{
					"/var/lib/postgresql/data": "rw,noexec,nosuid,size=1024m",
				},
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, nat.Port(cfg.Port))
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username, cfg.Password, host, port.Port(), cfg.Database)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	err = db.Ping()
	require.NoError(t, err, "Failed to ping test database")

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to create GORM connection")

	pgxConfig, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err, "Failed to parse pgx config")

	pgxConfig.MaxConns = 10
	pgxConfig.MinConns = 1
	pgxConfig.MaxConnLifetime = time.Hour
	pgxConfig.MaxConnIdleTime = 30 * time.Minute

	pgxPool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	require.NoError(t, err, "Failed to create pgx pool")

	testDB := &TestDatabase{
		Container: container,
		DB:        db,
		GormDB:    gormDB,
		PgxPool:   pgxPool,
		DSN:       dsn,
		dbName:    cfg.Database,
		t:         t,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// RunMigrations applies the embedded schema migrations to the test database
func (td *TestDatabase) RunMigrations() error {
	migrator, err := migrations.New(td.DB, td.dbName, zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	return migrator.Up()
}

// TruncateAllTables removes all data from tables while preserving structure
func (td *TestDatabase) TruncateAllTables() error {
	tables := []string{
		"saved_recipes",
		"accounts",
	}

	for _, table := range tables {
		if _, err := td.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// Cleanup closes all connections and stops the container
func (td *TestDatabase) Cleanup() {
	ctx := context.Background()

	if td.PgxPool != nil {
		td.PgxPool.Close()
	}

	if td.DB != nil {
		td.DB.Close()
	}

	if td.Container != nil {
		if err := td.Container.Terminate(ctx); err != nil {
			td.t.Logf("Failed to terminate postgres container: %v", err)
		}
	}
}

// TestConfig returns an application config matching the test database, for
// wiring infrastructure components that read connection settings from it
func TestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "mealsmith-test",
			Environment: "test",
			LogLevel:    "error",
			LogFormat:   "console",
		},
		Database: config.DatabaseConfig{
			Driver:          "sqlite",
			Database:        ":memory:",
			LogLevel:        "silent",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
		},
		Auth: config.AuthConfig{
			TokenSecret:     "test-secret-key-for-testing-only",
			TokenExpiration: time.Hour,
			CookieName:      "mealsmith_session",
		},
		Workspace: config.WorkspaceConfig{
			Store: "memory",
			TTL:   time.Hour,
		},
	}
}

// DatabaseHelper provides helper methods for database-level assertions
type DatabaseHelper struct {
	db *TestDatabase
}

// NewDatabaseHelper creates a new database helper
func NewDatabaseHelper(db *TestDatabase) *DatabaseHelper {
	return &DatabaseHelper{db: db}
}

// CountRecords counts records in a table
func (h *DatabaseHelper) CountRecords(table string) (int, error) {
	var count int
	err := h.db.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	return count, err
}

// RecordExists checks if a record exists with given conditions
func (h *DatabaseHelper) RecordExists(table, whereClause string, args ...interface{}) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s)", table, whereClause)
	err := h.db.DB.QueryRow(query, args...).Scan(&exists)
	return exists, err
}
