// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mealsmith/v2/internal/application/ai"
	"github.com/mealsmith/v2/internal/application/kitchen"
	"github.com/mealsmith/v2/internal/infrastructure/ai/ollama"
	"github.com/mealsmith/v2/internal/infrastructure/ai/openai"
	"github.com/mealsmith/v2/internal/infrastructure/config"
	"github.com/mealsmith/v2/internal/infrastructure/http/middleware"
	"github.com/mealsmith/v2/internal/infrastructure/http/server"
	"github.com/mealsmith/v2/internal/infrastructure/http/ws"
	"github.com/mealsmith/v2/internal/infrastructure/monitoring"
	gormRepo "github.com/mealsmith/v2/internal/infrastructure/persistence/gorm"
	"github.com/mealsmith/v2/internal/infrastructure/persistence/memory"
	"github.com/mealsmith/v2/internal/infrastructure/persistence/migrations"
	"github.com/mealsmith/v2/internal/infrastructure/persistence/postgres"
	redisstore "github.com/mealsmith/v2/internal/infrastructure/persistence/redis"
	"github.com/mealsmith/v2/internal/infrastructure/persistence/sqlite"
	"github.com/mealsmith/v2/internal/infrastructure/security"
	"github.com/mealsmith/v2/internal/ports/outbound"
	"github.com/mealsmith/v2/pkg/healthcheck"
	"github.com/mealsmith/v2/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	WorkspaceModule,
	RepositoryModule,
	AIModule,
	ServiceModule,
	HTTPModule,
	ObservabilityModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, *config.Watcher, error) {
		return config.LoadAndWatch(os.Getenv("MEALSMITH_CONFIG"))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*logger.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
	func(log *logger.Logger) *zap.Logger {
		return log.Logger
	},
)

// DatabaseModule provides the relational database and the health probe pool
var DatabaseModule = fx.Provide(
	newDatabase,
	newPgxPool,
)

// newDatabase opens the configured database and brings the schema current.
// SQLite migrates through GORM inside SetupDatabase; PostgreSQL runs the
// versioned migrations unless auto_migrate is off, in which case the
// operator applies them out of band.
func newDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver == "postgres" {
		db, err := postgres.SetupDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := migrateUp(db, cfg, log); err != nil {
				return nil, err
			}
		}
		return db, nil
	}

	db, err := sqlite.SetupDatabase(cfg.Database.Database, gormRepo.LogLevelFromString(cfg.Database.LogLevel))
	if err != nil {
		return nil, err
	}

	log.Info("Connected to SQLite database",
		zap.String("path", cfg.Database.Database),
	)
	return db, nil
}

func migrateUp(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	migrator, err := migrations.New(sqlDB, cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return migrator.Up()
}

// newPgxPool creates the health probe pool. Only postgres deployments have
// one; sqlite readiness reports through the workspace store checker.
func newPgxPool(cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.Database.Driver != "postgres" {
		return nil, nil
	}
	return postgres.NewPgxPool(context.Background(), cfg, log)
}

// WorkspaceModule provides workspace state storage
var WorkspaceModule = fx.Provide(
	newRedisClient,
	newWorkspaceStore,
)

func newRedisClient(cfg *config.Config, log *zap.Logger) (*goredis.Client, error) {
	if cfg.Workspace.Store != "redis" {
		return nil, nil
	}
	return redisstore.NewClient(&cfg.Redis, log)
}

func newWorkspaceStore(cfg *config.Config, client *goredis.Client, log *zap.Logger) outbound.WorkspaceStore {
	if cfg.Workspace.Store == "redis" {
		return redisstore.NewWorkspaceStore(client, cfg.Workspace.TTL, log)
	}

	log.Info("Using in-memory workspace store",
		zap.Duration("ttl", cfg.Workspace.TTL),
	)
	return memory.NewWorkspaceStore(cfg.Workspace.TTL)
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewAccountRepository,
	gormRepo.NewHistoryRepository,
)

// AIModule provides the recipe generator
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.RecipeGenerator {
		return ai.NewService(ai.Config{
			Provider:       cfg.AI.Provider,
			EnableFallback: cfg.AI.EnableFallback,
			OpenAI: openai.Config{
				APIKey:  cfg.AI.OpenAIKey,
				BaseURL: cfg.AI.OpenAIBaseURL,
				Model:   cfg.AI.OpenAIModel,
				Timeout: cfg.AI.Timeout(),
			},
			Ollama: ollama.Config{
				BaseURL: cfg.AI.OllamaHost,
				Model:   cfg.AI.OllamaModel,
				Timeout: cfg.AI.Timeout(),
			},
		}, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	kitchen.NewService,
)

// HTTPModule provides the HTTP server with its session, event, and
// observability plumbing
var HTTPModule = fx.Provide(
	security.NewTokenService,
	ws.NewHub,
	func(hub *ws.Hub) outbound.WorkspaceNotifier { return hub },
	middleware.NewMetrics,
	newHealthCheck,
	server.New,
)

// newHealthCheck assembles readiness probes for the dependencies this
// deployment actually has
func newHealthCheck(
	cfg *config.Config,
	log *zap.Logger,
	metrics *middleware.Metrics,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	store outbound.WorkspaceStore,
) *healthcheck.HealthCheck {
	h := healthcheck.New(cfg.App.Version, log)
	h.SetMetrics(healthcheck.NewHealthMetrics(metrics.Registry()))

	if pool != nil {
		h.Register("database", healthcheck.NewDatabaseChecker(pool))
	}
	if redisClient != nil {
		h.Register("redis", healthcheck.NewRedisChecker(redisClient))
	}

	h.Register("workspace_store", healthcheck.NewCustomChecker("workspace_store",
		func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			if err := store.Ping(ctx); err != nil {
				return healthcheck.StatusUnhealthy, err.Error(), nil
			}
			return healthcheck.StatusHealthy, "", nil
		}))

	// A dead AI provider degrades the service instead of failing readiness:
	// generation errors surface in the workspace, everything else still works
	if cfg.AI.Provider == "ollama" || cfg.AI.EnableFallback {
		upstream := healthcheck.NewExternalServiceChecker("ollama", cfg.AI.OllamaHost+"/api/tags", 5*time.Second)
		h.Register("ai_provider", healthcheck.NewCustomChecker("ai_provider",
			func(ctx context.Context) (healthcheck.Status, string, interface{}) {
				check := upstream.Check(ctx)
				if check.Status == healthcheck.StatusHealthy {
					return healthcheck.StatusHealthy, "", check.Metadata
				}
				return healthcheck.StatusDegraded, check.Message, check.Metadata
			}))
	}

	return h
}

// ObservabilityModule provides distributed tracing
var ObservabilityModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracerProvider, error) {
		return monitoring.NewTracerProvider(context.Background(), cfg, log)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	watcher *config.Watcher,
	log *logger.Logger,
	db *gorm.DB,
	store outbound.WorkspaceStore,
	redisClient *goredis.Client,
	pool *pgxpool.Pool,
	hub *ws.Hub,
	srv *server.Server,
	tracer *monitoring.TracerProvider,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Mealsmith",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			// Reloads only adjust the log level; everything else requires
			// a restart
			watcher.Start(log.Logger, func(fresh *config.Config) {
				if err := log.SetLevel(fresh.App.LogLevel); err != nil {
					log.Warn("Ignoring invalid log level from config reload",
						zap.String("log_level", fresh.App.LogLevel),
					)
				}
			})

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Mealsmith")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			hub.Close()

			if memStore, ok := store.(*memory.WorkspaceStore); ok {
				memStore.Close()
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					log.Error("Failed to close Redis client", zap.Error(err))
				}
			}
			if pool != nil {
				pool.Close()
			}

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			if err := tracer.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown tracer", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
