// Package redis provides a Redis-backed workspace store implementation
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/infrastructure/config"
	"github.com/mealsmith/v2/internal/ports/outbound"
)

const keyPrefix = "workspace:"

// NewClient creates a Redis client from configuration and verifies the
// connection before returning it
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client initialized successfully",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("database", cfg.Database),
	)

	return client, nil
}

// WorkspaceStore implements a Redis-backed workspace store. Each workspace
// is stored as a JSON snapshot under its own key with a sliding TTL.
type WorkspaceStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewWorkspaceStore creates a new Redis workspace store
func NewWorkspaceStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *WorkspaceStore {
	if ttl <= 0 {
		ttl = outbound.WorkspaceTTL
	}

	return &WorkspaceStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load retrieves a workspace snapshot
func (s *WorkspaceStore) Load(ctx context.Context, workspaceID string) (*session.Workspace, error) {
	value, err := s.client.Get(ctx, keyPrefix+workspaceID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrWorkspaceNotFound
		}
		s.logger.Error("Workspace load failed",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return nil, err
	}

	var workspace session.Workspace
	if err := json.Unmarshal(value, &workspace); err != nil {
		return nil, fmt.Errorf("corrupt workspace snapshot: %w", err)
	}

	return &workspace, nil
}

// Save stores a workspace snapshot, refreshing its TTL
func (s *WorkspaceStore) Save(ctx context.Context, workspace *session.Workspace) error {
	value, err := json.Marshal(workspace)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, keyPrefix+workspace.ID, value, s.ttl).Err(); err != nil {
		s.logger.Error("Workspace save failed",
			zap.String("workspace_id", workspace.ID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Delete removes a workspace
func (s *WorkspaceStore) Delete(ctx context.Context, workspaceID string) error {
	return s.client.Del(ctx, keyPrefix+workspaceID).Err()
}

// Ping reports store availability
func (s *WorkspaceStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
