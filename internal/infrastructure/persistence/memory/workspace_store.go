// Package memory provides an in-memory workspace store implementation
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/ports/outbound"
)

// storeItem represents a stored workspace snapshot
type storeItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// WorkspaceStore implements an in-memory workspace store. Workspaces are
// held as JSON snapshots so callers always get an independent copy, the
// same contract the Redis store provides.
type WorkspaceStore struct {
	data  map[string]storeItem
	ttl   time.Duration
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewWorkspaceStore creates a new in-memory workspace store
func NewWorkspaceStore(ttl time.Duration) *WorkspaceStore {
	if ttl <= 0 {
		ttl = outbound.WorkspaceTTL
	}

	store := &WorkspaceStore{
		data: make(map[string]storeItem),
		ttl:  ttl,
		stop: make(chan struct{}),
	}

	// Start cleanup goroutine
	go store.cleanup()

	return store
}

// Load retrieves a workspace snapshot
func (s *WorkspaceStore) Load(ctx context.Context, workspaceID string) (*session.Workspace, error) {
	s.mutex.RLock()
	item, exists := s.data[workspaceID]
	s.mutex.RUnlock()

	if !exists || time.Now().After(item.ExpiresAt) {
		return nil, session.ErrWorkspaceNotFound
	}

	var workspace session.Workspace
	if err := json.Unmarshal(item.Value, &workspace); err != nil {
		return nil, err
	}

	return &workspace, nil
}

// Save stores a workspace snapshot, refreshing its expiry
func (s *WorkspaceStore) Save(ctx context.Context, workspace *session.Workspace) error {
	value, err := json.Marshal(workspace)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[workspace.ID] = storeItem{
		Value:     value,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	return nil
}

// Delete removes a workspace
func (s *WorkspaceStore) Delete(ctx context.Context, workspaceID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, workspaceID)
	return nil
}

// Ping reports store availability
func (s *WorkspaceStore) Ping(ctx context.Context) error {
	return nil
}

// Close stops the cleanup goroutine
func (s *WorkspaceStore) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
}

// cleanup removes expired items
func (s *WorkspaceStore) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			now := time.Now()
			for key, item := range s.data {
				if now.After(item.ExpiresAt) {
					delete(s.data, key)
				}
			}
			s.mutex.Unlock()
		case <-s.stop:
			return
		}
	}
}
