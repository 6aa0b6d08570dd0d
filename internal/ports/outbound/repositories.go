// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
)

// AccountRepository defines the interface for account persistence.
// Identity is username-only, so login resolves through FindOrCreate.
type AccountRepository interface {
	FindOrCreate(ctx context.Context, username string) (*session.Account, error)
	FindByUsername(ctx context.Context, username string) (*session.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*session.Account, error)
}

// HistoryRepository defines the interface for saved-recipe persistence.
// Save and Delete return the authoritative post-mutation list, newest
// first; callers replace their local history wholesale with that list.
type HistoryRepository interface {
	List(ctx context.Context, accountID uuid.UUID) ([]*recipe.SavedRecipe, error)
	Save(ctx context.Context, accountID uuid.UUID, record *recipe.SavedRecipe) ([]*recipe.SavedRecipe, error)
	Delete(ctx context.Context, accountID uuid.UUID, recordID string) ([]*recipe.SavedRecipe, error)
}

// WorkspaceStore defines the interface for workspace state persistence.
// Load returns session.ErrWorkspaceNotFound for unknown ids.
type WorkspaceStore interface {
	Load(ctx context.Context, workspaceID string) (*session.Workspace, error)
	Save(ctx context.Context, workspace *session.Workspace) error
	Delete(ctx context.Context, workspaceID string) error
	Ping(ctx context.Context) error
}

// WorkspaceNotifier pushes workspace transitions to connected clients.
// Implementations must not block the calling operation.
type WorkspaceNotifier interface {
	NotifyWorkspaceChanged(workspaceID string, workspace *session.Workspace)
}

// TTL applied by workspace stores; exported so token lifetimes can align
const WorkspaceTTL = 24 * time.Hour
