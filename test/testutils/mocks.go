// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
)

// MockRecipeGenerator provides a mock implementation of RecipeGenerator
type MockRecipeGenerator struct {
	mock.Mock
}

// NewMockRecipeGenerator creates a new mock recipe generator
func NewMockRecipeGenerator() *MockRecipeGenerator {
	return &MockRecipeGenerator{}
}

// GenerateRecipe generates a recipe from ingredients and preferences
func (m *MockRecipeGenerator) GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error) {
	args := m.Called(ctx, ingredients, preferences)
	if rec, ok := args.Get(0).(*recipe.Recipe); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

// GenerateChefTips generates chef tips for a recipe
func (m *MockRecipeGenerator) GenerateChefTips(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error) {
	args := m.Called(ctx, title, ingredients)
	if tips, ok := args.Get(0).(*recipe.ChefTips); ok {
		return tips, args.Error(1)
	}
	return nil, args.Error(1)
}

// Name identifies the mock provider
func (m *MockRecipeGenerator) Name() string {
	return "mock"
}

// StubGenerator is a function-backed generator for tests that need
// conditional behavior without testify expectation bookkeeping. Nil
// functions yield a fixed canned result.
type StubGenerator struct {
	GenerateRecipeFn   func(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error)
	GenerateChefTipsFn func(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error)
}

// GenerateRecipe delegates to GenerateRecipeFn or returns a canned recipe
func (s *StubGenerator) GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error) {
	if s.GenerateRecipeFn != nil {
		return s.GenerateRecipeFn(ctx, ingredients, preferences)
	}
	return NewRecipeBuilder().WithTitle("Stub Dish").Build()
}

// GenerateChefTips delegates to GenerateChefTipsFn or returns canned tips
func (s *StubGenerator) GenerateChefTips(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error) {
	if s.GenerateChefTipsFn != nil {
		return s.GenerateChefTipsFn(ctx, title, ingredients)
	}
	return recipe.NewChefTips("Season as you go.", "A dry riesling.")
}

// Name identifies the stub provider
func (s *StubGenerator) Name() string {
	return "stub"
}

// MockAccountRepository provides a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a new mock account repository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

// FindOrCreate resolves a username to an account, creating it when new
func (m *MockAccountRepository) FindOrCreate(ctx context.Context, username string) (*session.Account, error) {
	args := m.Called(ctx, username)
	if account, ok := args.Get(0).(*session.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUsername finds an account by username
func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*session.Account, error) {
	args := m.Called(ctx, username)
	if account, ok := args.Get(0).(*session.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID finds an account by ID
func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*session.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockHistoryRepository provides a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

// NewMockHistoryRepository creates a new mock history repository
func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

// List returns an account's saved recipes
func (m *MockHistoryRepository) List(ctx context.Context, accountID uuid.UUID) ([]*recipe.SavedRecipe, error) {
	args := m.Called(ctx, accountID)
	if list, ok := args.Get(0).([]*recipe.SavedRecipe); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Save persists a record and returns the authoritative list
func (m *MockHistoryRepository) Save(ctx context.Context, accountID uuid.UUID, record *recipe.SavedRecipe) ([]*recipe.SavedRecipe, error) {
	args := m.Called(ctx, accountID, record)
	if list, ok := args.Get(0).([]*recipe.SavedRecipe); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete removes a record and returns the authoritative list
func (m *MockHistoryRepository) Delete(ctx context.Context, accountID uuid.UUID, recordID string) ([]*recipe.SavedRecipe, error) {
	args := m.Called(ctx, accountID, recordID)
	if list, ok := args.Get(0).([]*recipe.SavedRecipe); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockWorkspaceStore provides a mock implementation of WorkspaceStore
type MockWorkspaceStore struct {
	mock.Mock
}

// NewMockWorkspaceStore creates a new mock workspace store
func NewMockWorkspaceStore() *MockWorkspaceStore {
	return &MockWorkspaceStore{}
}

// Load fetches a workspace by ID
func (m *MockWorkspaceStore) Load(ctx context.Context, workspaceID string) (*session.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if ws, ok := args.Get(0).(*session.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

// Save persists a workspace
func (m *MockWorkspaceStore) Save(ctx context.Context, workspace *session.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

// Delete removes a workspace
func (m *MockWorkspaceStore) Delete(ctx context.Context, workspaceID string) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

// Ping checks store availability
func (m *MockWorkspaceStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// RecordingNotifier captures workspace change notifications for assertions
type RecordingNotifier struct {
	mu     sync.Mutex
	events []NotifiedChange
}

// NotifiedChange is one captured notification
type NotifiedChange struct {
	WorkspaceID string
	State       session.DisplayState
}

// NewRecordingNotifier creates a new recording notifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// NotifyWorkspaceChanged records the notification
func (n *RecordingNotifier) NotifyWorkspaceChanged(workspaceID string, workspace *session.Workspace) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, NotifiedChange{
		WorkspaceID: workspaceID,
		State:       workspace.DisplayState(),
	})
}

// Events returns a copy of the captured notifications
func (n *RecordingNotifier) Events() []NotifiedChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotifiedChange, len(n.events))
	copy(out, n.events)
	return out
}
