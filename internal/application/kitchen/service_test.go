// Package kitchen provides tests for the workspace controller
package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/ports/inbound"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// MockRecipeGenerator is a mock implementation of the recipe generator
type MockRecipeGenerator struct {
	mock.Mock
}

func (m *MockRecipeGenerator) GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error) {
	args := m.Called(ctx, ingredients, preferences)
	if rec, ok := args.Get(0).(*recipe.Recipe); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeGenerator) GenerateChefTips(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error) {
	args := m.Called(ctx, title, ingredients)
	if tips, ok := args.Get(0).(*recipe.ChefTips); ok {
		return tips, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeGenerator) Name() string {
	return "mock"
}

// MockAccountRepository is a mock implementation of the account repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindOrCreate(ctx context.Context, username string) (*session.Account, error) {
	args := m.Called(ctx, username)
	if account, ok := args.Get(0).(*session.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*session.Account, error) {
	args := m.Called(ctx, username)
	if account, ok := args.Get(0).(*session.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*session.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockHistoryRepository is a mock implementation of the history repository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) List(ctx context.Context, accountID uuid.UUID) ([]*recipe.SavedRecipe, error) {
	args := m.Called(ctx, accountID)
	if list, ok := args.Get(0).([]*recipe.SavedRecipe); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryRepository) Save(ctx context.Context, accountID uuid.UUID, record *recipe.SavedRecipe) ([]*recipe.SavedRecipe, error) {
	args := m.Called(ctx, accountID, record)
	if list, ok := args.Get(0).([]*recipe.SavedRecipe); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryRepository) Delete(ctx context.Context, accountID uuid.UUID, recordID string) ([]*recipe.SavedRecipe, error) {
	args := m.Called(ctx, accountID, recordID)
	if list, ok := args.Get(0).([]*recipe.SavedRecipe); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeStore emulates the real workspace stores, which serialize state to
// JSON. Round-tripping through bytes keeps each Load independent of the
// object a concurrent caller is still mutating.
type fakeStore struct {
	mu       sync.Mutex
	items    map[string][]byte
	failSave bool
	failLoad bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string][]byte)}
}

func (s *fakeStore) Load(ctx context.Context, workspaceID string) (*session.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, errors.New("store unavailable")
	}
	data, ok := s.items[workspaceID]
	if !ok {
		return nil, session.ErrWorkspaceNotFound
	}
	var ws session.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *fakeStore) Save(ctx context.Context, ws *session.Workspace) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("store unavailable")
	}
	s.items[ws.ID] = data
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, workspaceID)
	return nil
}

func (s *fakeStore) Ping(ctx context.Context) error {
	return nil
}

// Test utilities

type serviceFixture struct {
	svc      inbound.KitchenService
	store    *fakeStore
	accounts *MockAccountRepository
	history  *MockHistoryRepository
	gen      *MockRecipeGenerator
}

func newServiceFixture(t *testing.T) *serviceFixture {
	f := &serviceFixture{
		store:    newFakeStore(),
		accounts: &MockAccountRepository{},
		history:  &MockHistoryRepository{},
		gen:      &MockRecipeGenerator{},
	}
	f.svc = NewService(f.store, f.accounts, f.history, f.gen, nil, zaptest.NewLogger(t))
	return f
}

func (f *serviceFixture) login(t *testing.T, workspaceID, username string, history []*recipe.SavedRecipe) *session.Account {
	t.Helper()
	account, err := session.NewAccount(username)
	require.NoError(t, err)
	f.accounts.On("FindOrCreate", mock.Anything, username).Return(account, nil).Once()
	f.history.On("List", mock.Anything, account.ID()).Return(history, nil).Once()
	_, err = f.svc.Login(context.Background(), workspaceID, inbound.LoginCommand{Username: username})
	require.NoError(t, err)
	return account
}

func testRecipeFixture(t *testing.T) *recipe.Recipe {
	t.Helper()
	rec, err := recipe.NewRecipe(
		"Garlic Butter Pasta",
		"Weeknight pasta in a garlic butter sauce.",
		[]string{"pasta", "garlic", "butter"},
		[]string{"Boil the pasta.", "Melt the butter with the garlic.", "Toss together."},
		"10 minutes",
		"15 minutes",
		"2",
	)
	require.NoError(t, err)
	return rec
}

func testTipsFixture(t *testing.T) *recipe.ChefTips {
	t.Helper()
	tips, err := recipe.NewChefTips("Reserve a cup of pasta water.", "A crisp pinot grigio.")
	require.NoError(t, err)
	return tips
}

func testRecordFixture(t *testing.T, createdAt time.Time) *recipe.SavedRecipe {
	t.Helper()
	record, err := recipe.NewSavedRecipe(testRecipeFixture(t), testTipsFixture(t), createdAt)
	require.NoError(t, err)
	return record
}

func appCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

// Workspace tests

func TestWorkspaceCreatesFreshState(t *testing.T) {
	f := newServiceFixture(t)

	view, err := f.svc.Workspace(context.Background(), "ws-1")
	require.NoError(t, err)

	assert.Equal(t, "ws-1", view.ID)
	assert.Equal(t, "input", view.State)
	assert.Empty(t, view.Ingredients)
	assert.Nil(t, view.Recipe)
	assert.Nil(t, view.User)
	assert.Empty(t, view.History)
	assert.False(t, view.Loading)
	assert.False(t, view.SidebarOpen)

	// The fresh workspace is persisted so the id is stable across reads
	_, err = f.store.Load(context.Background(), "ws-1")
	assert.NoError(t, err)
}

// Generation tests

func TestGenerateRejectsBlankIngredients(t *testing.T) {
	inputs := []string{"", "   ", "\t\n "}

	for _, input := range inputs {
		f := newServiceFixture(t)

		_, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: input})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidationFailed, appCode(t, err))

		// Rejected before any provider call, and without entering loading
		f.gen.AssertNotCalled(t, "GenerateRecipe", mock.Anything, mock.Anything, mock.Anything)
		view, err := f.svc.Workspace(context.Background(), "ws-1")
		require.NoError(t, err)
		assert.Equal(t, "input", view.State)
		assert.False(t, view.Loading)
	}
}

func TestGenerateHappyPath(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)
	tips := testTipsFixture(t)

	f.gen.On("GenerateRecipe", mock.Anything, "pasta, garlic, butter", []string{}).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, rec.Title(), rec.Ingredients()).Return(tips, nil).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta, garlic, butter"})
	require.NoError(t, err)

	assert.Equal(t, "result", view.State)
	assert.False(t, view.Loading)
	assert.Empty(t, view.Error)
	require.NotNil(t, view.Recipe)
	assert.Equal(t, "Garlic Butter Pasta", view.Recipe.Title)
	require.NotNil(t, view.ChefTips)
	assert.Equal(t, "Reserve a cup of pasta water.", view.ChefTips.CookingTip)

	// Logged out, so nothing is persisted
	f.history.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	f.gen.AssertExpectations(t)
}

func TestGenerateNormalizesPreferences(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)

	f.gen.On("GenerateRecipe", mock.Anything, "tofu", []string{"vegan", "spicy"}).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Once()

	_, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{
		Ingredients: "tofu",
		Preferences: []string{" Vegan ", "vegan", "Spicy"},
	})
	require.NoError(t, err)

	f.gen.AssertExpectations(t)
}

func TestGenerateEntersLoadingAndClearsPreviousResult(t *testing.T) {
	f := newServiceFixture(t)
	first := testRecipeFixture(t)
	second, err := recipe.NewRecipe(
		"Tomato Soup",
		"",
		[]string{"tomatoes"},
		[]string{"Simmer the tomatoes."},
		"", "", "",
	)
	require.NoError(t, err)

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Return(first, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("skip")).Twice()

	_, err = f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	// While the second run is at the provider, the stored state must be
	// loading with the first result already cleared
	f.gen.On("GenerateRecipe", mock.Anything, "tomatoes", mock.Anything).Run(func(args mock.Arguments) {
		ws, loadErr := f.store.Load(context.Background(), "ws-1")
		require.NoError(t, loadErr)
		assert.True(t, ws.Loading)
		assert.Equal(t, session.DisplayLoading, ws.DisplayState())
		assert.Nil(t, ws.Recipe)
		assert.Empty(t, ws.ErrorMessage)
	}).Return(second, nil).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "tomatoes"})
	require.NoError(t, err)
	assert.Equal(t, "result", view.State)
	assert.Equal(t, "Tomato Soup", view.Recipe.Title)
}

func TestGenerateRecipeFailureSurfacesReason(t *testing.T) {
	f := newServiceFixture(t)

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).
		Return(nil, errors.New("model timed out")).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	assert.Equal(t, "error", view.State)
	assert.Equal(t, "Failed to generate recipe: model timed out", view.Error)
	assert.Nil(t, view.Recipe)
	assert.False(t, view.Loading)

	// The chain stops at the first fatal failure
	f.gen.AssertNotCalled(t, "GenerateChefTips", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateProviderErrorSurfacesDetails(t *testing.T) {
	f := newServiceFixture(t)

	providerErr := apperrors.NewAIProviderError("ollama", errors.New("ollama error 500: model not loaded"))
	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).
		Return(nil, providerErr).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	assert.Equal(t, "error", view.State)
	assert.Equal(t, "Failed to generate recipe: ollama error 500: model not loaded", view.Error)
}

func TestGenerateTipsFailureIsSilent(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("tips provider down")).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	assert.Equal(t, "result", view.State)
	assert.Nil(t, view.ChefTips)
	assert.Empty(t, view.Error)
}

func TestGeneratePersistsHistoryWhenLoggedIn(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)
	account := f.login(t, "ws-1", "alice", nil)

	saved := []*recipe.SavedRecipe{testRecordFixture(t, time.Now())}
	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Once()
	f.history.On("Save", mock.Anything, account.ID(), mock.AnythingOfType("*recipe.SavedRecipe")).Return(saved, nil).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	assert.Equal(t, "result", view.State)
	require.Len(t, view.History, 1)
	assert.Equal(t, saved[0].ID(), view.History[0].ID)
	f.history.AssertExpectations(t)
}

func TestGeneratePersistFailureKeepsResult(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)
	account := f.login(t, "ws-1", "alice", nil)

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Once()
	f.history.On("Save", mock.Anything, account.ID(), mock.Anything).
		Return(nil, errors.New("insert failed")).Once()

	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	// The user keeps the recipe; only the save is lost
	assert.Equal(t, "result", view.State)
	assert.Empty(t, view.Error)
	assert.Empty(t, view.History)
}

func TestGenerateRejectsConcurrentRun(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Maybe()

	type result struct {
		view *inbound.WorkspaceView
		err  error
	}
	done := make(chan result, 1)
	go func() {
		view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
		done <- result{view, err}
	}()

	<-started
	_, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "eggs"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationInProgress, appCode(t, err))

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, "result", first.view.State)
}

func TestLogoutDuringGenerationDiscardsResult(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)
	account := f.login(t, "ws-1", "alice", nil)

	started := make(chan struct{})
	release := make(chan struct{})
	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Maybe()

	type result struct {
		view *inbound.WorkspaceView
		err  error
	}
	done := make(chan result, 1)
	go func() {
		view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
		done <- result{view, err}
	}()

	<-started
	logoutView, err := f.svc.Logout(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Nil(t, logoutView.User)

	close(release)
	res := <-done
	require.NoError(t, res.err)

	// The completed generation lands after logout and must not resurrect
	// the old session's result
	assert.Equal(t, "input", res.view.State)
	assert.Nil(t, res.view.Recipe)
	assert.Nil(t, res.view.User)

	view, err := f.svc.Workspace(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "input", view.State)
	f.history.AssertNotCalled(t, "Save", mock.Anything, account.ID(), mock.Anything)
}

func TestStartOverDuringGenerationDiscardsResult(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Maybe()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
		done <- err
	}()

	<-started
	_, err := f.svc.StartOver(context.Background(), "ws-1")
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	view, err := f.svc.Workspace(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "input", view.State)
	assert.Nil(t, view.Recipe)
}

// Login and logout tests

func TestLoginEstablishesSessionAndHistory(t *testing.T) {
	f := newServiceFixture(t)
	records := []*recipe.SavedRecipe{testRecordFixture(t, time.Now())}

	account, err := session.NewAccount("alice")
	require.NoError(t, err)
	f.accounts.On("FindOrCreate", mock.Anything, "alice").Return(account, nil).Once()
	f.history.On("List", mock.Anything, account.ID()).Return(records, nil).Once()

	view, err := f.svc.Login(context.Background(), "ws-1", inbound.LoginCommand{Username: "alice"})
	require.NoError(t, err)

	require.NotNil(t, view.User)
	assert.Equal(t, "alice", view.User.Username)
	require.Len(t, view.History, 1)
	assert.False(t, view.LoginModalOpen)
}

func TestLoginNormalizesUsername(t *testing.T) {
	f := newServiceFixture(t)

	account, err := session.NewAccount("alice")
	require.NoError(t, err)
	f.accounts.On("FindOrCreate", mock.Anything, "alice").Return(account, nil).Once()
	f.history.On("List", mock.Anything, account.ID()).Return([]*recipe.SavedRecipe{}, nil).Once()

	view, err := f.svc.Login(context.Background(), "ws-1", inbound.LoginCommand{Username: "  Alice "})
	require.NoError(t, err)

	assert.Equal(t, "alice", view.User.Username)
	f.accounts.AssertExpectations(t)
}

func TestLoginRejectsBlankUsername(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Login(context.Background(), "ws-1", inbound.LoginCommand{Username: "   "})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, appCode(t, err))
	f.accounts.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
}

func TestLoginAccountFailureLeavesNoSession(t *testing.T) {
	f := newServiceFixture(t)

	f.accounts.On("FindOrCreate", mock.Anything, "alice").
		Return(nil, errors.New("connection refused")).Once()

	_, err := f.svc.Login(context.Background(), "ws-1", inbound.LoginCommand{Username: "alice"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Login failed", appErr.Message)
	assert.NotContains(t, appErr.Message, "connection refused")

	view, wErr := f.svc.Workspace(context.Background(), "ws-1")
	require.NoError(t, wErr)
	assert.Nil(t, view.User)
}

func TestLoginHistoryFailureLeavesNoSession(t *testing.T) {
	f := newServiceFixture(t)

	account, err := session.NewAccount("alice")
	require.NoError(t, err)
	f.accounts.On("FindOrCreate", mock.Anything, "alice").Return(account, nil).Once()
	f.history.On("List", mock.Anything, account.ID()).
		Return(nil, errors.New("query timeout")).Once()

	_, err = f.svc.Login(context.Background(), "ws-1", inbound.LoginCommand{Username: "alice"})
	require.Error(t, err)

	// Account resolution succeeded but the workspace never saw it
	view, wErr := f.svc.Workspace(context.Background(), "ws-1")
	require.NoError(t, wErr)
	assert.Nil(t, view.User)
	assert.Empty(t, view.History)
}

func TestLogoutClearsSessionScopedState(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)
	f.login(t, "ws-1", "alice", []*recipe.SavedRecipe{testRecordFixture(t, time.Now())})

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Once()
	f.history.On("Save", mock.Anything, mock.Anything, mock.Anything).Return([]*recipe.SavedRecipe{testRecordFixture(t, time.Now())}, nil).Once()
	_, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)
	_, err = f.svc.SetSidebar(context.Background(), "ws-1", true)
	require.NoError(t, err)

	view, err := f.svc.Logout(context.Background(), "ws-1")
	require.NoError(t, err)

	assert.Nil(t, view.User)
	assert.Empty(t, view.History)
	assert.Nil(t, view.Recipe)
	assert.Empty(t, view.Ingredients)
	assert.Empty(t, view.Error)
	assert.False(t, view.SidebarOpen)
	assert.Equal(t, "input", view.State)
}

func TestLogoutSurvivesStoreFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t, "ws-1", "alice", nil)

	f.store.mu.Lock()
	f.store.failSave = true
	f.store.mu.Unlock()

	view, err := f.svc.Logout(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Nil(t, view.User)
	assert.Equal(t, "input", view.State)
}

// History tests

func TestSelectHistoryItemDisplaysRecord(t *testing.T) {
	f := newServiceFixture(t)
	record := testRecordFixture(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))
	f.login(t, "ws-1", "alice", []*recipe.SavedRecipe{record})

	view, err := f.svc.SelectHistoryItem(context.Background(), "ws-1", record.ID())
	require.NoError(t, err)

	assert.Equal(t, "result", view.State)
	assert.Equal(t, record.ID(), view.SelectedID)
	require.NotNil(t, view.Recipe)
	assert.Equal(t, "Garlic Butter Pasta", view.Recipe.Title)
	assert.Equal(t, "pasta, garlic, butter", view.Ingredients)

	// Selecting again is a no-op, not an error
	again, err := f.svc.SelectHistoryItem(context.Background(), "ws-1", record.ID())
	require.NoError(t, err)
	assert.Equal(t, view.SelectedID, again.SelectedID)
	assert.Equal(t, view.Recipe.Title, again.Recipe.Title)
}

func TestSelectHistoryItemClearsError(t *testing.T) {
	f := newServiceFixture(t)
	record := testRecordFixture(t, time.Now())
	f.login(t, "ws-1", "alice", []*recipe.SavedRecipe{record})

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).
		Return(nil, errors.New("provider down")).Once()
	view, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)
	require.Equal(t, "error", view.State)

	view, err = f.svc.SelectHistoryItem(context.Background(), "ws-1", record.ID())
	require.NoError(t, err)
	assert.Equal(t, "result", view.State)
	assert.Empty(t, view.Error)
}

func TestSelectUnknownRecord(t *testing.T) {
	f := newServiceFixture(t)
	f.login(t, "ws-1", "alice", nil)

	_, err := f.svc.SelectHistoryItem(context.Background(), "ws-1", "1700000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRecipeNotFound, appCode(t, err))
}

func TestDeleteRequiresLogin(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.DeleteRecipe(context.Background(), "ws-1", "1700000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeLoginRequired, appCode(t, err))
	f.history.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteDisplayedRecipeClearsDisplay(t *testing.T) {
	f := newServiceFixture(t)
	doomed := testRecordFixture(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))
	keeper := testRecordFixture(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	account := f.login(t, "ws-1", "alice", []*recipe.SavedRecipe{keeper, doomed})

	_, err := f.svc.SelectHistoryItem(context.Background(), "ws-1", doomed.ID())
	require.NoError(t, err)

	f.history.On("Delete", mock.Anything, account.ID(), doomed.ID()).
		Return([]*recipe.SavedRecipe{keeper}, nil).Once()

	view, err := f.svc.DeleteRecipe(context.Background(), "ws-1", doomed.ID())
	require.NoError(t, err)

	assert.Equal(t, "input", view.State)
	assert.Nil(t, view.Recipe)
	assert.Empty(t, view.SelectedID)
	require.Len(t, view.History, 1)
	assert.Equal(t, keeper.ID(), view.History[0].ID)
}

func TestDeleteOtherRecipeKeepsDisplay(t *testing.T) {
	f := newServiceFixture(t)
	displayed := testRecordFixture(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))
	doomed := testRecordFixture(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	account := f.login(t, "ws-1", "alice", []*recipe.SavedRecipe{doomed, displayed})

	_, err := f.svc.SelectHistoryItem(context.Background(), "ws-1", displayed.ID())
	require.NoError(t, err)

	f.history.On("Delete", mock.Anything, account.ID(), doomed.ID()).
		Return([]*recipe.SavedRecipe{displayed}, nil).Once()

	view, err := f.svc.DeleteRecipe(context.Background(), "ws-1", doomed.ID())
	require.NoError(t, err)

	assert.Equal(t, "result", view.State)
	assert.Equal(t, displayed.ID(), view.SelectedID)
	require.Len(t, view.History, 1)
}

func TestDeleteUnknownRecord(t *testing.T) {
	f := newServiceFixture(t)
	account := f.login(t, "ws-1", "alice", nil)

	f.history.On("Delete", mock.Anything, account.ID(), "1700000000000").
		Return(nil, recipe.ErrRecordNotFound).Once()

	_, err := f.svc.DeleteRecipe(context.Background(), "ws-1", "1700000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRecipeNotFound, appCode(t, err))
}

// Start over and chrome tests

func TestStartOverKeepsSessionAndHistory(t *testing.T) {
	f := newServiceFixture(t)
	rec := testRecipeFixture(t)
	record := testRecordFixture(t, time.Now())
	f.login(t, "ws-1", "alice", []*recipe.SavedRecipe{record})

	f.gen.On("GenerateRecipe", mock.Anything, "pasta", mock.Anything).Return(rec, nil).Once()
	f.gen.On("GenerateChefTips", mock.Anything, mock.Anything, mock.Anything).Return(testTipsFixture(t), nil).Once()
	f.history.On("Save", mock.Anything, mock.Anything, mock.Anything).Return([]*recipe.SavedRecipe{record}, nil).Once()
	_, err := f.svc.Generate(context.Background(), "ws-1", inbound.GenerateCommand{Ingredients: "pasta"})
	require.NoError(t, err)

	view, err := f.svc.StartOver(context.Background(), "ws-1")
	require.NoError(t, err)

	assert.Equal(t, "input", view.State)
	assert.Nil(t, view.Recipe)
	assert.Empty(t, view.Ingredients)
	require.NotNil(t, view.User)
	assert.Equal(t, "alice", view.User.Username)
	assert.Len(t, view.History, 1)
}

func TestSidebarAndLoginModalToggles(t *testing.T) {
	f := newServiceFixture(t)

	view, err := f.svc.SetSidebar(context.Background(), "ws-1", true)
	require.NoError(t, err)
	assert.True(t, view.SidebarOpen)

	view, err = f.svc.SetLoginModal(context.Background(), "ws-1", true)
	require.NoError(t, err)
	assert.True(t, view.LoginModalOpen)

	view, err = f.svc.SetSidebar(context.Background(), "ws-1", false)
	require.NoError(t, err)
	assert.False(t, view.SidebarOpen)

	view, err = f.svc.SetLoginModal(context.Background(), "ws-1", false)
	require.NoError(t, err)
	assert.False(t, view.LoginModalOpen)
}

func TestWorkspaceStoreFailurePropagates(t *testing.T) {
	f := newServiceFixture(t)
	f.store.mu.Lock()
	f.store.failLoad = true
	f.store.mu.Unlock()

	_, err := f.svc.Workspace(context.Background(), "ws-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, appCode(t, err))
}
