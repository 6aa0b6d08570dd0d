// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/ports/inbound"
)

// WorkspaceAssertions provides workspace-state assertion methods
type WorkspaceAssertions struct {
	t *testing.T
}

// NewWorkspaceAssertions creates a new workspace assertions helper
func NewWorkspaceAssertions(t *testing.T) *WorkspaceAssertions {
	return &WorkspaceAssertions{t: t}
}

// InInputState asserts the view renders the empty input region
func (wa *WorkspaceAssertions) InInputState(view *inbound.WorkspaceView) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Equal(wa.t, string(session.DisplayInput), view.State)
	assert.Nil(wa.t, view.Recipe, "Input state should not carry a recipe")
	assert.Empty(wa.t, view.Error, "Input state should not carry an error")
	assert.False(wa.t, view.Loading)
}

// InLoadingState asserts the view renders the loading region
func (wa *WorkspaceAssertions) InLoadingState(view *inbound.WorkspaceView) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Equal(wa.t, string(session.DisplayLoading), view.State)
	assert.True(wa.t, view.Loading)
}

// InErrorState asserts the view renders the error region with a message
func (wa *WorkspaceAssertions) InErrorState(view *inbound.WorkspaceView) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Equal(wa.t, string(session.DisplayError), view.State)
	assert.NotEmpty(wa.t, view.Error, "Error state should carry a message")
	assert.Nil(wa.t, view.Recipe, "Error state should not carry a recipe")
}

// InResultState asserts the view renders the given recipe title
func (wa *WorkspaceAssertions) InResultState(view *inbound.WorkspaceView, title string) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Equal(wa.t, string(session.DisplayResult), view.State)
	require.NotNil(wa.t, view.Recipe, "Result state should carry a recipe")
	assert.Equal(wa.t, title, view.Recipe.Title)
	assert.Empty(wa.t, view.Error, "Result state should not carry an error")
	assert.False(wa.t, view.Loading)
}

// LoggedInAs asserts the view carries a session for the given username
func (wa *WorkspaceAssertions) LoggedInAs(view *inbound.WorkspaceView, username string) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	require.NotNil(wa.t, view.User, "Expected a logged-in user")
	assert.Equal(wa.t, username, view.User.Username)
}

// Anonymous asserts the view carries no session and no history
func (wa *WorkspaceAssertions) Anonymous(view *inbound.WorkspaceView) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Nil(wa.t, view.User, "Expected no logged-in user")
	assert.Empty(wa.t, view.History, "Anonymous workspace should have no history")
}

// HistoryLen asserts the history list length
func (wa *WorkspaceAssertions) HistoryLen(view *inbound.WorkspaceView, expected int) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Len(wa.t, view.History, expected)
}

// HistoryNewestFirst asserts the history list is ordered newest first
func (wa *WorkspaceAssertions) HistoryNewestFirst(view *inbound.WorkspaceView) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	for i := 1; i < len(view.History); i++ {
		assert.False(wa.t, view.History[i-1].CreatedAt.Before(view.History[i].CreatedAt),
			"History entry %d is older than entry %d", i-1, i)
	}
}

// TipsAbsent asserts the view carries no chef tips
func (wa *WorkspaceAssertions) TipsAbsent(view *inbound.WorkspaceView) {
	require.NotNil(wa.t, view, "Workspace view should not be nil")
	assert.Nil(wa.t, view.ChefTips, "Expected no chef tips")
}

// RecipeAssertions provides recipe-specific assertion methods
type RecipeAssertions struct {
	t *testing.T
}

// NewRecipeAssertions creates a new recipe assertions helper
func NewRecipeAssertions(t *testing.T) *RecipeAssertions {
	return &RecipeAssertions{t: t}
}

// ValidRecipe asserts that a recipe carries the fields display requires
func (ra *RecipeAssertions) ValidRecipe(rec *recipe.Recipe) {
	require.NotNil(ra.t, rec, "Recipe should not be nil")
	assert.NotEmpty(ra.t, rec.Title(), "Recipe should have a title")
	assert.NotEmpty(ra.t, rec.Ingredients(), "Recipe should have ingredients")
	assert.NotEmpty(ra.t, rec.Instructions(), "Recipe should have instructions")
}

// ViewMatches asserts a recipe view projects the given domain recipe
func (ra *RecipeAssertions) ViewMatches(view *inbound.RecipeView, rec *recipe.Recipe) {
	require.NotNil(ra.t, view, "Recipe view should not be nil")
	require.NotNil(ra.t, rec, "Recipe should not be nil")
	assert.Equal(ra.t, rec.Title(), view.Title)
	assert.Equal(ra.t, rec.Description(), view.Description)
	assert.Equal(ra.t, rec.Ingredients(), view.Ingredients)
	assert.Equal(ra.t, rec.Instructions(), view.Instructions)
	assert.Equal(ra.t, rec.PrepTime(), view.PrepTime)
	assert.Equal(ra.t, rec.CookTime(), view.CookTime)
	assert.Equal(ra.t, rec.Servings(), view.Servings)
}

// RecordMatches asserts a history record stores the given recipe and tips
func (ra *RecipeAssertions) RecordMatches(record *recipe.SavedRecipe, rec *recipe.Recipe, tips *recipe.ChefTips) {
	require.NotNil(ra.t, record, "Saved recipe should not be nil")
	assert.Equal(ra.t, rec.Title(), record.Recipe().Title())
	assert.Equal(ra.t, rec.Ingredients(), record.Recipe().Ingredients())
	if tips == nil {
		assert.Nil(ra.t, record.Tips())
	} else {
		require.NotNil(ra.t, record.Tips())
		assert.Equal(ra.t, tips.CookingTip, record.Tips().CookingTip)
		assert.Equal(ra.t, tips.BeveragePairing, record.Tips().BeveragePairing)
	}
}

// HTTPAssertions provides HTTP response assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusAndJSON asserts the response status and content type
func (ha *HTTPAssertions) StatusAndJSON(resp *http.Response, expectedStatus int) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedStatus, resp.StatusCode)
	assert.Contains(ha.t, resp.Header.Get("Content-Type"), "application/json")
}

// DecodeWorkspace decodes a workspace view from the response body
func (ha *HTTPAssertions) DecodeWorkspace(resp *http.Response) *inbound.WorkspaceView {
	require.NotNil(ha.t, resp, "Response should not be nil")
	defer resp.Body.Close()

	var view inbound.WorkspaceView
	err := json.NewDecoder(resp.Body).Decode(&view)
	require.NoError(ha.t, err, "Response body should decode as a workspace view")
	return &view
}

// ComprehensiveAssertions aggregates all assertion helpers
type ComprehensiveAssertions struct {
	Workspace *WorkspaceAssertions
	Recipe    *RecipeAssertions
	HTTP      *HTTPAssertions
	Database  *DatabaseHelper
}

// NewComprehensiveAssertions creates the full assertion set. The database
// helper is nil when no test database is attached.
func NewComprehensiveAssertions(t *testing.T, db *TestDatabase) *ComprehensiveAssertions {
	ca := &ComprehensiveAssertions{
		Workspace: NewWorkspaceAssertions(t),
		Recipe:    NewRecipeAssertions(t),
		HTTP:      NewHTTPAssertions(t),
	}
	if db != nil {
		ca.Database = NewDatabaseHelper(db)
	}
	return ca
}
