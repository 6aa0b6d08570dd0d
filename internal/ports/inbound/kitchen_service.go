// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
)

// KitchenService defines the use cases for the recipe workspace.
// This is the primary port that HTTP handlers and other driving adapters use.
// Every operation addresses one workspace by id and returns the workspace
// state after the transition.
type KitchenService interface {
	// Queries
	Workspace(ctx context.Context, workspaceID string) (*WorkspaceView, error)

	// Generation flow
	Generate(ctx context.Context, workspaceID string, cmd GenerateCommand) (*WorkspaceView, error)
	StartOver(ctx context.Context, workspaceID string) (*WorkspaceView, error)

	// History
	SelectHistoryItem(ctx context.Context, workspaceID, recordID string) (*WorkspaceView, error)
	DeleteRecipe(ctx context.Context, workspaceID, recordID string) (*WorkspaceView, error)

	// Session
	Login(ctx context.Context, workspaceID string, cmd LoginCommand) (*WorkspaceView, error)
	Logout(ctx context.Context, workspaceID string) (*WorkspaceView, error)

	// UI chrome
	SetSidebar(ctx context.Context, workspaceID string, open bool) (*WorkspaceView, error)
	SetLoginModal(ctx context.Context, workspaceID string, open bool) (*WorkspaceView, error)
}

// Command objects for operations

// GenerateCommand contains the inputs for one generation attempt
type GenerateCommand struct {
	Ingredients string   `json:"ingredients" validate:"required"`
	Preferences []string `json:"preferences" validate:"omitempty,dive,max=64"`
}

// LoginCommand contains the inputs for a login attempt
type LoginCommand struct {
	Username string `json:"username" validate:"required,max=64"`
}

// View objects returned to driving adapters

// WorkspaceView is the serializable projection of a workspace
type WorkspaceView struct {
	ID             string            `json:"id"`
	State          string            `json:"state"`
	Ingredients    string            `json:"ingredients"`
	Preferences    []string          `json:"preferences,omitempty"`
	Recipe         *RecipeView       `json:"recipe,omitempty"`
	ChefTips       *ChefTipsView     `json:"chefTips,omitempty"`
	SelectedID     string            `json:"selectedId,omitempty"`
	Loading        bool              `json:"loading"`
	LoadingMessage string            `json:"loadingMessage,omitempty"`
	Error          string            `json:"error,omitempty"`
	User           *UserView         `json:"user,omitempty"`
	History        []SavedRecipeView `json:"history"`
	SidebarOpen    bool              `json:"sidebarOpen"`
	LoginModalOpen bool              `json:"loginModalOpen"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// RecipeView is the serializable projection of a generated recipe
type RecipeView struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prepTime,omitempty"`
	CookTime     string   `json:"cookTime,omitempty"`
	Servings     string   `json:"servings,omitempty"`
}

// ChefTipsView is the serializable projection of chef tips
type ChefTipsView struct {
	CookingTip      string `json:"cookingTip,omitempty"`
	BeveragePairing string `json:"beveragePairing,omitempty"`
}

// UserView identifies the logged-in account
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SavedRecipeView is the serializable projection of a history record
type SavedRecipeView struct {
	ID        string        `json:"id"`
	Recipe    RecipeView    `json:"recipe"`
	ChefTips  *ChefTipsView `json:"chefTips,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewWorkspaceView projects a workspace into its view form
func NewWorkspaceView(ws *session.Workspace) *WorkspaceView {
	view := &WorkspaceView{
		ID:             ws.ID,
		State:          string(ws.DisplayState()),
		Ingredients:    ws.Ingredients,
		Preferences:    ws.Preferences,
		Recipe:         NewRecipeView(ws.Recipe),
		ChefTips:       NewChefTipsView(ws.ChefTips),
		SelectedID:     ws.SelectedID,
		Loading:        ws.Loading,
		LoadingMessage: ws.LoadingMessage,
		Error:          ws.ErrorMessage,
		History:        make([]SavedRecipeView, 0, len(ws.History)),
		SidebarOpen:    ws.SidebarOpen,
		LoginModalOpen: ws.LoginModalOpen,
		UpdatedAt:      ws.UpdatedAt,
	}

	if ws.IsLoggedIn() {
		view.User = &UserView{ID: ws.AccountID, Username: ws.Username}
	}

	for _, record := range ws.History {
		view.History = append(view.History, NewSavedRecipeView(record))
	}

	return view
}

// NewRecipeView projects a recipe into its view form, nil staying nil
func NewRecipeView(rec *recipe.Recipe) *RecipeView {
	if rec == nil {
		return nil
	}
	return &RecipeView{
		Title:        rec.Title(),
		Description:  rec.Description(),
		Ingredients:  rec.Ingredients(),
		Instructions: rec.Instructions(),
		PrepTime:     rec.PrepTime(),
		CookTime:     rec.CookTime(),
		Servings:     rec.Servings(),
	}
}

// NewChefTipsView projects chef tips into their view form, nil staying nil
func NewChefTipsView(tips *recipe.ChefTips) *ChefTipsView {
	if tips == nil {
		return nil
	}
	return &ChefTipsView{
		CookingTip:      tips.CookingTip,
		BeveragePairing: tips.BeveragePairing,
	}
}

// NewSavedRecipeView projects a history record into its view form
func NewSavedRecipeView(record *recipe.SavedRecipe) SavedRecipeView {
	view := SavedRecipeView{
		ID:        record.ID(),
		ChefTips:  NewChefTipsView(record.Tips()),
		CreatedAt: record.CreatedAt(),
	}
	if rec := NewRecipeView(record.Recipe()); rec != nil {
		view.Recipe = *rec
	}
	return view
}
