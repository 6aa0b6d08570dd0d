package session

import (
	"strings"
	"time"

	"github.com/mealsmith/v2/internal/domain/recipe"
)

// DisplayState identifies which region of the workspace the client should
// render. It is derived, never stored: Loading is exclusive and suppresses
// both Error and Result.
type DisplayState string

const (
	DisplayInput   DisplayState = "input"
	DisplayLoading DisplayState = "loading"
	DisplayError   DisplayState = "error"
	DisplayResult  DisplayState = "result"
)

// Workspace is the full application state for one client session. It is a
// serializable state bag with transition methods; all reads and writes go
// through the workspace store, which owns persistence.
//
// The Epoch counter increments whenever the user navigates away from the
// current generation context (logout, start-over). A generation that
// finishes against an older epoch must discard its results instead of
// overwriting state the user has already left behind.
type Workspace struct {
	ID             string                `json:"id"`
	Ingredients    string                `json:"ingredients"`
	Preferences    []string              `json:"preferences,omitempty"`
	Recipe         *recipe.Recipe        `json:"recipe,omitempty"`
	ChefTips       *recipe.ChefTips      `json:"chefTips,omitempty"`
	SelectedID     string                `json:"selectedId,omitempty"`
	Loading        bool                  `json:"loading"`
	LoadingMessage string                `json:"loadingMessage,omitempty"`
	ErrorMessage   string                `json:"errorMessage,omitempty"`
	AccountID      string                `json:"accountId,omitempty"`
	Username       string                `json:"username,omitempty"`
	History        []*recipe.SavedRecipe `json:"history"`
	SidebarOpen    bool                  `json:"sidebarOpen"`
	LoginModalOpen bool                  `json:"loginModalOpen"`
	Epoch          int64                 `json:"epoch"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// NewWorkspace creates an empty workspace in the Input state
func NewWorkspace(id string) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:        id,
		History:   []*recipe.SavedRecipe{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayState derives the current display region
func (w *Workspace) DisplayState() DisplayState {
	switch {
	case w.Loading:
		return DisplayLoading
	case w.ErrorMessage != "":
		return DisplayError
	case w.Recipe != nil:
		return DisplayResult
	default:
		return DisplayInput
	}
}

// IsLoggedIn reports whether an account is attached to the workspace
func (w *Workspace) IsLoggedIn() bool {
	return w.AccountID != ""
}

// BeginGeneration validates the ingredients input and moves the workspace
// into the Loading state, clearing the previous recipe, tips, error, and
// selection. It fails without touching state when the input is blank or a
// generation is already in flight.
func (w *Workspace) BeginGeneration(ingredients string, preferences []string, message string) error {
	if strings.TrimSpace(ingredients) == "" {
		return ErrEmptyIngredients
	}

	if w.Loading {
		return ErrGenerationInFlight
	}

	w.Ingredients = ingredients
	w.Preferences = recipe.NormalizePreferences(preferences)
	w.Recipe = nil
	w.ChefTips = nil
	w.SelectedID = ""
	w.ErrorMessage = ""
	w.Loading = true
	w.LoadingMessage = message
	w.touch()
	return nil
}

// SetProgress updates the loading message. It is a no-op outside of the
// Loading state.
func (w *Workspace) SetProgress(message string) {
	if !w.Loading {
		return
	}
	w.LoadingMessage = message
	w.touch()
}

// CompleteGeneration applies a successful generation result. Tips may be
// nil: their absence never blocks the recipe from being displayed.
func (w *Workspace) CompleteGeneration(rec *recipe.Recipe, tips *recipe.ChefTips) error {
	if rec == nil {
		return ErrRecipeMissing
	}

	w.Recipe = rec
	w.ChefTips = tips
	w.SelectedID = ""
	w.ErrorMessage = ""
	w.clearLoading()
	w.touch()
	return nil
}

// FailGeneration records a fatal generation failure and moves the display
// to the Error state
func (w *Workspace) FailGeneration(message string) {
	w.ErrorMessage = message
	w.Recipe = nil
	w.ChefTips = nil
	w.SelectedID = ""
	w.clearLoading()
	w.touch()
}

// ClearLoading forces the workspace out of the Loading state. It backs the
// guaranteed loading-exit path: whatever happens to a generation, the
// workspace never stays stuck on Loading.
func (w *Workspace) ClearLoading() {
	if !w.Loading {
		return
	}
	w.clearLoading()
	w.touch()
}

// Select displays a history record: recipe, tips, and selection are
// replaced, the error is cleared, and the ingredients input is repopulated
// with the record's comma-joined ingredient list. Selecting the same record
// twice yields identical state.
func (w *Workspace) Select(record *recipe.SavedRecipe) error {
	if record == nil {
		return ErrRecordMissing
	}

	if w.Loading {
		return ErrGenerationInFlight
	}

	w.Recipe = record.Recipe()
	w.ChefTips = record.Tips()
	w.SelectedID = record.ID()
	w.ErrorMessage = ""
	w.Ingredients = record.Recipe().IngredientsLine()
	w.touch()
	return nil
}

// ApplyLogin attaches an account and its freshly fetched history, closing
// the login modal
func (w *Workspace) ApplyLogin(account *Account, history []*recipe.SavedRecipe) {
	w.AccountID = account.ID().String()
	w.Username = account.Username()
	w.ReplaceHistory(history)
	w.LoginModalOpen = false
	w.touch()
}

// ApplyLogout clears the session, history, display, and ingredients input,
// and closes the sidebar. Stored data is untouched server-side. The epoch
// advances so an in-flight generation cannot resurrect the cleared state.
func (w *Workspace) ApplyLogout() {
	w.AccountID = ""
	w.Username = ""
	w.History = []*recipe.SavedRecipe{}
	w.Recipe = nil
	w.ChefTips = nil
	w.SelectedID = ""
	w.Ingredients = ""
	w.ErrorMessage = ""
	w.SidebarOpen = false
	w.clearLoading()
	w.Epoch++
	w.touch()
}

// StartOver resets the recipe, input, error, and loading fields to their
// initial values without touching the session or history. The epoch
// advances for the same reason as on logout.
func (w *Workspace) StartOver() {
	w.Recipe = nil
	w.ChefTips = nil
	w.SelectedID = ""
	w.Ingredients = ""
	w.Preferences = nil
	w.ErrorMessage = ""
	w.clearLoading()
	w.Epoch++
	w.touch()
}

// ReplaceHistory swaps in the authoritative history list returned by
// storage. History is always replaced wholesale, never patched, so local
// state cannot diverge from the backend.
func (w *Workspace) ReplaceHistory(history []*recipe.SavedRecipe) {
	if history == nil {
		history = []*recipe.SavedRecipe{}
	}
	w.History = history
	w.touch()
}

// ApplyDelete replaces history with the authoritative post-delete list and,
// if the deleted record was the one on display, clears the display back to
// the Input state. A non-displayed record leaves the display untouched.
func (w *Workspace) ApplyDelete(recordID string, history []*recipe.SavedRecipe) {
	w.ReplaceHistory(history)

	if w.SelectedID == recordID {
		w.Recipe = nil
		w.ChefTips = nil
		w.SelectedID = ""
	}
	w.touch()
}

// SetSidebar opens or closes the history sidebar
func (w *Workspace) SetSidebar(open bool) {
	w.SidebarOpen = open
	w.touch()
}

// SetLoginModal opens or closes the login modal
func (w *Workspace) SetLoginModal(open bool) {
	w.LoginModalOpen = open
	w.touch()
}

// FindRecord looks up a history record by id
func (w *Workspace) FindRecord(recordID string) (*recipe.SavedRecipe, bool) {
	for _, record := range w.History {
		if record.ID() == recordID {
			return record, true
		}
	}
	return nil, false
}

func (w *Workspace) clearLoading() {
	w.Loading = false
	w.LoadingMessage = ""
}

func (w *Workspace) touch() {
	w.UpdatedAt = time.Now()
}
