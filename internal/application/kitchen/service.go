package kitchen

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/ports/inbound"
	"github.com/mealsmith/v2/internal/ports/outbound"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// Stage names double as log fields and as the key for deciding which
// failures surface to the user: only the recipe stage paints the error
// state, everything downstream of it is recoverable.
const (
	stageGenerateRecipe = "generate-recipe"
	stageGenerateTips   = "generate-chef-tips"
	stageApplyResult    = "apply-result"
	stagePersistHistory = "persist-history"
)

// generationErrorPrefix is prepended to the provider's reason when a
// generation fails, so the workspace always shows what went wrong.
const generationErrorPrefix = "Failed to generate recipe: "

// Progress messages shown while the workspace is loading
const (
	progressGeneratingRecipe = "Generating your recipe..."
	progressPairingTips      = "Pairing chef tips..."
)

// errNoChange signals that a mutation callback decided to leave the
// workspace untouched; mutate skips the store write and notification.
var errNoChange = errors.New("workspace unchanged")

// Service implements the kitchen use cases
type Service struct {
	store     outbound.WorkspaceStore
	accounts  outbound.AccountRepository
	history   outbound.HistoryRepository
	generator outbound.RecipeGenerator
	notifier  outbound.WorkspaceNotifier
	locks     *workspaceLocks
	logger    *zap.Logger
}

// NewService creates a new kitchen service
func NewService(
	store outbound.WorkspaceStore,
	accounts outbound.AccountRepository,
	history outbound.HistoryRepository,
	generator outbound.RecipeGenerator,
	notifier outbound.WorkspaceNotifier,
	logger *zap.Logger,
) inbound.KitchenService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		store:     store,
		accounts:  accounts,
		history:   history,
		generator: generator,
		notifier:  notifier,
		locks:     newWorkspaceLocks(),
		logger:    logger.Named("kitchen"),
	}
}

// noopNotifier keeps the service usable without an event stream attached
type noopNotifier struct{}

func (noopNotifier) NotifyWorkspaceChanged(string, *session.Workspace) {}

// Workspace returns the current state, creating a fresh workspace on
// first contact.
func (s *Service) Workspace(ctx context.Context, workspaceID string) (*inbound.WorkspaceView, error) {
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	ws, created, err := s.loadOrCreate(ctx, workspaceID)
	if err != nil {
		return nil, s.toAppError(err)
	}
	if created {
		if err := s.store.Save(ctx, ws); err != nil {
			return nil, apperrors.NewDatabaseError("persist workspace state", err)
		}
	}
	return inbound.NewWorkspaceView(ws), nil
}

// Generate runs the full generation flow: validate and enter the loading
// state, call the recipe provider, best-effort the chef tips, apply the
// result, and best-effort a history save for logged-in users. The
// workspace leaves the loading state on every path out of this method.
//
// A completed generation never returns a Go error, even when the provider
// failed; the outcome lives in the returned view's state. Errors are
// reserved for rejected input, a generation already in flight, and
// infrastructure faults.
func (s *Service) Generate(ctx context.Context, workspaceID string, cmd inbound.GenerateCommand) (*inbound.WorkspaceView, error) {
	begun, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		return ws.BeginGeneration(cmd.Ingredients, cmd.Preferences, progressGeneratingRecipe)
	})
	if err != nil {
		return nil, s.toAppError(err)
	}

	// Epoch fences this run: logout or start-over while the provider is
	// working bumps it, and every later write re-checks before applying.
	epoch := begun.Epoch
	ingredients := begun.Ingredients
	preferences := begun.Preferences

	// The loading state must not outlive the request, whatever happens
	// below. WithoutCancel lets the cleanup write proceed even when the
	// caller's context is already dead.
	defer s.ensureLoadingExit(context.WithoutCancel(ctx), workspaceID)

	var (
		generated *recipe.Recipe
		tips      *recipe.ChefTips
		applied   bool
		accountID string
	)

	pipeline := NewPipeline(s.logger,
		Stage{
			Name: stageGenerateRecipe,
			Mode: Fatal,
			Run: func(ctx context.Context) error {
				rec, err := s.generator.GenerateRecipe(ctx, ingredients, preferences)
				if err != nil {
					return err
				}
				generated = rec
				s.setProgress(ctx, workspaceID, epoch, progressPairingTips)
				return nil
			},
		},
		Stage{
			Name: stageGenerateTips,
			Mode: BestEffort,
			Run: func(ctx context.Context) error {
				result, err := s.generator.GenerateChefTips(ctx, generated.Title(), generated.Ingredients())
				if err != nil {
					return err
				}
				tips = result
				return nil
			},
		},
		Stage{
			Name: stageApplyResult,
			Mode: Fatal,
			Run: func(ctx context.Context) error {
				_, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
					if ws.Epoch != epoch {
						s.logger.Info("discarding stale generation result",
							zap.String("workspace_id", workspaceID),
							zap.Int64("run_epoch", epoch),
							zap.Int64("workspace_epoch", ws.Epoch),
						)
						return ErrHalt
					}
					if err := ws.CompleteGeneration(generated, tips); err != nil {
						return err
					}
					applied = true
					accountID = ws.AccountID
					return nil
				})
				return err
			},
		},
		Stage{
			Name: stagePersistHistory,
			Mode: BestEffort,
			Run: func(ctx context.Context) error {
				if !applied || accountID == "" {
					return nil
				}
				return s.persistRecord(ctx, workspaceID, epoch, accountID, generated, tips)
			},
		},
	)

	if err := pipeline.Execute(ctx); err != nil {
		return s.failGeneration(ctx, workspaceID, epoch, err)
	}

	return s.Workspace(ctx, workspaceID)
}

// failGeneration surfaces a fatal pipeline error on the workspace. Only a
// recipe stage failure becomes the visible error state; anything else is
// an infrastructure fault and propagates as a Go error. A typed provider
// error contributes its details so the user sees the provider's own
// message without the error-code framing.
func (s *Service) failGeneration(ctx context.Context, workspaceID string, epoch int64, err error) (*inbound.WorkspaceView, error) {
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != stageGenerateRecipe {
		return nil, s.toAppError(err)
	}

	reason := stageErr.Err.Error()
	var provErr *apperrors.AppError
	if errors.As(stageErr.Err, &provErr) && provErr.Details != "" {
		reason = provErr.Details
	}
	s.logger.Warn("recipe generation failed",
		zap.String("workspace_id", workspaceID),
		zap.String("reason", reason),
	)

	ws, mErr := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		if ws.Epoch != epoch {
			return errNoChange
		}
		ws.FailGeneration(generationErrorPrefix + reason)
		return nil
	})
	if mErr != nil {
		return nil, s.toAppError(mErr)
	}
	return inbound.NewWorkspaceView(ws), nil
}

// persistRecord saves the generated recipe to the owner's history and
// folds the authoritative list back into the workspace. Runs best-effort:
// a failure here is logged by the pipeline and the recipe stays on screen.
func (s *Service) persistRecord(ctx context.Context, workspaceID string, epoch int64, accountID string, generated *recipe.Recipe, tips *recipe.ChefTips) error {
	owner, err := uuid.Parse(accountID)
	if err != nil {
		return err
	}

	record, err := recipe.NewSavedRecipe(generated, tips, time.Now())
	if err != nil {
		return err
	}

	list, err := s.history.Save(ctx, owner, record)
	if err != nil {
		return err
	}

	// Skip the fold if the user logged out or switched accounts while the
	// save was in flight; the row is theirs either way.
	_, err = s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		if ws.Epoch != epoch || ws.AccountID != accountID {
			return errNoChange
		}
		ws.ReplaceHistory(list)
		return nil
	})
	return err
}

// setProgress updates the loading message without disturbing anything
// else. Purely cosmetic, so failures are swallowed.
func (s *Service) setProgress(ctx context.Context, workspaceID string, epoch int64, message string) {
	_ = BestEffortFunc(func(ctx context.Context) error {
		_, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
			if ws.Epoch != epoch || !ws.Loading {
				return errNoChange
			}
			ws.SetProgress(message)
			return nil
		})
		return err
	}).Run(ctx, s.logger, "update-progress")
}

// ensureLoadingExit clears a lingering loading flag. Deferred by Generate
// so the workspace cannot get stuck loading when a stage panics or an
// error path skips the normal transitions.
func (s *Service) ensureLoadingExit(ctx context.Context, workspaceID string) {
	_, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		if !ws.Loading {
			return errNoChange
		}
		ws.ClearLoading()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to clear loading state",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
	}
}

// SelectHistoryItem puts a saved recipe back on the display and restores
// its ingredients to the input field.
func (s *Service) SelectHistoryItem(ctx context.Context, workspaceID, recordID string) (*inbound.WorkspaceView, error) {
	ws, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		record, ok := ws.FindRecord(recordID)
		if !ok {
			return recipe.ErrRecordNotFound
		}
		return ws.Select(record)
	})
	if err != nil {
		if errors.Is(err, recipe.ErrRecordNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(recordID)
		}
		return nil, s.toAppError(err)
	}
	return inbound.NewWorkspaceView(ws), nil
}

// DeleteRecipe removes a saved recipe and replaces the workspace history
// with the authoritative list the repository returns. The display clears
// only when the deleted recipe was the one on screen.
func (s *Service) DeleteRecipe(ctx context.Context, workspaceID, recordID string) (*inbound.WorkspaceView, error) {
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	ws, _, err := s.loadOrCreate(ctx, workspaceID)
	if err != nil {
		return nil, s.toAppError(err)
	}

	if !ws.IsLoggedIn() {
		return nil, apperrors.NewLoginRequiredError("delete a recipe")
	}

	owner, err := uuid.Parse(ws.AccountID)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid account reference")
	}

	list, err := s.history.Delete(ctx, owner, recordID)
	if err != nil {
		if errors.Is(err, recipe.ErrRecordNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(recordID)
		}
		s.logger.Error("recipe deletion failed",
			zap.String("workspace_id", workspaceID),
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return nil, apperrors.NewDatabaseError("delete recipe", err)
	}

	ws.ApplyDelete(recordID, list)

	if err := s.store.Save(ctx, ws); err != nil {
		return nil, apperrors.NewDatabaseError("persist workspace state", err)
	}
	s.notifier.NotifyWorkspaceChanged(ws.ID, ws)

	s.logger.Info("recipe deleted",
		zap.String("workspace_id", workspaceID),
		zap.String("record_id", recordID),
	)
	return inbound.NewWorkspaceView(ws), nil
}

// Login attaches an account to the workspace and loads its history. The
// account lookup and history fetch both happen before the workspace is
// touched, so any failure leaves no session behind.
func (s *Service) Login(ctx context.Context, workspaceID string, cmd inbound.LoginCommand) (*inbound.WorkspaceView, error) {
	username, err := session.NormalizeUsername(cmd.Username)
	if err != nil {
		return nil, s.toAppError(err)
	}

	account, err := s.accounts.FindOrCreate(ctx, username)
	if err != nil {
		s.logger.Error("login failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, errLoginFailed(err)
	}

	history, err := s.history.List(ctx, account.ID())
	if err != nil {
		s.logger.Error("history fetch failed during login",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, errLoginFailed(err)
	}

	ws, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		ws.ApplyLogin(account, history)
		return nil
	})
	if err != nil {
		return nil, errLoginFailed(err)
	}

	s.logger.Info("user logged in",
		zap.String("username", username),
		zap.String("workspace_id", workspaceID),
		zap.Int("history_size", len(history)),
	)
	return inbound.NewWorkspaceView(ws), nil
}

// errLoginFailed hides the underlying cause behind a generic message; the
// user only needs to know the attempt did not take.
func errLoginFailed(cause error) error {
	return apperrors.NewAppError(apperrors.CodeInternal, "Login failed", "").WithCause(cause)
}

// Logout detaches the session and clears everything tied to it. The local
// state always clears; a failed store write is logged and ignored so the
// user is never trapped in a session.
func (s *Service) Logout(ctx context.Context, workspaceID string) (*inbound.WorkspaceView, error) {
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	ws, _, err := s.loadOrCreate(ctx, workspaceID)
	if err != nil {
		return nil, s.toAppError(err)
	}

	username := ws.Username
	ws.ApplyLogout()

	_ = BestEffortFunc(func(ctx context.Context) error {
		return s.store.Save(ctx, ws)
	}).Run(ctx, s.logger, "persist-logout")

	s.notifier.NotifyWorkspaceChanged(ws.ID, ws)
	if username != "" {
		s.logger.Info("user logged out",
			zap.String("username", username),
			zap.String("workspace_id", workspaceID),
		)
	}
	return inbound.NewWorkspaceView(ws), nil
}

// StartOver resets the creative state for a fresh prompt while keeping
// the session and history intact.
func (s *Service) StartOver(ctx context.Context, workspaceID string) (*inbound.WorkspaceView, error) {
	ws, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		ws.StartOver()
		return nil
	})
	if err != nil {
		return nil, s.toAppError(err)
	}
	return inbound.NewWorkspaceView(ws), nil
}

// SetSidebar opens or closes the history sidebar
func (s *Service) SetSidebar(ctx context.Context, workspaceID string, open bool) (*inbound.WorkspaceView, error) {
	ws, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		ws.SetSidebar(open)
		return nil
	})
	if err != nil {
		return nil, s.toAppError(err)
	}
	return inbound.NewWorkspaceView(ws), nil
}

// SetLoginModal opens or closes the login modal
func (s *Service) SetLoginModal(ctx context.Context, workspaceID string, open bool) (*inbound.WorkspaceView, error) {
	ws, err := s.mutate(ctx, workspaceID, func(ws *session.Workspace) error {
		ws.SetLoginModal(open)
		return nil
	})
	if err != nil {
		return nil, s.toAppError(err)
	}
	return inbound.NewWorkspaceView(ws), nil
}

// loadOrCreate fetches the workspace or builds a fresh one when the store
// has never seen the id. Callers must hold the workspace lock.
func (s *Service) loadOrCreate(ctx context.Context, workspaceID string) (*session.Workspace, bool, error) {
	ws, err := s.store.Load(ctx, workspaceID)
	if err == nil {
		return ws, false, nil
	}
	if errors.Is(err, session.ErrWorkspaceNotFound) {
		return session.NewWorkspace(workspaceID), true, nil
	}
	return nil, false, apperrors.NewDatabaseError("load workspace state", err)
}

// mutate runs fn against the workspace under its lock and persists the
// result. fn returning errNoChange skips the write and the notification;
// any other error aborts without writing.
func (s *Service) mutate(ctx context.Context, workspaceID string, fn func(*session.Workspace) error) (*session.Workspace, error) {
	unlock := s.locks.lock(workspaceID)
	defer unlock()

	ws, _, err := s.loadOrCreate(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if err := fn(ws); err != nil {
		if errors.Is(err, errNoChange) {
			return ws, nil
		}
		return nil, err
	}

	if err := s.store.Save(ctx, ws); err != nil {
		return nil, apperrors.NewDatabaseError("persist workspace state", err)
	}

	s.notifier.NotifyWorkspaceChanged(ws.ID, ws)
	return ws, nil
}

// toAppError translates domain errors into API errors, passing through
// anything already typed.
func (s *Service) toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, session.ErrEmptyIngredients):
		return apperrors.NewValidationError("Please enter some ingredients first")
	case errors.Is(err, session.ErrGenerationInFlight):
		return apperrors.NewGenerationInProgressError()
	case errors.Is(err, session.ErrNotLoggedIn):
		return apperrors.NewLoginRequiredError("do that")
	case errors.Is(err, session.ErrUsernameRequired):
		return apperrors.NewValidationError("Please enter a username")
	case errors.Is(err, session.ErrUsernameTooLong):
		return apperrors.NewValidationError("Username must be 64 characters or fewer")
	case errors.Is(err, session.ErrAccountNotFound):
		return apperrors.NewAccountNotFoundError(err.Error())
	default:
		return apperrors.Wrap(err, "kitchen operation failed")
	}
}
