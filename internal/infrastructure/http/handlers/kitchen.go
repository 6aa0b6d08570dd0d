package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/infrastructure/http/middleware"
	"github.com/mealsmith/v2/internal/ports/inbound"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// KitchenHandlers handles workspace and history API requests
type KitchenHandlers struct {
	kitchen  inbound.KitchenService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewKitchenHandlers creates a new kitchen handlers instance
func NewKitchenHandlers(kitchen inbound.KitchenService, logger *zap.Logger) *KitchenHandlers {
	return &KitchenHandlers{
		kitchen:  kitchen,
		validate: validator.New(),
		logger:   logger,
	}
}

// SetStateRequest toggles a UI flag
type SetStateRequest struct {
	Open bool `json:"open"`
}

// Workspace handles GET /api/v1/workspace
func (h *KitchenHandlers) Workspace(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.Workspace(r.Context(), workspaceID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// Generate handles POST /api/v1/workspace/generate. A provider failure is
// not a transport error: the workspace view carries the visible error state,
// and the status code signals the upstream fault.
func (h *KitchenHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	var cmd inbound.GenerateCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	view, err := h.kitchen.Generate(r.Context(), workspaceID, cmd)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	if view.Error != "" {
		appErr := apperrors.NewGenerationFailedError(view.Error, nil)
		resp := apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context()))
		writeJSON(h.logger, w, appErr.StatusCode(), APIResponse{
			Success: false,
			Data:    view,
			Error:   view.Error,
			Details: &resp.Error,
		})
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// Select handles POST /api/v1/workspace/select/{recipeID}
func (h *KitchenHandlers) Select(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.SelectHistoryItem(r.Context(), workspaceID, chi.URLParam(r, "recipeID"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// StartOver handles POST /api/v1/workspace/start-over
func (h *KitchenHandlers) StartOver(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.StartOver(r.Context(), workspaceID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// Sidebar handles POST /api/v1/workspace/sidebar
func (h *KitchenHandlers) Sidebar(w http.ResponseWriter, r *http.Request) {
	h.setUIFlag(w, r, h.kitchen.SetSidebar)
}

// LoginModal handles POST /api/v1/workspace/login-modal
func (h *KitchenHandlers) LoginModal(w http.ResponseWriter, r *http.Request) {
	h.setUIFlag(w, r, h.kitchen.SetLoginModal)
}

// History handles GET /api/v1/history
func (h *KitchenHandlers) History(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.Workspace(r.Context(), workspaceID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view.History)
}

// DeleteHistory handles DELETE /api/v1/history/{recipeID}
func (h *KitchenHandlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.DeleteRecipe(r.Context(), workspaceID, chi.URLParam(r, "recipeID"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// setUIFlag runs one of the boolean workspace toggles
func (h *KitchenHandlers) setUIFlag(
	w http.ResponseWriter,
	r *http.Request,
	toggle func(ctx context.Context, workspaceID string, open bool) (*inbound.WorkspaceView, error),
) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	var req SetStateRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := toggle(r.Context(), workspaceID, req.Open)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// workspaceID pulls the workspace id the middleware resolved
func (h *KitchenHandlers) workspaceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	workspaceID, ok := middleware.WorkspaceIDFromContext(r.Context())
	if !ok {
		h.logger.Error("request reached handler without a workspace id",
			zap.String("path", r.URL.Path),
		)
		writeErrorJSON(h.logger, w, http.StatusInternalServerError, "Internal server error")
		return "", false
	}
	return workspaceID, true
}

// decode reads and validates a JSON request body
func (h *KitchenHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(h.logger, w, r, apperrors.NewBadRequestError("Invalid JSON payload").WithCause(err))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeError(h.logger, w, r, validationErrors(err))
		return false
	}

	return true
}
