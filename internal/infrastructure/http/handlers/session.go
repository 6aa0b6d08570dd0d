package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/infrastructure/http/middleware"
	"github.com/mealsmith/v2/internal/ports/inbound"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// SessionHandlers handles login, logout, and session inspection
type SessionHandlers struct {
	kitchen  inbound.KitchenService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSessionHandlers creates a new session handlers instance
func NewSessionHandlers(kitchen inbound.KitchenService, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{
		kitchen:  kitchen,
		validate: validator.New(),
		logger:   logger,
	}
}

// SessionView reports who the workspace belongs to right now
type SessionView struct {
	WorkspaceID string            `json:"workspaceId"`
	User        *inbound.UserView `json:"user"`
}

// Login handles POST /api/v1/session/login
func (h *SessionHandlers) Login(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	var cmd inbound.LoginCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(h.logger, w, r, apperrors.NewBadRequestError("Invalid JSON payload").WithCause(err))
		return
	}
	if err := h.validate.Struct(cmd); err != nil {
		writeError(h.logger, w, r, validationErrors(err))
		return
	}

	view, err := h.kitchen.Login(r.Context(), workspaceID, cmd)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.Logout(r.Context(), workspaceID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, view)
}

// Session handles GET /api/v1/session
func (h *SessionHandlers) Session(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := h.workspaceID(w, r)
	if !ok {
		return
	}

	view, err := h.kitchen.Workspace(r.Context(), workspaceID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeData(h.logger, w, http.StatusOK, SessionView{
		WorkspaceID: view.ID,
		User:        view.User,
	})
}

func (h *SessionHandlers) workspaceID(w http.ResponseWriter, r *http.Request) (string, bool) {
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
