package middleware

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/infrastructure/security"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

type contextKey string

const workspaceIDKey contextKey = "workspace_id"

// Workspace resolves the caller's workspace from the request token. First
// contact, or an expired or garbled token, mints a fresh workspace id and
// sets the session cookie. Handlers downstream always find a workspace id
// in the context.
func Workspace(tokens *security.TokenService, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var workspaceID string

			if token, ok := tokens.TokenFromRequest(r); ok {
				claims, err := tokens.ValidateToken(token)
				switch {
				case err == nil:
					workspaceID = claims.WorkspaceID
				case apperrors.Is(err, apperrors.CodeSessionExpired):
					logger.Debug("refreshing expired workspace token")
				default:
					logger.Debug("replacing rejected workspace token", zap.Error(err))
				}
			}

			if workspaceID == "" {
				workspaceID = security.NewWorkspaceID()
				token, err := tokens.IssueToken(workspaceID)
				if err != nil {
					logger.Error("failed to issue workspace token", zap.Error(err))
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprint(w, `{"success":false,"error":"Internal server error"}`)
					return
				}
				tokens.WriteCookie(w, token)
			}

			ctx := context.WithValue(r.Context(), workspaceIDKey, workspaceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithWorkspaceID returns a context carrying the given workspace id
func WithWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDKey, workspaceID)
}

// WorkspaceIDFromContext extracts the workspace id set by Workspace
func WorkspaceIDFromContext(ctx context.Context) (string, bool) {
	workspaceID, ok := ctx.Value(workspaceIDKey).(string)
	return workspaceID, ok
}
