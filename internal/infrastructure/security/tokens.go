// Package security provides workspace token issuing and validation
package security

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/infrastructure/config"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// Claims represents workspace token claims
type Claims struct {
	WorkspaceID string `json:"workspace_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the signed tokens that tie a client to
// its workspace. A token carries workspace identity only; login state lives
// inside the workspace itself, so logging out never invalidates the token.
type TokenService struct {
	config *config.Config
	logger *zap.Logger
	secret []byte
}

// NewTokenService creates a new token service
func NewTokenService(cfg *config.Config, logger *zap.Logger) *TokenService {
	return &TokenService{
		config: cfg,
		logger: logger,
		secret: []byte(cfg.Auth.TokenSecret),
	}
}

// NewWorkspaceID generates a fresh workspace identifier
func NewWorkspaceID() string {
	return uuid.New().String()
}

// IssueToken creates a signed token for a workspace
func (t *TokenService) IssueToken(workspaceID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		WorkspaceID: workspaceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mealsmith",
			Subject:   workspaceID,
			Audience:  []string{"mealsmith-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Auth.TokenExpiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates and parses a workspace token. An expired token
// comes back as a SESSION_EXPIRED error so callers can tell it apart from
// a forged or garbled one.
func (t *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewSessionExpiredError().WithCause(err)
		}
		return nil, apperrors.NewUnauthorizedError("Invalid workspace token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("Invalid workspace token")
	}

	if claims.WorkspaceID == "" {
		return nil, apperrors.NewUnauthorizedError("Token carries no workspace")
	}

	return claims, nil
}

// TokenFromRequest extracts a workspace token from the session cookie or,
// failing that, the Authorization header
func (t *TokenService) TokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(t.config.Auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}

// WriteCookie sets the workspace session cookie
func (t *TokenService) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.config.Auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(t.config.Auth.TokenExpiration.Seconds()),
	})
}
