package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mealsmith/v2/internal/infrastructure/config"
	"github.com/mealsmith/v2/internal/infrastructure/security"
)

func newTokenService(t *testing.T) *security.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Auth.TokenExpiration = time.Hour
	cfg.Auth.CookieName = "mealsmith_session"

	return security.NewTokenService(cfg, zaptest.NewLogger(t))
}

// echoWorkspaceID writes the workspace id the middleware resolved
func echoWorkspaceID(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := WorkspaceIDFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(workspaceID))
	})
}

func TestWorkspaceMintsTokenOnFirstContact(t *testing.T) {
	tokens := newTokenService(t)
	handler := Workspace(tokens, zaptest.NewLogger(t))(echoWorkspaceID(t))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	workspaceID := recorder.Body.String()
	assert.NotEmpty(t, workspaceID)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mealsmith_session", cookies[0].Name)

	claims, err := tokens.ValidateToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, workspaceID, claims.WorkspaceID)
}

func TestWorkspaceReusesValidToken(t *testing.T) {
	tokens := newTokenService(t)
	handler := Workspace(tokens, zaptest.NewLogger(t))(echoWorkspaceID(t))

	workspaceID := security.NewWorkspaceID()
	token, err := tokens.IssueToken(workspaceID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "mealsmith_session", Value: token})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, workspaceID, recorder.Body.String())
	assert.Empty(t, recorder.Result().Cookies(), "a valid token should not be reissued")
}

func TestWorkspaceReplacesRejectedToken(t *testing.T) {
	tokens := newTokenService(t)
	handler := Workspace(tokens, zaptest.NewLogger(t))(echoWorkspaceID(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "mealsmith_session", Value: "garbage"})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	workspaceID := recorder.Body.String()
	assert.NotEmpty(t, workspaceID)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)

	claims, err := tokens.ValidateToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, workspaceID, claims.WorkspaceID)
}

func TestWorkspaceRefreshesExpiredToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Auth.TokenExpiration = -time.Minute
	cfg.Auth.CookieName = "mealsmith_session"
	expiredIssuer := security.NewTokenService(cfg, zaptest.NewLogger(t))

	oldWorkspaceID := security.NewWorkspaceID()
	expired, err := expiredIssuer.IssueToken(oldWorkspaceID)
	require.NoError(t, err)

	tokens := newTokenService(t)
	handler := Workspace(tokens, zaptest.NewLogger(t))(echoWorkspaceID(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "mealsmith_session", Value: expired})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	workspaceID := recorder.Body.String()
	assert.NotEmpty(t, workspaceID)
	assert.NotEqual(t, oldWorkspaceID, workspaceID, "an expired token gets a fresh workspace")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	_, err = tokens.ValidateToken(cookies[0].Value)
	assert.NoError(t, err)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterEnforcesBurst(t *testing.T) {
	limiter := NewRateLimiter(&config.RateLimitConfig{
		Enable:            true,
		GeneratePerMinute: 1,
		Burst:             2,
	})
	handler := limiter.Limit()(okHandler())

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Rate limit exceeded")
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	limiter := NewRateLimiter(&config.RateLimitConfig{
		Enable:            true,
		GeneratePerMinute: 1,
		Burst:             1,
	})
	handler := limiter.Limit()(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/", nil)
	first.RemoteAddr = "10.0.0.1:1111"
	second := httptest.NewRequest(http.MethodPost, "/", nil)
	second.RemoteAddr = "10.0.0.2:2222"

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, first)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, second)
	assert.Equal(t, http.StatusOK, recorder.Code, "separate clients hold separate buckets")
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(&config.RateLimitConfig{Enable: false})
	handler := limiter.Limit()(okHandler())

	for i := 0; i < 5; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := Security()(okHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, recorder.Header().Get("Content-Security-Policy"))
}

func TestCORSPreflight(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Environment = "development"
	cfg.Server.EnableCORS = true

	handler := CORS(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOriginInProduction(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Environment = "production"
	cfg.Server.EnableCORS = true
	cfg.Server.AllowedOrigins = []string{"https://mealsmith.example"}

	handler := CORS(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestJSONOnly(t *testing.T) {
	handler := JSONOnly()(okHandler())

	t.Run("rejects non-json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		req.Header.Set("Content-Type", "text/plain")
		req.ContentLength = 10

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, recorder.Code)
	})

	t.Run("accepts json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = 10

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("allows empty post body", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("sets json response type", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	})
}
