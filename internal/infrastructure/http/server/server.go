// Package server provides the JSON API HTTP server
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/infrastructure/config"
	"github.com/mealsmith/v2/internal/infrastructure/http/handlers"
	"github.com/mealsmith/v2/internal/infrastructure/http/middleware"
	"github.com/mealsmith/v2/internal/infrastructure/http/ws"
	"github.com/mealsmith/v2/internal/infrastructure/security"
	"github.com/mealsmith/v2/internal/ports/inbound"
	"github.com/mealsmith/v2/pkg/healthcheck"
)

// Server hosts the workspace API, the health and metrics probes, and the
// websocket event stream on one listener.
type Server struct {
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
	router      *chi.Mux
	kitchen     inbound.KitchenService
	tokens      *security.TokenService
	hub         *ws.Hub
	metrics     *middleware.Metrics
	health      *healthcheck.HealthCheck
	rateLimiter *middleware.RateLimiter
}

// New creates a new API server instance
func New(
	cfg *config.Config,
	logger *zap.Logger,
	kitchen inbound.KitchenService,
	tokens *security.TokenService,
	hub *ws.Hub,
	metrics *middleware.Metrics,
	health *healthcheck.HealthCheck,
) *Server {
	s := &Server{
		config:      cfg,
		logger:      logger,
		kitchen:     kitchen,
		tokens:      tokens,
		hub:         hub,
		metrics:     metrics,
		health:      health,
		rateLimiter: middleware.NewRateLimiter(&cfg.RateLimit),
	}

	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if cfg.Monitoring.EnableTracing {
		handler = otelhttp.NewHandler(handler, "mealsmith-api")
	}

	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures the middleware stack and API routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS(s.config))
	r.Use(s.metrics.Instrument())
	if s.config.Server.EnableCompression {
		r.Use(chimiddleware.Compress(5))
	}

	r.NotFound(handlers.NotFound(s.logger))

	// Probes and metrics live outside the API stack so load balancers and
	// scrapers never touch session machinery
	r.Get("/health", s.health.LivenessHandler())
	r.Get("/ready", s.health.ReadinessHandler())
	r.Get("/health/details", s.health.Handler())
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Workspace(s.tokens, s.logger))

		// The event stream upgrades the connection, so it skips the JSON
		// middleware and the request timeout
		r.Get("/workspace/events", s.hub.Handle)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(s.requestTimeout()))
			r.Use(middleware.JSONOnly())

			kitchenH := handlers.NewKitchenHandlers(s.kitchen, s.logger)
			sessionH := handlers.NewSessionHandlers(s.kitchen, s.logger)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionH.Session)
				r.Post("/login", sessionH.Login)
				r.Post("/logout", sessionH.Logout)
			})

			r.Route("/workspace", func(r chi.Router) {
				r.Get("/", kitchenH.Workspace)
				r.With(s.rateLimiter.Limit()).Post("/generate", kitchenH.Generate)
				r.Post("/select/{recipeID}", kitchenH.Select)
				r.Post("/start-over", kitchenH.StartOver)
				r.Post("/sidebar", kitchenH.Sidebar)
				r.Post("/login-modal", kitchenH.LoginModal)
			})

			r.Route("/history", func(r chi.Router) {
				r.Get("/", kitchenH.History)
				r.Delete("/{recipeID}", kitchenH.DeleteHistory)
			})
		})
	})

	return r
}

// requestTimeout bounds JSON requests. Generation waits on the AI provider,
// so the budget rides the provider timeout with room for the rest of the
// request.
func (s *Server) requestTimeout() time.Duration {
	timeout := s.config.AI.Timeout() + 10*time.Second
	if timeout < 30*time.Second {
		timeout = 30 * time.Second
	}
	return timeout
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	return s.server.ListenAndServe()
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Router returns the configured handler, mainly for tests
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
