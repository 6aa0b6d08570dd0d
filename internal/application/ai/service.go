// Package ai provides the application layer for AI operations
package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/infrastructure/ai/ollama"
	"github.com/mealsmith/v2/internal/infrastructure/ai/openai"
	"github.com/mealsmith/v2/internal/ports/outbound"
	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// Config selects and configures the AI providers
type Config struct {
	Provider       string
	EnableFallback bool
	OpenAI         openai.Config
	Ollama         ollama.Config
}

// Service implements recipe generation with provider selection and an
// optional fallback provider. Exhausted failures come back as a typed
// provider error whose details carry the primary client's message, which
// is the reason shown to the user.
type Service struct {
	provider string
	primary  outbound.RecipeGenerator
	fallback outbound.RecipeGenerator
	logger   *zap.Logger
}

// NewService creates a new AI service with the configured provider
func NewService(cfg Config, logger *zap.Logger) outbound.RecipeGenerator {
	namedLogger := logger.Named("ai-service")

	ollamaClient := ollama.NewClient(cfg.Ollama, namedLogger)
	openaiClient := openai.NewClient(cfg.OpenAI, namedLogger)

	var primary, secondary outbound.RecipeGenerator
	provider := cfg.Provider
	switch provider {
	case "openai":
		primary, secondary = openaiClient, ollamaClient
	case "ollama", "":
		provider = "ollama"
		primary, secondary = ollamaClient, openaiClient
	default:
		namedLogger.Warn("unknown AI provider, defaulting to ollama",
			zap.String("provider", provider))
		provider = "ollama"
		primary, secondary = ollamaClient, openaiClient
	}

	s := &Service{
		provider: provider,
		primary:  primary,
		logger:   namedLogger,
	}
	if cfg.EnableFallback {
		s.fallback = secondary
	}

	namedLogger.Info("AI service initialized",
		zap.String("provider", provider),
		zap.Bool("fallback_enabled", cfg.EnableFallback),
	)
	return s
}

// Name identifies the active provider
func (s *Service) Name() string {
	return s.provider
}

// GenerateRecipe generates a recipe, trying the fallback provider when the
// primary fails and a fallback is configured. When both fail the primary
// provider's error is returned.
func (s *Service) GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error) {
	start := time.Now()
	rec, err := s.primary.GenerateRecipe(ctx, ingredients, preferences)
	if err == nil {
		s.logger.Info("recipe generation succeeded",
			zap.String("provider", s.primary.Name()),
			zap.Duration("duration", time.Since(start)),
		)
		return rec, nil
	}

	if s.fallback == nil {
		return nil, apperrors.NewAIProviderError(s.primary.Name(), err)
	}

	s.logger.Warn("primary provider failed, trying fallback",
		zap.String("primary", s.primary.Name()),
		zap.String("fallback", s.fallback.Name()),
		zap.Error(err),
	)

	rec, fallbackErr := s.fallback.GenerateRecipe(ctx, ingredients, preferences)
	if fallbackErr != nil {
		s.logger.Warn("fallback provider failed",
			zap.String("fallback", s.fallback.Name()),
			zap.Error(fallbackErr),
		)
		// The configured provider's failure is the one reported
		return nil, apperrors.NewAIProviderError(s.primary.Name(), err)
	}

	s.logger.Info("fallback provider succeeded",
		zap.String("provider", s.fallback.Name()),
		zap.Duration("duration", time.Since(start)),
	)
	return rec, nil
}

// GenerateChefTips generates chef tips with the same fallback policy as
// recipe generation.
func (s *Service) GenerateChefTips(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error) {
	tips, err := s.primary.GenerateChefTips(ctx, title, ingredients)
	if err == nil {
		return tips, nil
	}

	if s.fallback == nil {
		return nil, apperrors.NewAIProviderError(s.primary.Name(), err)
	}

	s.logger.Warn("primary provider failed for tips, trying fallback",
		zap.String("primary", s.primary.Name()),
		zap.Error(err),
	)

	tips, fallbackErr := s.fallback.GenerateChefTips(ctx, title, ingredients)
	if fallbackErr != nil {
		return nil, apperrors.NewAIProviderError(s.primary.Name(), err)
	}
	return tips, nil
}
