package outbound

import (
	"context"

	"github.com/mealsmith/v2/internal/domain/recipe"
)

// RecipeGenerator defines the interface for AI generation operations.
// Both calls are pure request/response with no retries; errors carry a
// descriptive reason because generation failures are shown to the user.
type RecipeGenerator interface {
	// GenerateRecipe turns free-text ingredients plus dietary preference
	// tags into a structured recipe
	GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error)

	// GenerateChefTips turns a recipe title and ingredient list into a
	// cooking tip and a beverage pairing. Independent of GenerateRecipe:
	// its failure never invalidates an already generated recipe.
	GenerateChefTips(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error)

	// Name identifies the provider for logging and diagnostics
	Name() string
}
