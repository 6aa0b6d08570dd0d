// Package recipe contains the core domain logic for generated recipes.
// This follows Domain-Driven Design principles with rich domain models.
package recipe

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Recipe represents a single generated recipe.
// Every attribute is a display string produced by the AI provider; there is
// no unit parsing and no numeric math on any field. A Recipe is immutable
// once constructed.
type Recipe struct {
	title        string
	description  string
	ingredients  []string
	instructions []string
	prepTime     string
	cookTime     string
	servings     string
}

// NewRecipe creates a new Recipe with validation
func NewRecipe(title, description string, ingredients, instructions []string, prepTime, cookTime, servings string) (*Recipe, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	if err := validateIngredients(ingredients); err != nil {
		return nil, err
	}

	if err := validateInstructions(instructions); err != nil {
		return nil, err
	}

	return &Recipe{
		title:        strings.TrimSpace(title),
		description:  strings.TrimSpace(description),
		ingredients:  nonEmpty(ingredients),
		instructions: nonEmpty(instructions),
		prepTime:     strings.TrimSpace(prepTime),
		cookTime:     strings.TrimSpace(cookTime),
		servings:     strings.TrimSpace(servings),
	}, nil
}

// Title returns the recipe's title
func (r *Recipe) Title() string {
	return r.title
}

// Description returns the recipe's description
func (r *Recipe) Description() string {
	return r.description
}

// Ingredients returns the ordered ingredient list
func (r *Recipe) Ingredients() []string {
	return copyStrings(r.ingredients)
}

// Instructions returns the ordered instruction list
func (r *Recipe) Instructions() []string {
	return copyStrings(r.instructions)
}

// PrepTime returns the preparation time display string
func (r *Recipe) PrepTime() string {
	return r.prepTime
}

// CookTime returns the cooking time display string
func (r *Recipe) CookTime() string {
	return r.cookTime
}

// Servings returns the servings display string
func (r *Recipe) Servings() string {
	return r.servings
}

// IngredientsLine renders the ingredient list as a single comma-joined
// string, used to repopulate the ingredients input when a history record
// is selected. The reconstruction is lossy: the user's original free-text
// phrasing is not recoverable.
func (r *Recipe) IngredientsLine() string {
	return strings.Join(r.ingredients, ", ")
}

// recipeJSON is the serialized form of a Recipe
type recipeJSON struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prepTime,omitempty"`
	CookTime     string   `json:"cookTime,omitempty"`
	Servings     string   `json:"servings,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (r *Recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(recipeJSON{
		Title:        r.title,
		Description:  r.description,
		Ingredients:  r.ingredients,
		Instructions: r.instructions,
		PrepTime:     r.prepTime,
		CookTime:     r.cookTime,
		Servings:     r.servings,
	})
}

// UnmarshalJSON implements json.Unmarshaler, revalidating the payload so a
// corrupted snapshot cannot produce an invalid Recipe
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var raw recipeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	restored, err := NewRecipe(raw.Title, raw.Description, raw.Ingredients, raw.Instructions, raw.PrepTime, raw.CookTime, raw.Servings)
	if err != nil {
		return err
	}

	*r = *restored
	return nil
}

// SavedRecipe is a history record owned by exactly one account. It is
// created on successful generation while logged in, removed on explicit
// delete, and never mutated in place.
type SavedRecipe struct {
	id        string
	recipe    *Recipe
	tips      *ChefTips
	createdAt time.Time
}

// NewSavedRecipe builds a history record for a freshly generated recipe.
// The record identifier is derived from the creation timestamp.
func NewSavedRecipe(rec *Recipe, tips *ChefTips, createdAt time.Time) (*SavedRecipe, error) {
	if rec == nil {
		return nil, ErrRecipeRequired
	}

	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &SavedRecipe{
		id:        RecordID(createdAt),
		recipe:    rec,
		tips:      tips,
		createdAt: createdAt,
	}, nil
}

// RestoreSavedRecipe reconstructs a history record from persistent storage,
// keeping the identifier it was created with
func RestoreSavedRecipe(id string, rec *Recipe, tips *ChefTips, createdAt time.Time) (*SavedRecipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrRecordIDRequired
	}

	if rec == nil {
		return nil, ErrRecipeRequired
	}

	return &SavedRecipe{
		id:        id,
		recipe:    rec,
		tips:      tips,
		createdAt: createdAt,
	}, nil
}

// RecordID derives a history record identifier from a creation timestamp
func RecordID(createdAt time.Time) string {
	return strconv.FormatInt(createdAt.UnixMilli(), 10)
}

// ID returns the record identifier
func (s *SavedRecipe) ID() string {
	return s.id
}

// Recipe returns the stored recipe
func (s *SavedRecipe) Recipe() *Recipe {
	return s.recipe
}

// Tips returns the stored chef tips, or nil if tips generation failed or
// was skipped when the record was created
func (s *SavedRecipe) Tips() *ChefTips {
	return s.tips
}

// CreatedAt returns the record's creation time
func (s *SavedRecipe) CreatedAt() time.Time {
	return s.createdAt
}

// savedRecipeJSON is the serialized form of a SavedRecipe
type savedRecipeJSON struct {
	ID        string    `json:"id"`
	Recipe    *Recipe   `json:"recipe"`
	Tips      *ChefTips `json:"chefTips,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarshalJSON implements json.Marshaler
func (s *SavedRecipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(savedRecipeJSON{
		ID:        s.id,
		Recipe:    s.recipe,
		Tips:      s.tips,
		CreatedAt: s.createdAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SavedRecipe) UnmarshalJSON(data []byte) error {
	var raw savedRecipeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	restored, err := RestoreSavedRecipe(raw.ID, raw.Recipe, raw.Tips, raw.CreatedAt)
	if err != nil {
		return err
	}

	*s = *restored
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

func validateIngredients(ingredients []string) error {
	if len(nonEmpty(ingredients)) == 0 {
		return ErrNoIngredients
	}
	return nil
}

func validateInstructions(instructions []string) error {
	if len(nonEmpty(instructions)) == 0 {
		return ErrNoInstructions
	}
	return nil
}

// nonEmpty trims every entry and drops blank ones, preserving order
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func copyStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
