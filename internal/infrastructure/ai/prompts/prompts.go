// Package prompts provides the shared prompt and response plumbing for the
// AI provider clients. Both providers speak the same JSON contract, so the
// prompts and the parsers live here instead of being duplicated per client.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mealsmith/v2/internal/domain/recipe"
)

// recipeSystemPrompt instructs the model to answer with a single JSON
// object matching the recipe contract. Models still wrap JSON in prose
// often enough that ExtractJSON trims around the braces afterwards.
const recipeSystemPrompt = `You are an expert chef and recipe developer. Create detailed, practical recipes that are easy to follow.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "title": "Recipe Name",
  "description": "Brief description of the dish",
  "ingredients": [
    "2 cups flour",
    "1 tsp salt"
  ],
  "instructions": [
    "Step 1: Detailed instruction",
    "Step 2: Next step"
  ],
  "prepTime": "15 minutes",
  "cookTime": "25 minutes",
  "servings": "4"
}

Use the ingredients the user lists as the heart of the dish. Pantry staples may be added.`

// tipsSystemPrompt instructs the model to answer with the chef tips contract
const tipsSystemPrompt = `You are an expert chef and sommelier.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "cookingTip": "One practical tip for preparing this dish",
  "beveragePairing": "One drink that pairs well with this dish"
}`

// BuildRecipeSystemPrompt returns the recipe system prompt, extended with
// any dietary preferences as hard requirements.
func BuildRecipeSystemPrompt(preferences []string) string {
	prompt := recipeSystemPrompt
	if len(preferences) > 0 {
		prompt += fmt.Sprintf("\n\nRequirements:\n- The recipe must be %s.", strings.Join(preferences, ", "))
	}
	prompt += "\n\nRemember: Respond with ONLY valid JSON. No additional text, explanations, or formatting."
	return prompt
}

// BuildRecipeUserPrompt returns the user prompt for one generation
func BuildRecipeUserPrompt(ingredients string) string {
	return fmt.Sprintf("Create a recipe using these ingredients: %s", ingredients)
}

// BuildTipsSystemPrompt returns the chef tips system prompt
func BuildTipsSystemPrompt() string {
	return tipsSystemPrompt
}

// BuildTipsUserPrompt returns the user prompt for tips about a generated recipe
func BuildTipsUserPrompt(title string, ingredients []string) string {
	return fmt.Sprintf("The dish is %q, made with: %s", title, strings.Join(ingredients, ", "))
}

// ExtractJSON finds the JSON object inside a model response. Models
// sometimes include extra text around the payload despite the prompt.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no valid JSON found in response")
	}

	return response[start : end+1], nil
}

// recipePayload mirrors the JSON contract the prompts demand
type recipePayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	Servings     string   `json:"servings"`
}

type tipsPayload struct {
	CookingTip      string `json:"cookingTip"`
	BeveragePairing string `json:"beveragePairing"`
}

// ParseRecipe turns a raw model response into a validated domain recipe
func ParseRecipe(response string) (*recipe.Recipe, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var payload recipePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}

	rec, err := recipe.NewRecipe(
		payload.Title,
		payload.Description,
		payload.Ingredients,
		payload.Instructions,
		payload.PrepTime,
		payload.CookTime,
		payload.Servings,
	)
	if err != nil {
		return nil, fmt.Errorf("incomplete recipe in response: %w", err)
	}

	return rec, nil
}

// ParseChefTips turns a raw model response into validated chef tips
func ParseChefTips(response string) (*recipe.ChefTips, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var payload tipsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}

	tips, err := recipe.NewChefTips(payload.CookingTip, payload.BeveragePairing)
	if err != nil {
		return nil, fmt.Errorf("empty tips in response: %w", err)
	}

	return tips, nil
}
