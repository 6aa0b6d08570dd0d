package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare object",
			response: `{"title":"Soup"}`,
			want:     `{"title":"Soup"}`,
		},
		{
			name:     "wrapped in prose",
			response: "Here is your recipe:\n{\"title\":\"Soup\"}\nEnjoy!",
			want:     `{"title":"Soup"}`,
		},
		{
			name:     "markdown fence",
			response: "```json\n{\"title\":\"Soup\"}\n```",
			want:     `{"title":"Soup"}`,
		},
		{
			name:     "no braces",
			response: "I cannot help with that.",
			wantErr:  true,
		},
		{
			name:     "reversed braces",
			response: "}{",
			wantErr:  true,
		},
		{
			name:     "empty",
			response: "   ",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecipe(t *testing.T) {
	response := `Sure! Here you go:
{
  "title": "Tomato Soup",
  "description": "A simple soup.",
  "ingredients": ["4 tomatoes", "1 onion"],
  "instructions": ["Chop everything.", "Simmer for 20 minutes."],
  "prepTime": "10 minutes",
  "cookTime": "20 minutes",
  "servings": "2"
}`

	rec, err := ParseRecipe(response)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", rec.Title())
	assert.Equal(t, []string{"4 tomatoes", "1 onion"}, rec.Ingredients())
	assert.Len(t, rec.Instructions(), 2)
	assert.Equal(t, "10 minutes", rec.PrepTime())
}

func TestParseRecipeRejectsMalformedJSON(t *testing.T) {
	_, err := ParseRecipe(`{"title": "Broken`)
	assert.Error(t, err)
}

func TestParseRecipeRejectsIncompleteRecipe(t *testing.T) {
	// Valid JSON, but no ingredients: the domain constructor refuses it
	_, err := ParseRecipe(`{"title":"Empty","ingredients":[],"instructions":["Do nothing."]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete recipe")
}

func TestParseChefTips(t *testing.T) {
	tips, err := ParseChefTips(`{"cookingTip":"Salt the water.","beveragePairing":"Iced tea."}`)
	require.NoError(t, err)
	assert.Equal(t, "Salt the water.", tips.CookingTip)
	assert.Equal(t, "Iced tea.", tips.BeveragePairing)
}

func TestParseChefTipsRejectsEmptyTips(t *testing.T) {
	_, err := ParseChefTips(`{"cookingTip":"","beveragePairing":""}`)
	assert.Error(t, err)
}

func TestBuildRecipeSystemPromptIncludesPreferences(t *testing.T) {
	prompt := BuildRecipeSystemPrompt([]string{"vegan", "gluten-free"})
	assert.Contains(t, prompt, "vegan, gluten-free")

	plain := BuildRecipeSystemPrompt(nil)
	assert.NotContains(t, plain, "Requirements:")
}

func TestBuildTipsUserPrompt(t *testing.T) {
	prompt := BuildTipsUserPrompt("Tomato Soup", []string{"tomatoes", "onion"})
	assert.Contains(t, prompt, `"Tomato Soup"`)
	assert.Contains(t, prompt, "tomatoes, onion")
}
