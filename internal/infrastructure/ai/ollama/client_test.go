package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const recipeJSON = `{
  "title": "Miso Ramen",
  "description": "Quick weeknight ramen.",
  "ingredients": ["noodles", "miso paste", "scallions"],
  "instructions": ["Boil the noodles.", "Whisk miso into broth.", "Combine and top."],
  "prepTime": "10 minutes",
  "cookTime": "15 minutes",
  "servings": "2"
}`

func chatBody(content string, done bool) string {
	body, _ := json.Marshal(map[string]interface{}{
		"model":   "llama-test",
		"message": map[string]string{"role": "assistant", "content": content},
		"done":    done,
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL: server.URL,
		Model:   "llama-test",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestGenerateRecipe(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(chatBody(recipeJSON, true)))
	})

	rec, err := client.GenerateRecipe(context.Background(), "noodles, miso", nil)
	require.NoError(t, err)

	assert.Equal(t, "Miso Ramen", rec.Title())
	assert.Equal(t, "llama-test", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, "json", captured.Format)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, "noodles, miso")
}

func TestGenerateRecipeRejectsIncompleteResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody("partial", false)))
	})

	_, err := client.GenerateRecipe(context.Background(), "noodles", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete response")
}

func TestGenerateRecipeSurfacesServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	})

	_, err := client.GenerateRecipe(context.Background(), "noodles", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama error 500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestGenerateChefTips(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody(`{"cookingTip":"Do not boil the miso.","beveragePairing":"Green tea."}`, true)))
	})

	tips, err := client.GenerateChefTips(context.Background(), "Miso Ramen", []string{"noodles", "miso paste"})
	require.NoError(t, err)
	assert.Equal(t, "Do not boil the miso.", tips.CookingTip)
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	})

	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestHealthCheckFailsOnBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.Error(t, client.HealthCheck(context.Background()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
}
