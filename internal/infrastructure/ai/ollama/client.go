// Package ollama provides Ollama integration for local AI inference
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/infrastructure/ai/prompts"
)

// DefaultBaseURL is the local Ollama endpoint
const DefaultBaseURL = "http://localhost:11434"

// Config holds the Ollama client configuration
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Ollama chat API
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2:3b"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("ollama-client"),
	}
}

// Ollama API structures

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Model        string      `json:"model"`
	Message      chatMessage `json:"message"`
	Done         bool        `json:"done"`
	EvalCount    int         `json:"eval_count,omitempty"`
	EvalDuration int64       `json:"eval_duration,omitempty"`
}

// Name identifies the provider in logs and fallback decisions
func (c *Client) Name() string {
	return "ollama"
}

// HealthCheck verifies the Ollama service is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := c.baseURL + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}

	return nil
}

// GenerateRecipe generates a recipe from the given ingredients
func (c *Client) GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error) {
	content, err := c.chatCompletion(ctx,
		prompts.BuildRecipeSystemPrompt(preferences),
		prompts.BuildRecipeUserPrompt(ingredients),
	)
	if err != nil {
		return nil, err
	}

	rec, err := prompts.ParseRecipe(content)
	if err != nil {
		return nil, err
	}

	c.logger.Info("recipe generated",
		zap.String("model", c.model),
		zap.String("title", rec.Title()),
	)
	return rec, nil
}

// GenerateChefTips generates chef tips for an already generated recipe
func (c *Client) GenerateChefTips(ctx context.Context, title string, ingredients []string) (*recipe.ChefTips, error) {
	content, err := c.chatCompletion(ctx,
		prompts.BuildTipsSystemPrompt(),
		prompts.BuildTipsUserPrompt(title, ingredients),
	)
	if err != nil {
		return nil, err
	}

	return prompts.ParseChefTips(content)
}

// chatCompletion performs one chat round trip against the Ollama API.
// Format "json" constrains decoding to valid JSON on models that honor it.
func (c *Client) chatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": 0.7,
			"num_predict": 2000,
			"num_ctx":     4096,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !chatResp.Done {
		return "", fmt.Errorf("incomplete response from ollama")
	}

	c.logger.Debug("chat completion finished",
		zap.String("model", chatResp.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("eval_count", chatResp.EvalCount),
	)

	return chatResp.Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
