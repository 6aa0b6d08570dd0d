// Package openai provides OpenAI chat completion integration for recipe
// and chef tip generation.
package openai

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

// DefaultBaseURL is the OpenAI API endpoint; tests and proxies override it
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds the OpenAI client configuration
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the OpenAI chat completions API
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("openai-client"),
	}
}

// OpenAI API structures

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Name identifies the provider in logs and fallback decisions
func (c *Client) Name() string {
	return "openai"
}

// GenerateRecipe generates a recipe from the given ingredients
func (c *Client) GenerateRecipe(ctx context.Context, ingredients string, preferences []string) (*recipe.Recipe, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}

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
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}

	content, err := c.chatCompletion(ctx,
		prompts.BuildTipsSystemPrompt(),
		prompts.BuildTipsUserPrompt(title, ingredients),
	)
	if err != nil {
		return nil, err
	}

	return prompts.ParseChefTips(content)
}

// chatCompletion performs one chat completion round trip and returns the
// assistant message content.
func (c *Client) chatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("OpenAI error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("OpenAI error %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("chat completion finished",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", completion.Usage.TotalTokens),
		zap.String("finish_reason", completion.Choices[0].FinishReason),
	)

	return completion.Choices[0].Message.Content, nil
}
