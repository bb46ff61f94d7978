// Package nlu wraps the external language-understanding service used as a
// fallback when the lexicon cannot resolve a category. The call is bounded
// by a short timeout and constrained to the closed category label set.
package nlu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dukaanlabs/dukaan/internal/domain"
)

const (
	// DefaultModel is the model used for category labeling
	DefaultModel = openai.GPT4oMini
	// DefaultTimeout bounds a single classification call. There is no retry;
	// a failed attempt degrades immediately to an unresolved category.
	DefaultTimeout = 3 * time.Second
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoLabel is returned when the service gives no usable label
	ErrNoLabel = errors.New("no category label returned")
)

// CompletionAPI defines the interface for the chat-completion call
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client asks the language-understanding service for exactly one label out
// of the closed category enumeration.
type Client struct {
	api     CompletionAPI
	model   string
	timeout time.Duration
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new classification client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new classification client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		api:     openai.NewClient(cfg.APIKey),
		model:   model,
		timeout: timeout,
	}
}

// NewClientWithAPI creates a client with a custom API implementation (used in tests).
func NewClientWithAPI(api CompletionAPI, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{api: api, model: DefaultModel, timeout: timeout}
}

// Classify returns one label from the closed category set for the given
// text, or an error. Labels outside the set are rejected here so callers
// only ever see valid categories or "no answer".
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0,
		MaxTokens:   16,
	})
	if err != nil {
		return "", fmt.Errorf("failed to classify query: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoLabel
	}

	label := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	label = strings.Trim(label, "\"'.")
	if label == "none" || label == "" {
		return "", ErrNoLabel
	}
	if !domain.IsKnownCategory(label) {
		return "", fmt.Errorf("%w: unexpected label %q", ErrNoLabel, label)
	}

	return label, nil
}

func systemPrompt() string {
	return "You map a user's shop-finding request to exactly one business category. " +
		"The request may mix Hindi, romanized Hindi and English. " +
		"Answer with one label from this list and nothing else: " +
		strings.Join(domain.Categories, ", ") +
		". If none fits, answer: none."
}
