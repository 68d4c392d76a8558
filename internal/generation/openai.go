package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"ytlearn/internal/domain"
)

// Client is an OpenAI-compatible chat-completion gateway carrying the fixed
// grounding instruction for every call.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	inflight    *semaphore.Weighted
}

// Config configures the generation gateway.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxInflight int64
}

// NewClient creates a generation gateway from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 8
	}
	cc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(cc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		inflight:    semaphore.NewWeighted(cfg.MaxInflight),
	}, nil
}

// Summarize produces a bullet-point summary grounded in the given context.
func (c *Client) Summarize(ctx context.Context, contextText string) (string, error) {
	return c.generate(ctx, summaryPrompt(contextText))
}

// Answer responds to question using only the given context.
func (c *Client) Answer(ctx context.Context, question, contextText string) (string, error) {
	return c.generate(ctx, answerPrompt(question, contextText))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.inflight.Acquire(ctx, 1); err != nil {
		return "", wrapUpstream(err)
	}
	defer c.inflight.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapUpstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrGenerationUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func wrapUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("deadline exceeded: %w", errors.Join(domain.ErrGenerationUnavailable, domain.ErrUpstreamTimeout))
	}
	return fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
}
