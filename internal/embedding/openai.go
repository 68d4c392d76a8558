package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"ytlearn/internal/domain"
)

// Client is an OpenAI-compatible embedding gateway. It is stateless apart
// from the lazily-learned vector dimension; one instance is shared by all
// sessions.
type Client struct {
	api       *openai.Client
	model     string
	timeout   time.Duration
	inflight  *semaphore.Weighted
	dimension atomic.Int32
}

// Config configures the embedding gateway.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	MaxInflight int64
}

// NewClient creates an embedding gateway from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 8
	}
	cc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:      openai.NewClientWithConfig(cc),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		inflight: semaphore.NewWeighted(cfg.MaxInflight),
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Dimension returns the vector dimension, or 0 before the first call.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// EmbedBatch embeds all texts in one upstream call. The i-th output vector
// corresponds to the i-th input text. The call is bounded by the configured
// timeout and by the gateway-wide in-flight limit; failures are not retried
// here, that policy belongs to the caller.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := c.inflight.Acquire(ctx, 1); err != nil {
		return nil, wrapUpstream(err, domain.ErrEmbeddingUnavailable)
	}
	defer c.inflight.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		return nil, wrapUpstream(err, domain.ErrEmbeddingUnavailable)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", domain.ErrEmbeddingUnavailable, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			vec[j] = float32(x)
		}
		out[d.Index] = vec
	}
	c.dimension.CompareAndSwap(0, int32(len(out[0])))
	return out, nil
}

func wrapUpstream(err error, sentinel error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("deadline exceeded: %w", errors.Join(sentinel, domain.ErrUpstreamTimeout))
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
