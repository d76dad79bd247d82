package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// EmbeddingClient is an implementation of the EmbeddingClient interface
// using the OpenAI embeddings API
type EmbeddingClient struct {
	client    *openai.Client
	modelName string
	dimension int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewEmbeddingClient creates a new OpenAI embedding client
func NewEmbeddingClient(
	apiKey string,
	modelName string,
	dimension int,
	timeout time.Duration,
	logger *zap.Logger,
) *EmbeddingClient {
	client := openai.NewClient(apiKey)

	return &EmbeddingClient{
		client:    client,
		modelName: modelName,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger,
	}
}

// Embed returns the embedding for a single text
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds several texts in one request. The result preserves
// input order and always has the same length as the input.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text %d: %w", i, core.ErrEmptyInput)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.modelName),
		Dimensions: c.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings with OpenAI: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w", len(texts), len(resp.Data), core.ErrUpstreamUnavailable)
	}

	// The API is documented to return one item per input; order by the
	// reported index rather than trusting response order
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(texts))
	for i, item := range resp.Data {
		if len(item.Embedding) != c.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d: %w",
				i, len(item.Embedding), c.dimension, core.ErrUpstreamUnavailable)
		}
		vectors[i] = item.Embedding
	}

	c.logger.Debug("Embedded texts",
		zap.Int("count", len(texts)),
		zap.String("model", c.modelName))

	return vectors, nil
}

// Dimension reports the fixed output dimension of the model
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// ModelID identifies the embedding model
func (c *EmbeddingClient) ModelID() string {
	return c.modelName
}
