package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// EmbeddingClient is an implementation of the EmbeddingClient interface
// using Google Gemini embedding models
type EmbeddingClient struct {
	client    *genai.Client
	model     *genai.EmbeddingModel
	modelName string
	dimension int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewEmbeddingClient creates a new Gemini embedding client
func NewEmbeddingClient(
	apiKey string,
	modelName string,
	dimension int,
	timeout time.Duration,
	logger *zap.Logger,
) (*EmbeddingClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &EmbeddingClient{
		client:    client,
		model:     client.EmbeddingModel(modelName),
		modelName: modelName,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *EmbeddingClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Embed returns the embedding for a single text
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds several texts in one batched request, preserving
// input order
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

	batch := c.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := c.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content with Gemini: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w", len(texts), len(resp.Embeddings), core.ErrUpstreamUnavailable)
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range resp.Embeddings {
		if len(embedding.Values) != c.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d: %w",
				i, len(embedding.Values), c.dimension, core.ErrUpstreamUnavailable)
		}
		vectors[i] = embedding.Values
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
