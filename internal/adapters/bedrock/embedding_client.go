package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"go.uber.org/zap"
)

// EmbeddingClient is an implementation of the EmbeddingClient interface
// using Amazon Titan text embeddings on Bedrock
type EmbeddingClient struct {
	client    *bedrockruntime.Client
	modelID   string
	dimension int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewEmbeddingClient creates a new Bedrock embedding client
func NewEmbeddingClient(
	client *bedrockruntime.Client,
	modelID string,
	dimension int,
	timeout time.Duration,
	logger *zap.Logger,
) *EmbeddingClient {
	return &EmbeddingClient{
		client:    client,
		modelID:   modelID,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger,
	}
}

// Embed returns the embedding for a single text
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyInput
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(map[string]interface{}{
		"inputText":  text,
		"dimensions": c.dimension,
		"normalize":  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Titan embedding model: %v: %w", err, core.ErrUpstreamUnavailable)
	}

	var titanResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Titan embedding response: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	if len(titanResp.Embedding) != c.dimension {
		return nil, fmt.Errorf("embedding has dimension %d, expected %d: %w",
			len(titanResp.Embedding), c.dimension, core.ErrUpstreamUnavailable)
	}

	return titanResp.Embedding, nil
}

// EmbedBatch embeds texts one request at a time; Titan has no batch
// endpoint, so this is a throughput convenience with identical semantics
// to per-item calls
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text %d: %w", i, core.ErrEmptyInput)
		}
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Dimension reports the fixed output dimension of the model
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// ModelID identifies the embedding model
func (c *EmbeddingClient) ModelID() string {
	return c.modelID
}
