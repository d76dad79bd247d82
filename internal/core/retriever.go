package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Retriever fetches the most similar labeled history records for a query
// email by embedding its text and searching the vector index
type Retriever struct {
	embedder EmbeddingClient
	index    VectorIndex
	logger   *zap.Logger
}

// NewRetriever creates a new retriever
func NewRetriever(embedder EmbeddingClient, index VectorIndex, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Retrieve returns the top-k most similar history records for the email.
// An embedding failure is propagated rather than degraded to an empty
// result: classifying without retrieved precedent must be an explicit,
// surfaced condition.
func (r *Retriever) Retrieve(ctx context.Context, email *EmailRecord, k int) (RetrievalResult, error) {
	vector, err := r.embedder.Embed(ctx, email.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to embed query email %s: %w", email.ID, err)
	}

	result, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index for email %s: %w", email.ID, err)
	}

	r.logger.Debug("Retrieved similar emails",
		zap.String("email_id", email.ID),
		zap.Int("requested", k),
		zap.Int("returned", len(result)))

	return result, nil
}
