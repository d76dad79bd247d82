package core

import (
	"context"
)

// EmbeddingClient defines the interface for turning email text into
// fixed-dimension vectors via an external embedding service
type EmbeddingClient interface {
	// Embed returns the embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several texts in one round trip. The result is
	// order-preserving and has the same length as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the fixed output dimension of the model
	Dimension() int

	// ModelID identifies the embedding model and version
	ModelID() string
}

// VectorIndex defines the interface for the nearest-neighbor store of
// labeled history embeddings. Reads may run concurrently; writes take
// exclusive access.
type VectorIndex interface {
	// Upsert inserts entries, replacing any existing entry with the same
	// record ID. Returns how many entries were new and how many replaced.
	Upsert(ctx context.Context, entries []IndexEntry) (inserted, replaced int, err error)

	// Search returns up to k entries most similar to the query vector,
	// ordered by descending similarity. An empty index yields an empty
	// result, not an error.
	Search(ctx context.Context, query []float32, k int) (RetrievalResult, error)

	// Size returns the number of indexed entries
	Size() int

	// RebuildFrom replaces the entire index contents with the given
	// entries, publishing the new generation atomically
	RebuildFrom(ctx context.Context, entries []IndexEntry) error

	// Close flushes and releases the index
	Close() error
}

// ReasoningClient defines the interface for the generative reasoning
// service that classifies a query email given retrieved examples
type ReasoningClient interface {
	// Classify builds a prompt from the query and examples, calls the
	// model, and parses the response into a Classification. One bounded
	// retry with a stricter re-prompt is performed on malformed output;
	// a second malformed response surfaces as ErrClassificationFailed.
	Classify(ctx context.Context, query *EmailRecord, examples RetrievalResult) (*Classification, error)
}
