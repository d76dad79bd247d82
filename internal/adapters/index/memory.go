package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"go.uber.org/zap"
)

// MemoryIndex is an in-memory implementation of the VectorIndex interface.
// Similarity is cosine on unit-normalized vectors; vectors are normalized
// on insert so search is a brute-force dot-product scan. Reads run
// concurrently under a read lock; writes take the write lock, and
// RebuildFrom builds the new generation off-lock and publishes it
// atomically.
type MemoryIndex struct {
	mu        sync.RWMutex
	slots     map[string]int
	entries   []core.IndexEntry
	dimension int
	logger    *zap.Logger
}

// NewMemoryIndex creates an empty in-memory index for vectors of the
// given dimension
func NewMemoryIndex(dimension int, logger *zap.Logger) *MemoryIndex {
	return &MemoryIndex{
		slots:     make(map[string]int),
		dimension: dimension,
		logger:    logger,
	}
}

// Upsert inserts entries, replacing any entry with the same record ID
func (x *MemoryIndex) Upsert(ctx context.Context, entries []core.IndexEntry) (int, int, error) {
	for _, entry := range entries {
		if len(entry.Embedding) != x.dimension {
			return 0, 0, fmt.Errorf("entry %s has dimension %d, index expects %d: %w",
				entry.RecordID, len(entry.Embedding), x.dimension, core.ErrIndexSchemaMismatch)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	inserted, replaced := 0, 0
	for _, entry := range entries {
		entry.Embedding = normalize(entry.Embedding)
		if slot, ok := x.slots[entry.RecordID]; ok {
			x.entries[slot] = entry
			replaced++
			continue
		}
		x.slots[entry.RecordID] = len(x.entries)
		x.entries = append(x.entries, entry)
		inserted++
	}
	return inserted, replaced, nil
}

// Search returns up to k entries by descending cosine similarity, ties
// broken by record ID so ranking is deterministic
func (x *MemoryIndex) Search(ctx context.Context, query []float32, k int) (core.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search requires k > 0, got %d", k)
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d: %w",
			len(query), x.dimension, core.ErrIndexSchemaMismatch)
	}
	unit := normalize(query)

	x.mu.RLock()
	defer x.mu.RUnlock()

	result := make(core.RetrievalResult, 0, len(x.entries))
	for _, entry := range x.entries {
		result = append(result, core.Neighbor{
			Entry:      entry,
			Similarity: dot(unit, entry.Embedding),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Similarity != result[j].Similarity {
			return result[i].Similarity > result[j].Similarity
		}
		return result[i].Entry.RecordID < result[j].Entry.RecordID
	})
	if len(result) > k {
		result = result[:k]
	}
	return result, nil
}

// Size returns the number of indexed entries
func (x *MemoryIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// RebuildFrom replaces the index contents. The new generation is built
// before the lock is taken, so concurrent searches never observe a
// partially-built index.
func (x *MemoryIndex) RebuildFrom(ctx context.Context, entries []core.IndexEntry) error {
	slots := make(map[string]int, len(entries))
	fresh := make([]core.IndexEntry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Embedding) != x.dimension {
			return fmt.Errorf("entry %s has dimension %d, index expects %d: %w",
				entry.RecordID, len(entry.Embedding), x.dimension, core.ErrIndexSchemaMismatch)
		}
		entry.Embedding = normalize(entry.Embedding)
		if slot, ok := slots[entry.RecordID]; ok {
			fresh[slot] = entry
			continue
		}
		slots[entry.RecordID] = len(fresh)
		fresh = append(fresh, entry)
	}

	x.mu.Lock()
	x.slots = slots
	x.entries = fresh
	x.mu.Unlock()

	if x.logger != nil {
		x.logger.Info("Rebuilt in-memory index", zap.Int("entries", len(fresh)))
	}
	return nil
}

// Close releases the index. Nothing to flush for the in-memory backend.
func (x *MemoryIndex) Close() error {
	return nil
}
