package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	x, err := NewSQLiteIndex(dbPath, "embed-v1", 3, zap.NewNop())
	require.NoError(t, err)

	inserted, replaced, err := x.Upsert(context.Background(), []core.IndexEntry{
		{RecordID: "a", Embedding: []float32{1, 0, 0}, Label: core.LabelNonCompliant, Category: "obstruction", Body: "shred it"},
		{RecordID: "b", Embedding: []float32{0, 1, 0}, Label: core.LabelCompliant, Category: "compliant", Body: "see you at lunch"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 0, replaced)
	require.NoError(t, x.Close())

	reopened, err := NewSQLiteIndex(dbPath, "embed-v1", 3, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Size())
	result, err := reopened.Search(context.Background(), []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].Entry.RecordID)
	assert.Equal(t, core.LabelNonCompliant, result[0].Entry.Label)
	assert.Equal(t, "shred it", result[0].Entry.Body)
}

func TestSQLiteUpsertReplaces(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	x, err := NewSQLiteIndex(dbPath, "embed-v1", 2, zap.NewNop())
	require.NoError(t, err)
	defer x.Close()

	_, _, err = x.Upsert(context.Background(), []core.IndexEntry{
		{RecordID: "a", Embedding: []float32{1, 0}, Label: core.LabelCompliant},
	})
	require.NoError(t, err)

	inserted, replaced, err := x.Upsert(context.Background(), []core.IndexEntry{
		{RecordID: "a", Embedding: []float32{0, 1}, Label: core.LabelNonCompliant, Category: "secrecy"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, replaced)
	assert.Equal(t, 1, x.Size())
}

func TestSQLiteModelMismatchFailsFast(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	x, err := NewSQLiteIndex(dbPath, "embed-v1", 3, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, x.Close())

	_, err = NewSQLiteIndex(dbPath, "embed-v2", 3, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexSchemaMismatch)

	_, err = NewSQLiteIndex(dbPath, "embed-v1", 1536, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexSchemaMismatch)
}

func TestSQLiteDimensionMismatchOnUpsert(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	x, err := NewSQLiteIndex(dbPath, "embed-v1", 3, zap.NewNop())
	require.NoError(t, err)
	defer x.Close()

	_, _, err = x.Upsert(context.Background(), []core.IndexEntry{
		{RecordID: "a", Embedding: []float32{1, 0}, Label: core.LabelCompliant},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexSchemaMismatch)
	assert.Equal(t, 0, x.Size())
}

func TestSQLiteRebuildFromReplacesContents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	x, err := NewSQLiteIndex(dbPath, "embed-v1", 2, zap.NewNop())
	require.NoError(t, err)

	_, _, err = x.Upsert(context.Background(), []core.IndexEntry{
		{RecordID: "old", Embedding: []float32{1, 0}, Label: core.LabelCompliant},
	})
	require.NoError(t, err)

	err = x.RebuildFrom(context.Background(), []core.IndexEntry{
		{RecordID: "new", Embedding: []float32{0, 1}, Label: core.LabelNonCompliant},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, x.Size())
	require.NoError(t, x.Close())

	// The rebuild is durable.
	reopened, err := NewSQLiteIndex(dbPath, "embed-v1", 2, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	result, err := reopened.Search(context.Background(), []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "new", result[0].Entry.RecordID)
}

func TestSQLiteRebuildFromDuplicateIDsLastWins(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	x, err := NewSQLiteIndex(dbPath, "embed-v1", 2, zap.NewNop())
	require.NoError(t, err)
	defer x.Close()

	err = x.RebuildFrom(context.Background(), []core.IndexEntry{
		{RecordID: "a", Embedding: []float32{1, 0}, Label: core.LabelCompliant},
		{RecordID: "a", Embedding: []float32{0, 1}, Label: core.LabelNonCompliant, Category: "secrecy"},
	})
	require.NoError(t, err, "duplicate IDs within a rebuild resolve last-wins")
	assert.Equal(t, 1, x.Size())

	result, err := x.Search(context.Background(), []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, core.LabelNonCompliant, result[0].Entry.Label)
}
