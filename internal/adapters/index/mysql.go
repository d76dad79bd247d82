package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"go.uber.org/zap"
)

// MySQLIndex is a durable implementation of the VectorIndex interface
// backed by MySQL, for deployments where the index must live off-host.
// Layout and semantics mirror SQLiteIndex: a meta row pins the embedding
// model/dimension and searches run against an in-memory snapshot.
type MySQLIndex struct {
	db        *sql.DB
	snapshot  *MemoryIndex
	modelID   string
	dimension int
	logger    *zap.Logger
}

// NewMySQLIndex opens a persistent index in the database named by dsn
func NewMySQLIndex(dsn, modelID string, dimension int, logger *zap.Logger) (*MySQLIndex, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS index_meta (
			id TINYINT PRIMARY KEY,
			model_id VARCHAR(255) NOT NULL,
			dimension INT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create meta table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS index_entries (
			record_id VARCHAR(64) PRIMARY KEY,
			label VARCHAR(32) NOT NULL,
			category VARCHAR(255),
			sender VARCHAR(255),
			subject TEXT,
			body MEDIUMTEXT,
			embedding MEDIUMBLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create entries table: %w", err)
	}

	idx := &MySQLIndex{
		db:        db,
		snapshot:  NewMemoryIndex(dimension, logger),
		modelID:   modelID,
		dimension: dimension,
		logger:    logger,
	}

	if err := idx.checkOrWriteMeta(); err != nil {
		db.Close()
		return nil, err
	}
	if err := idx.loadSnapshot(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Opened MySQL vector index",
		zap.String("model_id", modelID),
		zap.Int("dimension", dimension),
		zap.Int("entries", idx.snapshot.Size()))

	return idx, nil
}

func (x *MySQLIndex) checkOrWriteMeta() error {
	var storedModel string
	var storedDim int
	err := x.db.QueryRow(`SELECT model_id, dimension FROM index_meta WHERE id = 1`).
		Scan(&storedModel, &storedDim)
	switch {
	case err == sql.ErrNoRows:
		_, err = x.db.Exec(`INSERT INTO index_meta (id, model_id, dimension) VALUES (1, ?, ?)`,
			x.modelID, x.dimension)
		if err != nil {
			return fmt.Errorf("failed to write index meta: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read index meta: %w", err)
	}

	if storedModel != x.modelID || storedDim != x.dimension {
		return fmt.Errorf("index built with model %s (dim %d), configured model is %s (dim %d); rebuild required: %w",
			storedModel, storedDim, x.modelID, x.dimension, core.ErrIndexSchemaMismatch)
	}
	return nil
}

func (x *MySQLIndex) loadSnapshot() error {
	rows, err := x.db.Query(`SELECT record_id, label, category, sender, subject, body, embedding FROM index_entries`)
	if err != nil {
		return fmt.Errorf("failed to load index entries: %w", err)
	}
	defer rows.Close()

	var entries []core.IndexEntry
	for rows.Next() {
		var entry core.IndexEntry
		var label string
		var blob []byte
		if err := rows.Scan(&entry.RecordID, &label, &entry.Category, &entry.Sender, &entry.Subject, &entry.Body, &blob); err != nil {
			return fmt.Errorf("failed to scan index entry: %w", err)
		}
		entry.Label = core.Label(label)
		vector, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("record %s: %w", entry.RecordID, err)
		}
		if len(vector) != x.dimension {
			return fmt.Errorf("record %s has stored dimension %d, expected %d: %w",
				entry.RecordID, len(vector), x.dimension, core.ErrIndexSchemaMismatch)
		}
		entry.Embedding = vector
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate index entries: %w", err)
	}

	return x.snapshot.RebuildFrom(context.Background(), entries)
}

// Upsert durably writes the entries and then updates the search snapshot
func (x *MySQLIndex) Upsert(ctx context.Context, entries []core.IndexEntry) (int, int, error) {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, entry := range entries {
		if len(entry.Embedding) != x.dimension {
			tx.Rollback()
			return 0, 0, fmt.Errorf("entry %s has dimension %d, index expects %d: %w",
				entry.RecordID, len(entry.Embedding), x.dimension, core.ErrIndexSchemaMismatch)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO index_entries (record_id, label, category, sender, subject, body, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				label = VALUES(label), category = VALUES(category), sender = VALUES(sender),
				subject = VALUES(subject), body = VALUES(body), embedding = VALUES(embedding)
		`, entry.RecordID, string(entry.Label), entry.Category, entry.Sender, entry.Subject, entry.Body, encodeVector(entry.Embedding))
		if err != nil {
			tx.Rollback()
			return 0, 0, fmt.Errorf("failed to upsert record %s: %w", entry.RecordID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit upsert: %w", err)
	}

	return x.snapshot.Upsert(ctx, entries)
}

// Search serves from the in-memory snapshot
func (x *MySQLIndex) Search(ctx context.Context, query []float32, k int) (core.RetrievalResult, error) {
	return x.snapshot.Search(ctx, query, k)
}

// Size returns the number of indexed entries
func (x *MySQLIndex) Size() int {
	return x.snapshot.Size()
}

// RebuildFrom replaces the full index contents durably, then publishes a
// fresh snapshot
func (x *MySQLIndex) RebuildFrom(ctx context.Context, entries []core.IndexEntry) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM index_entries`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear index: %w", err)
	}
	for _, entry := range entries {
		if len(entry.Embedding) != x.dimension {
			tx.Rollback()
			return fmt.Errorf("entry %s has dimension %d, index expects %d: %w",
				entry.RecordID, len(entry.Embedding), x.dimension, core.ErrIndexSchemaMismatch)
		}
		// Duplicate record IDs within the batch resolve last-wins, like
		// the memory and sqlite backends
		_, err := tx.ExecContext(ctx, `
			INSERT INTO index_entries (record_id, label, category, sender, subject, body, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				label = VALUES(label), category = VALUES(category), sender = VALUES(sender),
				subject = VALUES(subject), body = VALUES(body), embedding = VALUES(embedding)
		`, entry.RecordID, string(entry.Label), entry.Category, entry.Sender, entry.Subject, entry.Body, encodeVector(entry.Embedding))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert record %s: %w", entry.RecordID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, model_id, dimension) VALUES (1, ?, ?)
		ON DUPLICATE KEY UPDATE model_id = VALUES(model_id), dimension = VALUES(dimension)
	`, x.modelID, x.dimension); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update index meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}

	return x.snapshot.RebuildFrom(ctx, entries)
}

// Close closes the database connection
func (x *MySQLIndex) Close() error {
	if err := x.db.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL database: %w", err)
	}
	return nil
}
