package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-compliance-filter/internal/adapters/index"
	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"go.uber.org/zap"
)

// IndexFactory creates vector indexes based on configuration
type IndexFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIndexFactory creates a new index factory
func NewIndexFactory(cfg *config.Config, logger *zap.Logger) *IndexFactory {
	return &IndexFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVectorIndex creates a vector index bound to the given embedding
// client. The durable backends pin the embedder's model and dimension so
// a model upgrade without re-indexing fails fast instead of serving
// stale-dimension neighbors.
func (f *IndexFactory) CreateVectorIndex(embedder core.EmbeddingClient) (core.VectorIndex, error) {
	indexCfg := f.cfg.GetIndex()

	switch indexCfg.Type {
	case "memory":
		return index.NewMemoryIndex(embedder.Dimension(), f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(indexCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return index.NewSQLiteIndex(indexCfg.SQLitePath, embedder.ModelID(), embedder.Dimension(), f.logger)
	case "mysql":
		return index.NewMySQLIndex(indexCfg.MySQLDSN, embedder.ModelID(), embedder.Dimension(), f.logger)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", indexCfg.Type)
	}
}
