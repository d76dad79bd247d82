package factory

import (
	"fmt"

	"github.com/mikey/llm-compliance-filter/internal/adapters/bedrock"
	"github.com/mikey/llm-compliance-filter/internal/adapters/gemini"
	"github.com/mikey/llm-compliance-filter/internal/adapters/openai"
	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
)

// EmbeddingFactory creates embedding clients
type EmbeddingFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEmbeddingFactory creates a new embedding factory
func NewEmbeddingFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *EmbeddingFactory {
	return &EmbeddingFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateEmbeddingClient creates an embedding client based on the configuration
func (f *EmbeddingFactory) CreateEmbeddingClient() (core.EmbeddingClient, error) {
	providers := f.cfg.GetProviders()

	switch providers.Embedding {
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEmbeddingClient()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEmbeddingClient()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEmbeddingClient()
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providers.Embedding)
	}
}
