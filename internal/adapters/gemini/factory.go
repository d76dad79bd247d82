package gemini

import (
	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Gemini clients
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateEmbeddingClient creates a new Gemini embedding client
func (f *Factory) CreateEmbeddingClient() (*EmbeddingClient, error) {
	geminiCfg := f.cfg.GetGemini()
	return NewEmbeddingClient(
		geminiCfg.APIKey,
		geminiCfg.EmbeddingModel,
		geminiCfg.EmbeddingDimension,
		geminiCfg.Timeout,
		f.logger,
	)
}

// CreateReasoningClient creates a new Gemini reasoning client
func (f *Factory) CreateReasoningClient(categories *prompt.CategorySet) (*ReasoningClient, error) {
	geminiCfg := f.cfg.GetGemini()
	return NewReasoningClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		geminiCfg.Timeout,
		categories,
		f.textProcessor,
		f.logger,
	)
}
