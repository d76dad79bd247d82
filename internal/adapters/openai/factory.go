package openai

import (
	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
)

// Factory creates OpenAI clients
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new OpenAI factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateEmbeddingClient creates a new OpenAI embedding client
func (f *Factory) CreateEmbeddingClient() (*EmbeddingClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	return NewEmbeddingClient(
		openaiCfg.APIKey,
		openaiCfg.EmbeddingModel,
		openaiCfg.EmbeddingDimension,
		openaiCfg.Timeout,
		f.logger,
	), nil
}

// CreateReasoningClient creates a new OpenAI reasoning client
func (f *Factory) CreateReasoningClient(categories *prompt.CategorySet) (*ReasoningClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	return NewReasoningClient(
		openaiCfg.APIKey,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		openaiCfg.Timeout,
		categories,
		f.textProcessor,
		f.logger,
	), nil
}
