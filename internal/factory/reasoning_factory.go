package factory

import (
	"fmt"

	"github.com/mikey/llm-compliance-filter/internal/adapters/bedrock"
	"github.com/mikey/llm-compliance-filter/internal/adapters/gemini"
	"github.com/mikey/llm-compliance-filter/internal/adapters/openai"
	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
)

// ReasoningFactory creates reasoning clients
type ReasoningFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewReasoningFactory creates a new reasoning factory
func NewReasoningFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ReasoningFactory {
	return &ReasoningFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReasoningClient creates a reasoning client based on the configuration
func (f *ReasoningFactory) CreateReasoningClient(categories *prompt.CategorySet) (core.ReasoningClient, error) {
	providers := f.cfg.GetProviders()

	switch providers.Reasoning {
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReasoningClient(categories)
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReasoningClient(categories)
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReasoningClient(categories)
	default:
		return nil, fmt.Errorf("unsupported reasoning provider: %s", providers.Reasoning)
	}
}
