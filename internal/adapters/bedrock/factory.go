package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Bedrock clients
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

func (f *Factory) runtimeClient() (*bedrockruntime.Client, error) {
	bedrockCfg := f.cfg.GetBedrock()
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

// CreateEmbeddingClient creates a new Bedrock embedding client
func (f *Factory) CreateEmbeddingClient() (*EmbeddingClient, error) {
	client, err := f.runtimeClient()
	if err != nil {
		return nil, err
	}
	bedrockCfg := f.cfg.GetBedrock()
	return NewEmbeddingClient(
		client,
		bedrockCfg.EmbeddingModelID,
		bedrockCfg.EmbeddingDimension,
		bedrockCfg.Timeout,
		f.logger,
	), nil
}

// CreateReasoningClient creates a new Bedrock reasoning client
func (f *Factory) CreateReasoningClient(categories *prompt.CategorySet) (*ReasoningClient, error) {
	client, err := f.runtimeClient()
	if err != nil {
		return nil, err
	}
	bedrockCfg := f.cfg.GetBedrock()
	return NewReasoningClient(
		client,
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		bedrockCfg.MaxBodySize,
		bedrockCfg.Timeout,
		categories,
		f.textProcessor,
		f.logger,
	), nil
}
