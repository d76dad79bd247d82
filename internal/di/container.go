package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-compliance-filter/internal/config"
	"github.com/mikey/llm-compliance-filter/internal/core"
	"github.com/mikey/llm-compliance-filter/internal/factory"
	"github.com/mikey/llm-compliance-filter/internal/logging"
	"github.com/mikey/llm-compliance-filter/internal/prompt"
	"github.com/mikey/llm-compliance-filter/internal/trust"
	"github.com/mikey/llm-compliance-filter/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEmbeddingFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReasoningFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIndexFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register the enumerated category set
	if err := container.Provide(func(cfg *config.Config) *prompt.CategorySet {
		return prompt.NewCategorySet(cfg.GetRisk().Categories)
	}); err != nil {
		return nil, err
	}

	// Register embedding client
	if err := container.Provide(func(f *factory.EmbeddingFactory) (core.EmbeddingClient, error) {
		return f.CreateEmbeddingClient()
	}); err != nil {
		return nil, err
	}

	// Register vector index, bound to the embedding model
	if err := container.Provide(func(f *factory.IndexFactory, embedder core.EmbeddingClient) (core.VectorIndex, error) {
		return f.CreateVectorIndex(embedder)
	}); err != nil {
		return nil, err
	}

	// Register reasoning client
	if err := container.Provide(func(f *factory.ReasoningFactory, categories *prompt.CategorySet) (core.ReasoningClient, error) {
		return f.CreateReasoningClient(categories)
	}); err != nil {
		return nil, err
	}

	// Register trusted-domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustChecker {
		riskCfg := cfg.GetRisk()
		if len(riskCfg.TrustedDomains) > 0 {
			logger.Info("Loaded trusted domains", zap.Strings("domains", riskCfg.TrustedDomains))
		}
		return trust.NewChecker(riskCfg.TrustedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register risk scorer
	if err := container.Provide(func(cfg *config.Config, checker core.TrustChecker) *core.RiskScorer {
		return core.NewRiskScorer(cfg.GetRisk().Weights, checker)
	}); err != nil {
		return nil, err
	}

	// Register retriever
	if err := container.Provide(core.NewRetriever); err != nil {
		return nil, err
	}

	// Register compliance engine
	if err := container.Provide(func(
		cfg *config.Config,
		embedder core.EmbeddingClient,
		index core.VectorIndex,
		retriever *core.Retriever,
		reasoner core.ReasoningClient,
		scorer *core.RiskScorer,
		logger *zap.Logger,
	) *core.ComplianceEngine {
		engineCfg := cfg.GetEngine()
		return core.NewComplianceEngine(
			embedder,
			index,
			retriever,
			reasoner,
			scorer,
			logger,
			engineCfg.TopK,
			engineCfg.Workers,
			engineCfg.EmbedBatchSize,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
