package config

import (
	"strconv"
	"time"
)

// ProviderConfig selects the reasoning and embedding providers
type ProviderConfig struct {
	Reasoning string
	Embedding string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey             string
	ModelName          string
	EmbeddingModel     string
	EmbeddingDimension int
	MaxTokens          int
	Temperature        float32
	TopP               float32
	MaxBodySize        int
	Timeout            time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region             string
	ModelID            string
	EmbeddingModelID   string
	EmbeddingDimension int
	MaxTokens          int
	Temperature        float32
	TopP               float32
	MaxBodySize        int
	Timeout            time.Duration
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey             string
	ModelName          string
	EmbeddingModel     string
	EmbeddingDimension int
	MaxTokens          int
	Temperature        float32
	TopP               float32
	MaxBodySize        int
	Timeout            time.Duration
}

// IndexConfig represents the vector index configuration
type IndexConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// EngineConfig represents the batch engine configuration
type EngineConfig struct {
	TopK           int
	Workers        int
	EmbedBatchSize int
}

// RiskConfig represents the risk scoring configuration
type RiskConfig struct {
	Categories     []string
	Weights        map[string]float64
	TrustedDomains []string
}

// GetProviders returns the provider selection
func (c *Config) GetProviders() ProviderConfig {
	return ProviderConfig{
		Reasoning: c.GetString("llm.provider"),
		Embedding: c.GetString("embedding.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:             c.GetString("openai.api_key"),
		ModelName:          c.GetString("openai.model_name"),
		EmbeddingModel:     c.GetString("openai.embedding_model"),
		EmbeddingDimension: c.GetInt("openai.embedding_dimension"),
		MaxTokens:          c.GetInt("openai.max_tokens"),
		Temperature:        float32(c.GetFloat64("openai.temperature")),
		TopP:               float32(c.GetFloat64("openai.top_p")),
		MaxBodySize:        c.GetInt("openai.max_body_size"),
		Timeout:            c.v.GetDuration("openai.timeout"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:             c.GetString("bedrock.region"),
		ModelID:            c.GetString("bedrock.model_id"),
		EmbeddingModelID:   c.GetString("bedrock.embedding_model_id"),
		EmbeddingDimension: c.GetInt("bedrock.embedding_dimension"),
		MaxTokens:          c.GetInt("bedrock.max_tokens"),
		Temperature:        float32(c.GetFloat64("bedrock.temperature")),
		TopP:               float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize:        c.GetInt("bedrock.max_body_size"),
		Timeout:            c.v.GetDuration("bedrock.timeout"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:             c.GetString("gemini.api_key"),
		ModelName:          c.GetString("gemini.model_name"),
		EmbeddingModel:     c.GetString("gemini.embedding_model"),
		EmbeddingDimension: c.GetInt("gemini.embedding_dimension"),
		MaxTokens:          c.GetInt("gemini.max_tokens"),
		Temperature:        float32(c.GetFloat64("gemini.temperature")),
		TopP:               float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize:        c.GetInt("gemini.max_body_size"),
		Timeout:            c.v.GetDuration("gemini.timeout"),
	}
}

// GetIndex returns the vector index configuration
func (c *Config) GetIndex() IndexConfig {
	return IndexConfig{
		Type:       c.GetString("index.type"),
		SQLitePath: c.GetString("index.sqlite_path"),
		MySQLDSN:   c.GetString("index.mysql_dsn"),
	}
}

// GetEngine returns the batch engine configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		TopK:           c.GetInt("retrieval.top_k"),
		Workers:        c.GetInt("engine.workers"),
		EmbedBatchSize: c.GetInt("engine.embed_batch_size"),
	}
}

// GetRisk returns the risk scoring configuration
func (c *Config) GetRisk() RiskConfig {
	weights := make(map[string]float64)
	for category, value := range c.v.GetStringMap("risk.weights") {
		weights[category] = toFloat64(value)
	}
	return RiskConfig{
		Categories:     c.GetStringSlice("risk.categories"),
		Weights:        weights,
		TrustedDomains: c.GetStringSlice("risk.trusted_domains"),
	}
}

func toFloat64(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
