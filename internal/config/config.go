package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/llm-compliance-filter/")
	v.AddConfigPath("$HOME/.llm-compliance-filter")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("COMPLIANCE_FILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("embedding.provider", "openai")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.embedding_dimension", 1536)
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)
	v.SetDefault("openai.timeout", "30s")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.embedding_model_id", "amazon.titan-embed-text-v2:0")
	v.SetDefault("bedrock.embedding_dimension", 1024)
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)
	v.SetDefault("bedrock.timeout", "30s")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.embedding_model", "text-embedding-004")
	v.SetDefault("gemini.embedding_dimension", 768)
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)
	v.SetDefault("gemini.timeout", "30s")

	// Index defaults
	v.SetDefault("index.type", "sqlite")
	v.SetDefault("index.sqlite_path", "/data/compliance_index.db")
	v.SetDefault("index.mysql_dsn", "user:password@tcp(localhost:3306)/compliance_filter")

	// Retrieval defaults
	v.SetDefault("retrieval.top_k", 3)

	// Engine defaults
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.embed_batch_size", 32)

	// Risk defaults
	v.SetDefault("risk.categories", []string{
		"obstruction",
		"secrecy",
		"market manipulation",
		"sharing confidential information",
		"money laundering",
		"bribery and corruption",
	})
	v.SetDefault("risk.weights", map[string]interface{}{
		"obstruction":                      70,
		"secrecy":                          50,
		"market manipulation":              80,
		"sharing confidential information": 60,
		"money laundering":                 90,
		"bribery and corruption":           85,
		"compliant":                        0,
	})
	v.SetDefault("risk.trusted_domains", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
