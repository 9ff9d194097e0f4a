package dochub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calyptra/dochub/ai"
)

// Config is the service-level configuration, loadable from a YAML file.
// Zero values fall back to defaults, so a partial file is fine.
type Config struct {
	// PersistDir is the root directory for all per-hub persisted state.
	PersistDir string `yaml:"persist_dir"`

	// ChunkSize and ChunkOverlap control document splitting, in characters.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Workers bounds fetch-extract concurrency within a batch.
	Workers int `yaml:"workers"`

	// BatchSize is the number of files processed per ingestion batch and
	// the number of chunks embedded per request.
	BatchSize int `yaml:"batch_size"`

	// RetrieverK is how many chunks are retrieved per question.
	RetrieverK int `yaml:"retriever_k"`

	// EmbeddingCacheSize bounds the query-embedding LRU cache.
	EmbeddingCacheSize int `yaml:"embedding_cache_size"`

	AI    AIConfig    `yaml:"ai"`
	Graph GraphConfig `yaml:"graph"`
}

// AIConfig configures the embedding and chat services.
type AIConfig struct {
	EmbeddingHost  string  `yaml:"embedding_host"`
	ChatHost       string  `yaml:"chat_host"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	Token          string  `yaml:"token"`
	Temperature    float64 `yaml:"temperature"`
}

// GraphConfig holds the Azure AD application credentials for the Graph
// remote store.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	base := ai.DefaultConfig()
	return &Config{
		PersistDir:         "./persisted_data",
		ChunkSize:          1000,
		ChunkOverlap:       100,
		Workers:            10,
		BatchSize:          20,
		RetrieverK:         6,
		EmbeddingCacheSize: ai.DefaultEmbeddingCacheSize,
		AI: AIConfig{
			EmbeddingHost:  base.EmbeddingHost,
			ChatHost:       base.ChatHost,
			EmbeddingModel: base.EmbeddingModel,
			ChatModel:      base.ChatModel,
			Temperature:    base.Temperature,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.PersistDir == "" {
		return fmt.Errorf("persist_dir is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be non-negative and smaller than chunk_size")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.RetrieverK <= 0 {
		return fmt.Errorf("retriever_k must be positive")
	}
	return nil
}

// aiConfig converts the service AI settings to an ai.Config.
func (c *Config) aiConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithChatHost(c.AI.ChatHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithToken(c.AI.Token),
		ai.WithTemperature(c.AI.Temperature),
	)
}
