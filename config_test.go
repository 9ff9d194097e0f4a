package dochub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./persisted_data", cfg.PersistDir)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 6, cfg.RetrieverK)
	assert.Equal(t, 0.3, cfg.AI.Temperature)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
persist_dir: /var/lib/dochub
chunk_size: 500
ai:
  embedding_model: embeddinggemma
graph:
  tenant_id: tenant-1
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/dochub", cfg.PersistDir)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, "embeddinggemma", cfg.AI.EmbeddingModel)
	assert.Equal(t, "tenant-1", cfg.Graph.TenantID)

	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 6, cfg.RetrieverK)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.ChatModel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [not a number"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty persist dir", func(c *Config) { c.PersistDir = "" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"overlap equals chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero retriever k", func(c *Config) { c.RetrieverK = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAIConfigConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.EmbeddingHost = "http://localhost:11434"
	cfg.AI.Token = "sk-test"

	aiCfg := cfg.aiConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "sk-test", aiCfg.Token)
	assert.Equal(t, 0.3, aiCfg.Temperature)
}
