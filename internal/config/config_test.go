package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultOllamaURL, cfg.OllamaURL)
	assert.Equal(t, DefaultEmbedModel, cfg.EmbedModel)
	assert.Equal(t, DefaultGenerator, cfg.Generator)
	assert.Empty(t, cfg.QdrantURL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demoreel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ollama_url: http://ollama.internal:11434
generator: ollama
qdrant_url: http://qdrant.internal:6333
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://ollama.internal:11434", cfg.OllamaURL)
	assert.Equal(t, "ollama", cfg.Generator)
	assert.Equal(t, "http://qdrant.internal:6333", cfg.QdrantURL)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultEmbedModel, cfg.EmbedModel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEMOREEL_GENERATOR", "ollama")
	t.Setenv("DEMOREEL_QDRANT_URL", "http://localhost:6333")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Generator)
	assert.Equal(t, "http://localhost:6333", cfg.QdrantURL)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ollama_url: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolveDBPath(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, filepath.Join("/repo", ".demoreel", "index.db"), cfg.ResolveDBPath("/repo"))

	cfg.DBPath = "/custom/index.db"
	assert.Equal(t, "/custom/index.db", cfg.ResolveDBPath("/repo"))
}
