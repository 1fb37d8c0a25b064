// Package config loads tool configuration from an optional YAML file with
// environment-variable overrides. Precedence, lowest to highest: built-in
// defaults, config file, DEMOREEL_* environment variables, command flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultEmbedModel      = "nomic-embed-text"
	DefaultGenerator       = "anthropic"
	DefaultOllamaChatModel = "qwen3:8b"
)

// Config holds every tunable the commands need.
type Config struct {
	OllamaURL       string `yaml:"ollama_url"`
	EmbedModel      string `yaml:"embed_model"`
	Generator       string `yaml:"generator"` // "anthropic" or "ollama"
	AnthropicModel  string `yaml:"anthropic_model"`
	OllamaChatModel string `yaml:"ollama_chat_model"`
	QdrantURL       string `yaml:"qdrant_url"` // empty means use the local sqlite store
	DBPath          string `yaml:"db_path"`
}

// Load reads path when non-empty, otherwise tries .demoreel.yaml in the
// working directory. A missing default file is not an error; a missing
// explicit file is.
func Load(path string) (*Config, error) {
	cfg := &Config{
		OllamaURL:       DefaultOllamaURL,
		EmbedModel:      DefaultEmbedModel,
		Generator:       DefaultGenerator,
		OllamaChatModel: DefaultOllamaChatModel,
	}

	explicit := path != ""
	if !explicit {
		path = ".demoreel.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrideEnv(&c.OllamaURL, "DEMOREEL_OLLAMA_URL")
	overrideEnv(&c.EmbedModel, "DEMOREEL_EMBED_MODEL")
	overrideEnv(&c.Generator, "DEMOREEL_GENERATOR")
	overrideEnv(&c.AnthropicModel, "DEMOREEL_ANTHROPIC_MODEL")
	overrideEnv(&c.OllamaChatModel, "DEMOREEL_OLLAMA_CHAT_MODEL")
	overrideEnv(&c.QdrantURL, "DEMOREEL_QDRANT_URL")
	overrideEnv(&c.DBPath, "DEMOREEL_DB_PATH")
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ResolveDBPath returns the configured database path, defaulting to
// <repo>/.demoreel/index.db.
func (c *Config) ResolveDBPath(repoRoot string) string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(repoRoot, ".demoreel", "index.db")
}
