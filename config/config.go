package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Ollama struct {
		BaseURL   string `yaml:"base_url"`
		ChatModel string `yaml:"chat_model"`
	} `yaml:"ollama"`
	Embeddings struct {
		TextModel string `yaml:"text_model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embeddings"`
	Processing struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
		Workers      int `yaml:"workers"`
	} `yaml:"processing"`
	Retrieval struct {
		Temperature   float64 `yaml:"temperature"`
		ContextLength int     `yaml:"context_length"`
	} `yaml:"retrieval"`
	Store struct {
		Type             string `yaml:"type"`
		PersistDir       string `yaml:"persist_dir"`
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"store"`
	Paths struct {
		DocumentsDir string `yaml:"documents_dir"`
	} `yaml:"paths"`
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(configDir(), "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.ChatModel = "mistral"
	cfg.Embeddings.TextModel = "nomic-embed-text"
	cfg.Embeddings.Dimension = 768
	cfg.Processing.ChunkSize = 1000
	cfg.Processing.ChunkOverlap = 200
	cfg.Processing.Workers = 4
	cfg.Retrieval.Temperature = 0.7
	cfg.Retrieval.ContextLength = 3
	cfg.Store.Type = "sqlite"
	cfg.Store.PersistDir = "database"
	cfg.Store.ConnectionString = "postgres://postgres@localhost/postgres?sslmode=disable"

	homeDir := os.Getenv("HOME")
	cfg.Paths.DocumentsDir = filepath.Join(homeDir, "documents")

	return cfg
}

func configDir() string {
	return filepath.Join(os.Getenv("HOME"), ".docchat")
}
