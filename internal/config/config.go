// Package config provides configuration loading and structs for the Hondana server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path for the catalog/history database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SearchConfig holds fuzzy-matching and pagination settings.
type SearchConfig struct {
	CharacterNgramSize int     `yaml:"character_ngram_size"`
	WordNgramSize      int     `yaml:"word_ngram_size"`
	FuzzyThreshold     float64 `yaml:"fuzzy_threshold"`
	DefaultPageSize    int     `yaml:"default_page_size"`
	MaxPageSize        int     `yaml:"max_page_size"`
	// HistoryEnabled controls whether searches are recorded; defaults to
	// true when unset.
	HistoryEnabled *bool `yaml:"history_enabled"`
	// SuggestionsEnabled attaches keyword suggestions to responses.
	SuggestionsEnabled bool `yaml:"suggestions_enabled"`
	MaxSuggestions     int  `yaml:"max_suggestions"`
}

// HistoryEnabledOrDefault returns whether search history is recorded;
// defaults to true when unset.
func (s *SearchConfig) HistoryEnabledOrDefault() bool {
	if s.HistoryEnabled != nil {
		return *s.HistoryEnabled
	}
	return true
}

// Load reads and parses the config file at path, applies defaults, and
// expands the database path. Returns an error if the file cannot be read
// or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, filepath.Dir(path))
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects settings the search core cannot run with.
func Validate(cfg *Config) error {
	if cfg.Search.CharacterNgramSize < 1 {
		return fmt.Errorf("character_ngram_size must be positive, got %d", cfg.Search.CharacterNgramSize)
	}
	if cfg.Search.WordNgramSize < 1 {
		return fmt.Errorf("word_ngram_size must be positive, got %d", cfg.Search.WordNgramSize)
	}
	if cfg.Search.FuzzyThreshold < 0 || cfg.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be in [0,1], got %g", cfg.Search.FuzzyThreshold)
	}
	if cfg.Search.MaxPageSize < cfg.Search.DefaultPageSize {
		return fmt.Errorf("max_page_size %d is below default_page_size %d",
			cfg.Search.MaxPageSize, cfg.Search.DefaultPageSize)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
