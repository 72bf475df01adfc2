// Package config provides configuration loading and structs for the skillmatch server.
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
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Search     SearchConfig     `yaml:"search"`
	Queue      QueueConfig      `yaml:"queue"`
	Inbox      InboxConfig      `yaml:"inbox"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects where the skill index bundle is persisted.
// Backend is one of "disk", "sqlite" or "s3".
type StorageConfig struct {
	Backend      string   `yaml:"backend"`
	IndexDir     string   `yaml:"index_dir"`
	IndexKey     string   `yaml:"index_key"`
	DatabasePath string   `yaml:"database_path"`
	S3           S3Config `yaml:"s3"`
}

// S3Config holds bucket settings for the s3 backend. Endpoint is optional
// (R2, MinIO); empty credentials use the default AWS chain.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// VectorizerConfig holds TF-IDF settings.
type VectorizerConfig struct {
	MaxFeatures int `yaml:"max_features"`
	NgramMin    int `yaml:"ngram_min"`
	NgramMax    int `yaml:"ngram_max"`
	CacheSize   int `yaml:"cache_size"`
}

// AnalysisConfig holds gap analysis settings.
type AnalysisConfig struct {
	MatchThreshold float64 `yaml:"match_threshold"`
}

// SearchConfig holds skill index search limits.
type SearchConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
}

// QueueConfig holds the AMQP consumer settings. An empty URL disables the consumer.
type QueueConfig struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Workers  int    `yaml:"workers"`
	Prefetch int    `yaml:"prefetch"`
}

// InboxConfig holds directories watched for submission files.
type InboxConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to false when unset.
func (w *InboxConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return false
}

// Load reads and parses the config file at path, applies environment
// overrides and defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := finish(&cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration with environment overrides,
// relative paths resolved against the working directory.
func Default() (*Config, error) {
	var cfg Config
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := finish(&cfg, cwd); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config, baseDir string) error {
	ApplyEnv(cfg)
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return err
	}
	cfg.Storage.IndexDir = expandPath(cfg.Storage.IndexDir, baseDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, baseDir)
	for i := range cfg.Inbox.Directories {
		cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], baseDir)
	}
	return nil
}

// Validate rejects settings that defaults cannot repair.
func Validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendDisk, BackendSQLite:
	case BackendS3:
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("invalid config: storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage backend %q (supported: disk, sqlite, s3)", cfg.Storage.Backend)
	}
	if cfg.Analysis.MatchThreshold < 0 || cfg.Analysis.MatchThreshold > 1 {
		return fmt.Errorf("invalid config: analysis.match_threshold must be within [0, 1], got %v", cfg.Analysis.MatchThreshold)
	}
	if cfg.Vectorizer.NgramMax < cfg.Vectorizer.NgramMin {
		return fmt.Errorf("invalid config: vectorizer.ngram_max (%d) < ngram_min (%d)", cfg.Vectorizer.NgramMax, cfg.Vectorizer.NgramMin)
	}
	return nil
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

// expandPath converts a path to absolute. Paths starting with "./" are relative to baseDir;
// other relative paths are relative to the home directory.
func expandPath(path string, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(baseDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
