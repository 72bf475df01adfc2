package config

import (
	"os"
	"strconv"
)

// Storage backends.
const (
	BackendDisk   = "disk"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendDisk
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "./vector_store"
	}
	if cfg.Storage.IndexKey == "" {
		cfg.Storage.IndexKey = "skills_index"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./vector_store/skills.db"
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "auto"
	}
	if cfg.Vectorizer.MaxFeatures == 0 {
		cfg.Vectorizer.MaxFeatures = 300
	}
	if cfg.Vectorizer.NgramMin == 0 {
		cfg.Vectorizer.NgramMin = 1
	}
	if cfg.Vectorizer.NgramMax == 0 {
		cfg.Vectorizer.NgramMax = 2
	}
	if cfg.Vectorizer.CacheSize == 0 {
		cfg.Vectorizer.CacheSize = 1000
	}
	if cfg.Analysis.MatchThreshold == 0 {
		cfg.Analysis.MatchThreshold = 0.5
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 5
	}
	if cfg.Search.MaxK == 0 {
		cfg.Search.MaxK = 100
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "skill_submissions"
	}
	if cfg.Queue.Workers == 0 {
		cfg.Queue.Workers = 1
	}
	if cfg.Queue.Prefetch == 0 {
		cfg.Queue.Prefetch = 10
	}
	if cfg.Inbox.Extensions == nil {
		cfg.Inbox.Extensions = []string{".json"}
	}
}

// ApplyEnv overrides cfg from environment variables that are set and non-empty.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Storage.IndexDir, "VECTOR_DB_PATH")
	setString(&cfg.Storage.Backend, "SKILLMATCH_STORAGE_BACKEND")
	setString(&cfg.Queue.URL, "RABBITMQ_URL")
	setString(&cfg.Storage.S3.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.S3.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.Server.Host, "APP_HOST")
	if v := os.Getenv("APP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
