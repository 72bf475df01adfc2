// Package storage persists the serialized skill index under a string key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/skillmatch/internal/config"
)

// ErrNotFound is returned by Load when nothing has been saved under the key.
var ErrNotFound = errors.New("storage: blob not found")

// BlobStore loads and saves opaque blobs. Save replaces the previous blob
// for the key as a whole; a failed Save leaves the previous blob readable.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	// Location describes where blobs live, for status output.
	Location() string
	Close() error
}

// New opens the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case config.BackendDisk, "":
		return NewDiskStore(cfg.IndexDir)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.DatabasePath)
	case config.BackendS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func checkKey(key string) error {
	if key == "" {
		return errors.New("storage: empty key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
