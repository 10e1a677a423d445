// Package storage writes product images and AR model files to object storage
// and returns the public URL of each object.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/example/angagu/internal/config"
)

// Uploader stores an object under key and returns its public URL. Delete
// removes an object written by Upload; a missing object is not an error.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New returns the uploader selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalUploader(cfg.LocalDir, cfg.PublicURL)
	case "s3":
		return NewS3Uploader(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q (supported: local, s3)", cfg.Driver)
	}
}

// ObjectKey builds a collision-free key such as "products/12/<uuid>.png".
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}
