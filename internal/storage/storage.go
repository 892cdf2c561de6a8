// Package storage keeps uploaded files (student photos and note
// attachments) behind a backend-agnostic interface. The default backend
// is the local upload directory; MinIO and GCS backends exist for
// deployments that keep uploads in object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/REGINA562/new-project/config"
)

// ObjectStorage defines common upload-file operations across backends.
// Files are addressed only by their generated storage name.
type ObjectStorage interface {
	// Ensure prepares the backing location (directory or bucket).
	// It runs at startup; no upload is accepted before it succeeds.
	Ensure(ctx context.Context) error
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// New constructs the backend selected by config.
func New(ctx context.Context, cfg config.Config) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Upload.Backend)) {
	case "", "local":
		return NewLocal(cfg.Upload.Dir)
	case "minio":
		return NewMinio(cfg.Minio)
	case "gcs":
		return NewGCS(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
}
