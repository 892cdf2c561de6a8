package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/REGINA562/new-project/config"
	"google.golang.org/api/option"
)

// GCS keeps upload files in a Google Cloud Storage bucket.
type GCS struct {
	client    *storage.Client
	bucket    string
	projectID string
}

func NewGCS(ctx context.Context, cfg config.GCSConfig) (*GCS, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCS{
		client:    client,
		bucket:    cfg.Bucket,
		projectID: cfg.ProjectID,
	}, nil
}

// Ensure creates the configured bucket if it does not exist yet.
func (g *GCS) Ensure(ctx context.Context) error {
	_, err := g.client.Bucket(g.bucket).Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if strings.TrimSpace(g.projectID) == "" {
		return errors.New("gcs project id is required to create bucket")
	}
	return g.client.Bucket(g.bucket).Create(ctx, g.projectID, nil)
}

// Put uploads a file to the configured bucket.
func (g *GCS) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) error {
	writer := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	if strings.TrimSpace(contentType) != "" {
		writer.ContentType = contentType
	}
	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// Get opens a reader for a file in the configured bucket.
func (g *GCS) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	return g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
}

// Delete removes a file from the configured bucket.
func (g *GCS) Delete(ctx context.Context, name string) error {
	return g.client.Bucket(g.bucket).Object(name).Delete(ctx)
}
