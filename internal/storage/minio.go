package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/REGINA562/new-project/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio keeps upload files in a MinIO (or S3-compatible) bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

func NewMinio(cfg config.MinioConfig) (*Minio, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &Minio{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Ensure creates the configured bucket if it does not exist yet.
func (m *Minio) Ensure(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// Put uploads a file to the configured bucket.
func (m *Minio) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Get opens a reader for a file in the configured bucket.
func (m *Minio) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
}

// Delete removes a file from the configured bucket.
func (m *Minio) Delete(ctx context.Context, name string) error {
	return m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
}
