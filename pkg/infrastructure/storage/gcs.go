// Package storage provides blob storage on Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	shared "github.com/stridewell/server/pkg"
)

// GCSAdapter implements blob storage on GCS buckets.
type GCSAdapter struct {
	Client *storage.Client
}

var _ shared.BlobStore = (*GCSAdapter)(nil)

func (a *GCSAdapter) Write(ctx context.Context, bucketName, objectName string, data []byte) error {
	wc := a.Client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("write gs://%s/%s: %w", bucketName, objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

func (a *GCSAdapter) Read(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	rc, err := a.Client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucketName, objectName, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
