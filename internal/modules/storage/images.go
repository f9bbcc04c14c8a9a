// README: Proof-of-work image storage on Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ImageStore persists uploaded images and returns opaque object keys.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
	Delete(ctx context.Context, key string) error
}

// GCSImageStore stores images in a single bucket under order-history/.
type GCSImageStore struct {
	bucket *gcs.BucketHandle
}

func NewGCSImageStore(bucket *gcs.BucketHandle) *GCSImageStore {
	return &GCSImageStore{bucket: bucket}
}

func (s *GCSImageStore) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	key := "order-history/" + uuid.NewString() + path.Ext(filename)
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing object %s: %w", key, err)
	}
	return key, nil
}

func (s *GCSImageStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}
