// README: Cloud Storage bucket handle for proof-of-work image uploads.
package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func NewBucket(ctx context.Context, bucket, credentialsFile string) (*storage.BucketHandle, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return client.Bucket(bucket), nil
}
