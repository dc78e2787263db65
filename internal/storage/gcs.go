package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"athena-query/internal/domain"
)

// Compile-time check: GCSStore implements domain.ObjectStore.
var _ domain.ObjectStore = (*GCSStore)(nil)

type openFunc func(ctx context.Context, bucket, key string) (io.ReadCloser, error)

// GCSStore reads objects from Google Cloud Storage.
type GCSStore struct {
	open openFunc
}

// NewGCSStore creates a GCSStore authenticated with a service account key file.
func NewGCSStore(ctx context.Context, keyFilePath string) (*GCSStore, error) {
	if keyFilePath == "" {
		return nil, fmt.Errorf("gcs key file path is required")
	}
	client, err := gcs.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, keyFilePath))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return newGCSStoreFromClient(client), nil
}

func newGCSStoreFromClient(client *gcs.Client) *GCSStore {
	return &GCSStore{
		open: func(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
			r, err := client.Bucket(bucket).Object(key).NewReader(ctx)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	}
}

// GetObject downloads the whole object.
func (s *GCSStore) GetObject(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	r, err := s.open(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, &domain.TransportError{Op: "gcs.NewReader", Err: err}
	}
	defer r.Close() //nolint:errcheck

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.TransportError{Op: "gcs.NewReader", Err: fmt.Errorf("read %s: %w", loc, err)}
	}
	return data, nil
}
