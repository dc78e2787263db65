package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"athena-query/internal/domain"
)

// Compile-time check: AzureStore implements domain.ObjectStore.
var _ domain.ObjectStore = (*AzureStore)(nil)

// AzureStore reads blobs from Azure Blob Storage. The location's bucket is
// the container name.
type AzureStore struct {
	open openFunc
}

// NewAzureStore creates an AzureStore using shared-key credentials.
func NewAzureStore(accountName, accountKey string) (*AzureStore, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("azure account name and key are required")
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}

	return &AzureStore{
		open: func(ctx context.Context, container, blob string) (io.ReadCloser, error) {
			resp, err := client.DownloadStream(ctx, container, blob, nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		},
	}, nil
}

// GetObject downloads the whole blob.
func (s *AzureStore) GetObject(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	r, err := s.open(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, &domain.TransportError{Op: "azblob.DownloadStream", Err: err}
	}
	defer r.Close() //nolint:errcheck

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.TransportError{Op: "azblob.DownloadStream", Err: fmt.Errorf("read %s: %w", loc, err)}
	}
	return data, nil
}
