package domain

import "context"

// ExecutionAPI submits queries and reports their status.
// Implemented by athena.Client.
type ExecutionAPI interface {
	StartExecution(ctx context.Context, req QueryRequest) (ExecutionHandle, error)
	GetExecution(ctx context.Context, handle ExecutionHandle) (*ExecutionRecord, error)
}

// ObjectLocation addresses one object in a bucket-style store.
type ObjectLocation struct {
	Scheme string
	Bucket string
	Key    string
}

// String renders the location as scheme://bucket/key.
func (l ObjectLocation) String() string {
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// ObjectStore retrieves the full content of a stored object.
// Implemented by storage.S3Store, storage.GCSStore, storage.AzureStore and storage.Router.
type ObjectStore interface {
	GetObject(ctx context.Context, loc ObjectLocation) ([]byte, error)
}
