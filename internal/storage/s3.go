// Package storage reads result objects from S3, GCS and Azure Blob Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"athena-query/internal/domain"
)

// Compile-time check: S3Store implements domain.ObjectStore.
var _ domain.ObjectStore = (*S3Store)(nil)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads objects with the AWS SDK v2 S3 client.
type S3Store struct {
	client S3API
}

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// GetObject downloads the whole object in one request.
func (s *S3Store) GetObject(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, transportError("s3.GetObject", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("s3.GetObject", fmt.Errorf("read body of %s: %w", loc, err))
	}
	return data, nil
}

func transportError(op string, err error) *domain.TransportError {
	te := &domain.TransportError{Op: op, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		te.Code = apiErr.ErrorCode()
	}
	return te
}
