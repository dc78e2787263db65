package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-query/internal/domain"
	"athena-query/internal/testutil"
)

type fakeS3 struct {
	getFn func(*s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return f.getFn(in)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream reset") }

func TestS3Store_GetObject(t *testing.T) {
	var got *s3.GetObjectInput
	client := &fakeS3{getFn: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		got = in
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("a,b\n1,2\n"))}, nil
	}}

	data, err := NewS3Store(client).GetObject(context.Background(),
		domain.ObjectLocation{Scheme: "s3", Bucket: "results", Key: "q/1.csv"})
	require.NoError(t, err)

	assert.Equal(t, "a,b\n1,2\n", string(data))
	assert.Equal(t, "results", aws.ToString(got.Bucket))
	assert.Equal(t, "q/1.csv", aws.ToString(got.Key))
}

func TestS3Store_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client := &fakeS3{getFn: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
		}}

		_, err := NewS3Store(client).GetObject(context.Background(),
			domain.ObjectLocation{Scheme: "s3", Bucket: "b", Key: "k"})

		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "s3.GetObject", te.Op)
		assert.Equal(t, "NoSuchKey", te.Code)
	})

	t.Run("body read error", func(t *testing.T) {
		client := &fakeS3{getFn: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{Body: io.NopCloser(failingReader{})}, nil
		}}

		_, err := NewS3Store(client).GetObject(context.Background(),
			domain.ObjectLocation{Scheme: "s3", Bucket: "b", Key: "k"})

		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, err.Error(), "stream reset")
	})
}

func TestGCSAndAzureStores_UseOpen(t *testing.T) {
	var opened []string
	open := func(_ context.Context, bucket, key string) (io.ReadCloser, error) {
		opened = append(opened, bucket+"/"+key)
		return io.NopCloser(strings.NewReader("x\n1\n")), nil
	}
	loc := domain.ObjectLocation{Scheme: "gs", Bucket: "bkt", Key: "dir/out.csv"}

	data, err := (&GCSStore{open: open}).GetObject(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(data))

	data, err = (&AzureStore{open: open}).GetObject(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(data))

	assert.Equal(t, []string{"bkt/dir/out.csv", "bkt/dir/out.csv"}, opened)
}

func TestGCSAndAzureStores_OpenError(t *testing.T) {
	open := func(context.Context, string, string) (io.ReadCloser, error) {
		return nil, errors.New("permission denied")
	}
	loc := domain.ObjectLocation{Scheme: "gs", Bucket: "bkt", Key: "k"}

	_, err := (&GCSStore{open: open}).GetObject(context.Background(), loc)
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "gcs.NewReader", te.Op)

	_, err = (&AzureStore{open: open}).GetObject(context.Background(), loc)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "azblob.DownloadStream", te.Op)
}

func TestStoreConstructors_RequireCredentials(t *testing.T) {
	_, err := NewGCSStore(context.Background(), "")
	assert.Error(t, err)

	_, err = NewAzureStore("", "key")
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	s3Store := testutil.NewStaticObjectStore("from s3")
	gsStore := testutil.NewStaticObjectStore("from gcs")
	r := NewRouter().Register(s3Store, "s3", "s3a").Register(gsStore, "gs")

	assert.Equal(t, []string{"gs", "s3", "s3a"}, r.Schemes())

	data, err := r.GetObject(context.Background(), domain.ObjectLocation{Scheme: "s3a", Bucket: "b", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "from s3", string(data))

	data, err = r.GetObject(context.Background(), domain.ObjectLocation{Scheme: "gs", Bucket: "b", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "from gcs", string(data))

	assert.Len(t, s3Store.Requests, 1)
	assert.Len(t, gsStore.Requests, 1)
}

func TestRouter_UnknownScheme(t *testing.T) {
	_, err := NewRouter().GetObject(context.Background(), domain.ObjectLocation{Scheme: "ftp", Bucket: "b", Key: "k"})

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Message, `"ftp"`)
}
