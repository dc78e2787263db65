package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-query/internal/config"
	"athena-query/internal/domain"
	"athena-query/internal/testutil"
)

func TestNew_WithInjectedClients(t *testing.T) {
	api := testutil.NewScriptedExecutionAPI("exec-1", "s3://bucket/out.csv", "", domain.StateSucceeded)
	store := testutil.NewStaticObjectStore("a\n1\n")

	a, err := New(context.Background(), Deps{
		Cfg:          &config.Config{Region: "us-east-1", Database: "analytics"},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		ExecutionAPI: api,
		ObjectStore:  store,
	})
	require.NoError(t, err)

	out, err := a.Query.Run(context.Background(), a.Request(domain.QueryRequest{QueryText: "SELECT 1 AS a"}))
	require.NoError(t, err)

	assert.Nil(t, out.Failure)
	assert.Equal(t, []map[string]string{{"a": "1"}}, out.Result.Records())
	require.Len(t, api.Submitted, 1)
	assert.Equal(t, "analytics", api.Submitted[0].Database)
}

func TestNew_BuildsStoresFromConfig(t *testing.T) {
	api := &testutil.MockExecutionAPI{}
	a, err := New(context.Background(), Deps{
		Cfg: &config.Config{
			Region:           "us-east-1",
			KeyID:            strPtr("AKIDEXAMPLE"),
			Secret:           strPtr("secret"),
			S3Endpoint:       "http://localhost:9000",
			S3PathStyle:      true,
			AzureAccountName: "acct",
			AzureAccountKey:  "a2V5",
		},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		ExecutionAPI: api,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"az", "s3", "s3a"}, a.Schemes)
}

func TestRequest_KeepsExplicitDatabase(t *testing.T) {
	a := &App{cfg: &config.Config{Database: "default_db"}}

	assert.Equal(t, "other", a.Request(domain.QueryRequest{Database: "other"}).Database)
	assert.Equal(t, "default_db", a.Request(domain.QueryRequest{}).Database)
}

func strPtr(s string) *string { return &s }
