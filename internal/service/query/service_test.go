package query

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-query/internal/domain"
	"athena-query/internal/testutil"
)

func newTestService(api domain.ExecutionAPI, store domain.ObjectStore, rec *sleepRecorder, logger *slog.Logger) *QueryService {
	return NewQueryService(
		NewExecutor(api, WithSleep(rec.sleep)),
		NewFetcher(store),
		NewClassifier(),
		logger,
	)
}

func TestRun_SucceededAfterPolling(t *testing.T) {
	api := testutil.NewScriptedExecutionAPI("exec-42", "loc://bucket/key.csv", "",
		domain.StateQueued, domain.StateRunning, domain.StateRunning, domain.StateSucceeded)
	store := testutil.NewStaticObjectStore("a,b\n1,2\n")
	rec := &sleepRecorder{}

	out, err := newTestService(api, store, rec, nil).Run(context.Background(),
		domain.QueryRequest{QueryText: "SELECT a, b\nFROM t", Database: "analytics"})
	require.NoError(t, err)

	assert.Nil(t, out.Failure)
	assert.Equal(t, domain.StateSucceeded, out.Record.State)
	assert.Equal(t, domain.ExecutionHandle("exec-42"), out.Record.Handle)
	assert.Equal(t, []string{"a", "b"}, out.Result.Columns)
	assert.Equal(t, []map[string]string{{"a": "1", "b": "2"}}, out.Result.Records())
	assert.Equal(t, 7*time.Second, rec.total())

	require.Len(t, store.Requests, 1, "exactly one fetch")
	assert.Equal(t, domain.ObjectLocation{Scheme: "loc", Bucket: "bucket", Key: "key.csv"}, store.Requests[0])
}

func TestRun_FailedWithLakeFormationReason(t *testing.T) {
	api := testutil.NewScriptedExecutionAPI("exec-7", "", "Table not found. Lake Formation permissions missing.",
		domain.StateFailed)
	store := &testutil.MockObjectStore{}
	rec := &sleepRecorder{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	out, err := newTestService(api, store, rec, logger).Run(context.Background(),
		domain.QueryRequest{QueryText: "SELECT * FROM missing", Database: "analytics"})
	require.NoError(t, err)

	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.StateFailed, out.Failure.State)
	assert.Equal(t, "Table not found. Lake Formation permissions missing.", out.Failure.Reason)
	assert.Contains(t, out.Failure.Message, "Check to make sure the table exists.")
	assert.True(t, out.Result.Empty())
	assert.Empty(t, store.Requests, "no fetch for a failed execution")
	assert.Empty(t, rec.waits)
	assert.Contains(t, logs.String(), "query did not succeed")
}

func TestRun_CancelledYieldsEmptyResult(t *testing.T) {
	api := testutil.NewScriptedExecutionAPI("exec-8", "s3://bucket/partial.csv", "Query was cancelled by user",
		domain.StateRunning, domain.StateCancelled)
	store := &testutil.MockObjectStore{}
	rec := &sleepRecorder{}

	out, err := newTestService(api, store, rec, nil).Run(context.Background(),
		domain.QueryRequest{QueryText: "SELECT 1", Database: "analytics"})
	require.NoError(t, err)

	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.StateCancelled, out.Failure.State)
	assert.NotContains(t, out.Failure.Message, "Check to make sure the table exists.")
	assert.True(t, out.Result.Empty())
	assert.Empty(t, store.Requests)
}

func TestRun_ParseErrorIsNotAnEmptyResult(t *testing.T) {
	api := testutil.NewScriptedExecutionAPI("exec-9", "s3://bucket/out.csv", "", domain.StateSucceeded)
	store := testutil.NewStaticObjectStore("")
	rec := &sleepRecorder{}

	out, err := newTestService(api, store, rec, nil).Run(context.Background(),
		domain.QueryRequest{QueryText: "SELECT 1", Database: "analytics"})

	assert.Nil(t, out)
	var pe *domain.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestRun_SucceededWithoutLocation(t *testing.T) {
	api := testutil.NewScriptedExecutionAPI("exec-10", "", "", domain.StateSucceeded)
	store := &testutil.MockObjectStore{}
	rec := &sleepRecorder{}

	_, err := newTestService(api, store, rec, nil).Run(context.Background(),
		domain.QueryRequest{QueryText: "SELECT 1", Database: "analytics"})

	require.ErrorIs(t, err, domain.ErrNoResultLocation)
	assert.Empty(t, store.Requests)
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.QueryRequest
	}{
		{"blank query", domain.QueryRequest{QueryText: " \n ", Database: "db"}},
		{"blank database", domain.QueryRequest{QueryText: "SELECT 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &testutil.MockExecutionAPI{}
			rec := &sleepRecorder{}

			_, err := newTestService(api, &testutil.MockObjectStore{}, rec, nil).Run(context.Background(), tt.req)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Empty(t, api.Submitted)
		})
	}
}

func TestRun_IndependentFlowsInParallel(t *testing.T) {
	store := testutil.NewStaticObjectStore("n\n1\n")

	for _, id := range []string{"exec-a", "exec-b", "exec-c"} {
		t.Run(id, func(t *testing.T) {
			t.Parallel()
			api := testutil.NewScriptedExecutionAPI(domain.ExecutionHandle(id), "s3://bucket/"+id+".csv", "",
				domain.StateQueued, domain.StateRunning, domain.StateSucceeded)
			rec := &sleepRecorder{}

			out, err := newTestService(api, store, rec, nil).Run(context.Background(),
				domain.QueryRequest{QueryText: "SELECT 1 AS n", Database: "db"})
			require.NoError(t, err)

			assert.Equal(t, domain.ExecutionHandle(id), out.Record.Handle)
			assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
		})
	}
}
