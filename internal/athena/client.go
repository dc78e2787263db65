// Package athena adapts the AWS Athena API to domain.ExecutionAPI.
package athena

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"athena-query/internal/domain"
)

// Compile-time check: Client implements domain.ExecutionAPI.
var _ domain.ExecutionAPI = (*Client)(nil)

// API is the subset of the Athena client used here.
type API interface {
	StartQueryExecution(ctx context.Context, params *awsathena.StartQueryExecutionInput, optFns ...func(*awsathena.Options)) (*awsathena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *awsathena.GetQueryExecutionInput, optFns ...func(*awsathena.Options)) (*awsathena.GetQueryExecutionOutput, error)
}

// Defaults apply to requests that leave the corresponding field empty.
type Defaults struct {
	Catalog        string
	WorkGroup      string
	OutputLocation string
}

// Client submits queries to Athena and reads their status.
type Client struct {
	api      API
	defaults Defaults
	newToken func() string
}

// NewClient wraps an Athena API client.
func NewClient(api API, defaults Defaults) *Client {
	return &Client{api: api, defaults: defaults, newToken: uuid.NewString}
}

// StartExecution calls StartQueryExecution. Every submission carries a fresh
// client request token, so SDK-level retries of the call cannot start the
// query twice.
func (c *Client) StartExecution(ctx context.Context, req domain.QueryRequest) (domain.ExecutionHandle, error) {
	input := &awsathena.StartQueryExecutionInput{
		QueryString: aws.String(req.QueryText),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(req.Database),
		},
		ClientRequestToken: aws.String(c.newToken()),
	}
	if catalog := firstNonEmpty(req.Catalog, c.defaults.Catalog); catalog != "" {
		input.QueryExecutionContext.Catalog = aws.String(catalog)
	}
	if wg := firstNonEmpty(req.WorkGroup, c.defaults.WorkGroup); wg != "" {
		input.WorkGroup = aws.String(wg)
	}
	if out := firstNonEmpty(req.OutputLocation, c.defaults.OutputLocation); out != "" {
		input.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(out)}
	}

	resp, err := c.api.StartQueryExecution(ctx, input)
	if err != nil {
		return "", transportError("athena.StartQueryExecution", err)
	}
	id := aws.ToString(resp.QueryExecutionId)
	if id == "" {
		return "", transportError("athena.StartQueryExecution", errors.New("response has no query execution id"))
	}
	return domain.ExecutionHandle(id), nil
}

// GetExecution calls GetQueryExecution and converts the result to a record.
func (c *Client) GetExecution(ctx context.Context, handle domain.ExecutionHandle) (*domain.ExecutionRecord, error) {
	resp, err := c.api.GetQueryExecution(ctx, &awsathena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(string(handle)),
	})
	if err != nil {
		return nil, transportError("athena.GetQueryExecution", err)
	}
	if resp.QueryExecution == nil || resp.QueryExecution.Status == nil {
		return nil, transportError("athena.GetQueryExecution", errors.New("response has no execution status"))
	}
	return toRecord(handle, resp.QueryExecution), nil
}

func toRecord(handle domain.ExecutionHandle, qe *types.QueryExecution) *domain.ExecutionRecord {
	rec := &domain.ExecutionRecord{
		Handle:            handle,
		State:             domain.ExecutionState(qe.Status.State),
		StateChangeReason: aws.ToString(qe.Status.StateChangeReason),
	}
	if qe.ResultConfiguration != nil {
		rec.ResultLocation = aws.ToString(qe.ResultConfiguration.OutputLocation)
	}
	if s := qe.Statistics; s != nil {
		rec.Stats = domain.ExecutionStats{
			DataScannedBytes:    aws.ToInt64(s.DataScannedInBytes),
			EngineExecutionTime: millis(s.EngineExecutionTimeInMillis),
			QueueTime:           millis(s.QueryQueueTimeInMillis),
			TotalExecutionTime:  millis(s.TotalExecutionTimeInMillis),
		}
	}
	return rec
}

func millis(v *int64) time.Duration {
	return time.Duration(aws.ToInt64(v)) * time.Millisecond
}

func transportError(op string, err error) *domain.TransportError {
	te := &domain.TransportError{Op: op, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		te.Code = apiErr.ErrorCode()
	}
	return te
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
