// Package query runs queries against the execution service: submit, wait for
// a terminal state, then load the result or describe the failure.
package query

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"athena-query/internal/domain"
)

// Outcome is the result of one query run. Failure is nil when the execution
// succeeded; otherwise Result is empty.
type Outcome struct {
	Record  *domain.ExecutionRecord
	Result  *domain.TabularResult
	Failure *domain.QueryFailure
}

// QueryService composes the executor, fetcher and classifier.
type QueryService struct {
	executor   *Executor
	fetcher    *Fetcher
	classifier *Classifier
	logger     *slog.Logger
}

// NewQueryService creates a QueryService. A nil logger discards output.
func NewQueryService(executor *Executor, fetcher *Fetcher, classifier *Classifier, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &QueryService{
		executor:   executor,
		fetcher:    fetcher,
		classifier: classifier,
		logger:     logger,
	}
}

// Run submits req, waits for it to finish, and returns its outcome.
// Failed or cancelled executions are reported in Outcome.Failure, not as an error.
func (s *QueryService) Run(ctx context.Context, req domain.QueryRequest) (*Outcome, error) {
	if strings.TrimSpace(req.QueryText) == "" {
		return nil, domain.ErrValidation("sql query is required")
	}
	if strings.TrimSpace(req.Database) == "" {
		return nil, domain.ErrValidation("database is required")
	}

	record, err := s.executor.SubmitAndWait(ctx, req)
	if err != nil {
		return nil, err
	}

	if record.State != domain.StateSucceeded {
		msg, empty := s.classifier.Describe(record)
		s.logger.Warn("query did not succeed",
			"execution_id", record.Handle, "state", record.State, "message", msg)
		return &Outcome{
			Record: record,
			Result: empty,
			Failure: &domain.QueryFailure{
				State:   record.State,
				Reason:  record.StateChangeReason,
				Message: msg,
			},
		}, nil
	}

	if record.ResultLocation == "" {
		return nil, fmt.Errorf("execution %s: %w", record.Handle, domain.ErrNoResultLocation)
	}

	result, err := s.fetcher.Fetch(ctx, record.ResultLocation)
	if err != nil {
		return nil, fmt.Errorf("fetch result of execution %s: %w", record.Handle, err)
	}
	s.logger.Info("query result loaded",
		"execution_id", record.Handle,
		"rows", result.RowCount(),
		"data_scanned_bytes", record.Stats.DataScannedBytes)

	return &Outcome{Record: record, Result: result}, nil
}
