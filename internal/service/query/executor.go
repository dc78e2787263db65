package query

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"athena-query/internal/domain"
)

const (
	initialPollInterval = 1 * time.Second
	maxPollInterval     = 30 * time.Second
)

// SleepFunc blocks for d. It may return early with an error when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor submits a query and waits for it to reach a terminal state.
//
// There is no timeout: the poll loop runs until the service reports a state
// other than QUEUED or RUNNING. Callers that need a deadline put one on the
// context they pass in.
type Executor struct {
	api    domain.ExecutionAPI
	sleep  SleepFunc
	logger *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithSleep replaces the timed wait between status checks.
func WithSleep(fn SleepFunc) ExecutorOption {
	return func(e *Executor) { e.sleep = fn }
}

// WithLogger sets the logger used for poll progress.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an Executor over the given execution API.
func NewExecutor(api domain.ExecutionAPI, opts ...ExecutorOption) *Executor {
	e := &Executor{
		api:    api,
		sleep:  sleepContext,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitAndWait submits req and polls its status until it is terminal.
// Waits between checks start at one second and double up to thirty seconds.
// Errors from the execution API are returned as-is.
func (e *Executor) SubmitAndWait(ctx context.Context, req domain.QueryRequest) (*domain.ExecutionRecord, error) {
	req.QueryText = NormalizeQueryText(req.QueryText)

	handle, err := e.api.StartExecution(ctx, req)
	if err != nil {
		return nil, err
	}
	e.logger.Info("query submitted", "execution_id", handle, "database", req.Database)

	backoff := pollBackoff()
	checks := 0
	for {
		record, err := e.api.GetExecution(ctx, handle)
		if err != nil {
			return nil, err
		}
		checks++

		if !record.State.Pending() {
			e.logger.Info("query finished",
				"execution_id", handle, "state", record.State, "status_checks", checks)
			return record, nil
		}

		wait, _ := backoff.Next()
		e.logger.Debug("query pending",
			"execution_id", handle, "state", record.State, "wait", wait)
		if err := e.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// NormalizeQueryText replaces newlines with spaces. It is idempotent.
func NormalizeQueryText(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// pollBackoff returns the wait schedule 1s, 2s, 4s, 8s, 16s, 30s, 30s, ...
// Each call returns a fresh schedule.
func pollBackoff() retry.Backoff {
	return retry.WithCappedDuration(maxPollInterval, retry.NewExponential(initialPollInterval))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
