// Package api exposes query execution over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"athena-query/internal/domain"
	"athena-query/internal/middleware"
	"athena-query/internal/service/query"
)

// maxRequestBytes bounds the JSON body of a query request.
const maxRequestBytes = 1 << 20

// QueryRunner runs a query end to end. Implemented by app.App and
// query.QueryService.
type QueryRunner interface {
	Run(ctx context.Context, req domain.QueryRequest) (*query.Outcome, error)
}

// Handler serves the query endpoints.
type Handler struct {
	runner QueryRunner
	logger *slog.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(runner QueryRunner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{runner: runner, logger: logger}
}

// ExecuteQueryRequest is the body of POST /v1/query.
type ExecuteQueryRequest struct {
	SQL       string `json:"sql"`
	Database  string `json:"database"`
	WorkGroup string `json:"workgroup,omitempty"`
	Catalog   string `json:"catalog,omitempty"`
}

// ExecuteQueryResponse is returned for both successful and failed executions.
// Message is only set when the query did not succeed.
type ExecuteQueryResponse struct {
	ExecutionID      string     `json:"execution_id"`
	State            string     `json:"state"`
	Message          string     `json:"message,omitempty"`
	Columns          []string   `json:"columns"`
	Rows             [][]string `json:"rows"`
	RowCount         int        `json:"row_count"`
	DataScannedBytes int64      `json:"data_scanned_bytes"`
}

// ErrorResponse is the body of every non-query error.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ExecuteQuery handles POST /v1/query. The request blocks until the execution
// reaches a terminal state or the client goes away.
func (h *Handler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var body ExecuteQueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	out, err := h.runner.Run(r.Context(), domain.QueryRequest{
		QueryText: body.SQL,
		Database:  body.Database,
		Catalog:   body.Catalog,
		WorkGroup: body.WorkGroup,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := ExecuteQueryResponse{
		ExecutionID:      string(out.Record.Handle),
		State:            string(out.Record.State),
		Columns:          out.Result.Columns,
		Rows:             out.Result.Rows,
		RowCount:         out.Result.RowCount(),
		DataScannedBytes: out.Record.Stats.DataScannedBytes,
	}
	status := http.StatusOK
	if out.Failure != nil {
		resp.Message = out.Failure.Message
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		// Client disconnected; nobody is left to read the body.
		h.logger.Info("query abandoned by client", "request_id", middleware.RequestIDFromContext(r.Context()))
		return
	}
	code := httpStatusFromDomainError(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("query request failed", "error", err, "request_id", middleware.RequestIDFromContext(r.Context()))
	}
	writeJSON(w, code, ErrorResponse{
		Code:      code,
		Message:   err.Error(),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
