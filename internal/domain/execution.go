package domain

import "time"

// ExecutionState is the lifecycle state reported by the execution service.
type ExecutionState string

// Execution states reported by the service.
const (
	StateQueued    ExecutionState = "QUEUED"
	StateRunning   ExecutionState = "RUNNING"
	StateSucceeded ExecutionState = "SUCCEEDED"
	StateFailed    ExecutionState = "FAILED"
	StateCancelled ExecutionState = "CANCELLED"
)

// Pending reports whether the execution is still queued or running.
// Every other state, including ones this package does not know about, is terminal.
func (s ExecutionState) Pending() bool {
	return s == StateQueued || s == StateRunning
}

// QueryRequest is a single query submission.
type QueryRequest struct {
	QueryText string
	Database  string

	// Optional execution context. Empty values defer to the workgroup settings.
	Catalog        string
	WorkGroup      string
	OutputLocation string
}

// ExecutionHandle identifies one submitted execution.
type ExecutionHandle string

// ExecutionStats holds the optional statistics reported with an execution.
type ExecutionStats struct {
	DataScannedBytes    int64
	EngineExecutionTime time.Duration
	QueueTime           time.Duration
	TotalExecutionTime  time.Duration
}

// ExecutionRecord is a snapshot of an execution's status as last reported by
// the service. ResultLocation and StateChangeReason are empty when absent.
type ExecutionRecord struct {
	Handle            ExecutionHandle
	State             ExecutionState
	ResultLocation    string
	StateChangeReason string
	Stats             ExecutionStats
}
