// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"fmt"
	"sync"

	"athena-query/internal/domain"
)

// === Execution API Mock ===

// MockExecutionAPI implements domain.ExecutionAPI for testing.
type MockExecutionAPI struct {
	StartExecutionFn func(ctx context.Context, req domain.QueryRequest) (domain.ExecutionHandle, error)
	GetExecutionFn   func(ctx context.Context, handle domain.ExecutionHandle) (*domain.ExecutionRecord, error)

	mu        sync.Mutex
	Submitted []domain.QueryRequest // collected submissions for assertions
	Polls     int                   // number of GetExecution calls
}

// StartExecution implements the interface method for testing.
func (m *MockExecutionAPI) StartExecution(ctx context.Context, req domain.QueryRequest) (domain.ExecutionHandle, error) {
	m.mu.Lock()
	m.Submitted = append(m.Submitted, req)
	m.mu.Unlock()
	if m.StartExecutionFn != nil {
		return m.StartExecutionFn(ctx, req)
	}
	panic("unexpected call to MockExecutionAPI.StartExecution")
}

// GetExecution implements the interface method for testing.
func (m *MockExecutionAPI) GetExecution(ctx context.Context, handle domain.ExecutionHandle) (*domain.ExecutionRecord, error) {
	m.mu.Lock()
	m.Polls++
	m.mu.Unlock()
	if m.GetExecutionFn != nil {
		return m.GetExecutionFn(ctx, handle)
	}
	panic("unexpected call to MockExecutionAPI.GetExecution")
}

var _ domain.ExecutionAPI = (*MockExecutionAPI)(nil)

// NewScriptedExecutionAPI returns a mock that hands out handle and then reports
// the given states in order, one per status check. The last state carries
// location and reason. Checking past the end of the script is a test failure.
func NewScriptedExecutionAPI(handle domain.ExecutionHandle, location, reason string, states ...domain.ExecutionState) *MockExecutionAPI {
	next := 0
	m := &MockExecutionAPI{}
	m.StartExecutionFn = func(_ context.Context, _ domain.QueryRequest) (domain.ExecutionHandle, error) {
		return handle, nil
	}
	m.GetExecutionFn = func(_ context.Context, h domain.ExecutionHandle) (*domain.ExecutionRecord, error) {
		if h != handle {
			return nil, fmt.Errorf("unknown handle %q", h)
		}
		if next >= len(states) {
			panic("status checked after terminal state")
		}
		rec := &domain.ExecutionRecord{Handle: h, State: states[next]}
		if next == len(states)-1 {
			rec.ResultLocation = location
			rec.StateChangeReason = reason
		}
		next++
		return rec, nil
	}
	return m
}

// === Object Store Mock ===

// MockObjectStore implements domain.ObjectStore for testing.
type MockObjectStore struct {
	GetObjectFn func(ctx context.Context, loc domain.ObjectLocation) ([]byte, error)

	mu       sync.Mutex
	Requests []domain.ObjectLocation // collected requests for assertions
}

// GetObject implements the interface method for testing.
func (m *MockObjectStore) GetObject(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, loc)
	m.mu.Unlock()
	if m.GetObjectFn != nil {
		return m.GetObjectFn(ctx, loc)
	}
	panic("unexpected call to MockObjectStore.GetObject")
}

var _ domain.ObjectStore = (*MockObjectStore)(nil)

// NewStaticObjectStore returns a mock that serves body for every request.
func NewStaticObjectStore(body string) *MockObjectStore {
	return &MockObjectStore{
		GetObjectFn: func(_ context.Context, _ domain.ObjectLocation) ([]byte, error) {
			return []byte(body), nil
		},
	}
}
