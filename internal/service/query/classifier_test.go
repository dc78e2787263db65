package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-query/internal/domain"
)

func TestClassifier_Describe(t *testing.T) {
	tests := []struct {
		name     string
		record   domain.ExecutionRecord
		wantMsg  string
		wantHint bool
	}{
		{
			name: "lake formation reason gets hint",
			record: domain.ExecutionRecord{
				State:             domain.StateFailed,
				StateChangeReason: "Table not found. Lake Formation permissions missing.",
			},
			wantMsg:  "Stated Reason: Table not found. Lake Formation permissions missing.\n Check to make sure the table exists.",
			wantHint: true,
		},
		{
			name: "other reason has no hint",
			record: domain.ExecutionRecord{
				State:             domain.StateFailed,
				StateChangeReason: "SYNTAX_ERROR: line 1:8: Column 'x' cannot be resolved",
			},
			wantMsg: "Stated Reason: SYNTAX_ERROR: line 1:8: Column 'x' cannot be resolved",
		},
		{
			name: "match is case sensitive",
			record: domain.ExecutionRecord{
				State:             domain.StateFailed,
				StateChangeReason: "lake formation denied",
			},
			wantMsg: "Stated Reason: lake formation denied",
		},
		{
			name:    "cancelled without reason",
			record:  domain.ExecutionRecord{State: domain.StateCancelled},
			wantMsg: "Stated Reason: <none>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, result := NewClassifier().Describe(&tt.record)

			assert.Equal(t, tt.wantMsg, msg)
			if tt.wantHint {
				assert.Contains(t, msg, "Check to make sure the table exists.")
			} else {
				assert.NotContains(t, msg, "Check to make sure the table exists.")
			}
			require.NotNil(t, result)
			assert.True(t, result.Empty())
			assert.Empty(t, result.Columns)
		})
	}
}
