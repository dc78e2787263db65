package query

import (
	"strings"

	"athena-query/internal/domain"
)

const (
	lakeFormationMarker = "Lake Formation"
	missingTableHint    = "\n Check to make sure the table exists."
)

// Classifier turns a non-successful terminal record into a diagnostic message.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Describe builds a message from the record's state change reason and returns
// it with an empty result. Reasons mentioning Lake Formation usually mean the
// table is missing or not visible, so the message gets a hint saying so.
func (c *Classifier) Describe(record *domain.ExecutionRecord) (string, *domain.TabularResult) {
	reason := record.StateChangeReason
	if reason == "" {
		reason = "<none>"
	}

	msg := "Stated Reason: " + reason
	if strings.Contains(msg, lakeFormationMarker) {
		msg += missingTableHint
	}
	return msg, domain.EmptyResult()
}
