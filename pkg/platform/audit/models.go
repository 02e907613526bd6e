// Package audit captures who issued and who verified credentials.
//
// Events are appended through a Store; the production store writes a
// transactional outbox row (joining the issuance transaction when one is in
// flight) and a background worker ships rows to Kafka. Kafka is the source
// of truth for the audit trail.
package audit

import (
	"context"
	"time"
)

// Actions emitted by this service.
const (
	ActionCardIssued     = "card.issued"
	ActionBatchCompleted = "card.batch.completed"
	ActionVerifySucceed  = "verify.succeeded"
	ActionVerifyFailed   = "verify.failed"
)

// Event is one audit record. Keep it transport-agnostic so stores and sinks
// can fan out.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	SubjectID   string    `json:"subject_id,omitempty"`
	SubjectType string    `json:"subject_type,omitempty"`
	TemplateID  string    `json:"template_id,omitempty"`
	BatchName   string    `json:"batch_name,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// Store is an append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}
