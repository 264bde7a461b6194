package models

import "time"

// Event kinds for verification fan-out.
const (
	EventStatusChanged = "verification.status_changed"
	EventSubmitted     = "verification.submitted"
)

// StatusEvent is the payload delivered to subscribers. A reconnecting
// subscriber must re-query current state; no replay is offered.
type StatusEvent struct {
	Kind            string       `json:"kind"`
	UserID          string       `json:"user_id"`
	Status          Status       `json:"status"`
	DocumentType    DocumentType `json:"document_type"`
	SubmittedAt     time.Time    `json:"submitted_at"`
	ExpiryDate      *time.Time   `json:"expiry_date,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	OccurredAt      time.Time    `json:"occurred_at"`
}

// NewStatusEvent builds the wire payload for a record's current state.
func NewStatusEvent(kind string, record *Record, occurredAt time.Time) StatusEvent {
	return StatusEvent{
		Kind:            kind,
		UserID:          record.UserID,
		Status:          record.Status,
		DocumentType:    record.Document.Type,
		SubmittedAt:     record.SubmittedAt,
		ExpiryDate:      record.ExpiryDate,
		RejectionReason: record.RejectionReason,
		OccurredAt:      occurredAt,
	}
}
