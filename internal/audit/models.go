package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	Action        string
	ActorID       string
	SubjectUserID string
	Details       map[string]string
}

// Audit event actions for the verification lifecycle.
const (
	ActionDocumentSubmitted    = "verification_document_submitted"
	ActionDocumentResubmitted  = "verification_document_resubmitted"
	ActionVerificationApproved = "verification_approved"
	ActionVerificationRejected = "verification_rejected"
	ActionRecordExpired        = "verification_record_expired"
	ActionRecordDeleted        = "verification_record_deleted"
)
