package models

import "time"

// Priority is the review triage band. Lower number means more urgent.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityNormal   Priority = 4
)

// Wait-time thresholds for the triage bands.
const (
	criticalWait = 48 * time.Hour
	highWait     = 24 * time.Hour
	mediumWait   = 12 * time.Hour
)

// String returns the band label used in API responses and logs.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	default:
		return "NORMAL"
	}
}

// PriorityForWait maps a pending record's wait time to its triage band.
// Strictly-greater-than comparisons: a record at exactly 48h is HIGH, not CRITICAL.
func PriorityForWait(wait time.Duration) Priority {
	switch {
	case wait > criticalWait:
		return PriorityCritical
	case wait > highWait:
		return PriorityHigh
	case wait > mediumWait:
		return PriorityMedium
	default:
		return PriorityNormal
	}
}

// PendingReview annotates a PENDING record with its triage priority.
type PendingReview struct {
	Record       *Record
	Priority     Priority
	HoursWaiting float64
}
