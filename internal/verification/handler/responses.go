package handler

import (
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// DocumentResponse exposes the stored document's display fields. The raw
// storage identifier never leaves the service.
type DocumentResponse struct {
	Type         string `json:"type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MimeType     string `json:"mime_type"`
}

// RecordResponse is the user-facing view of a verification record.
type RecordResponse struct {
	UserID                 string           `json:"user_id"`
	Status                 string           `json:"status"`
	Document               DocumentResponse `json:"document"`
	SubmittedAt            time.Time        `json:"submitted_at"`
	ReviewedAt             *time.Time       `json:"reviewed_at,omitempty"`
	ExpiryDate             *time.Time       `json:"expiry_date,omitempty"`
	RejectionReason        string           `json:"rejection_reason,omitempty"`
	RestrictedTypesGranted []string         `json:"restricted_types_granted,omitempty"`
	CanPurchaseRestricted  bool             `json:"can_purchase_restricted"`
}

// PendingReviewResponse is one row in the admin triage queue.
type PendingReviewResponse struct {
	UserID       string           `json:"user_id"`
	Priority     string           `json:"priority"`
	HoursWaiting float64          `json:"hours_waiting"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	DateOfBirth  string           `json:"date_of_birth"`
	Document     DocumentResponse `json:"document"`
}

// PendingListResponse is the paginated triage queue.
type PendingListResponse struct {
	Reviews []PendingReviewResponse `json:"reviews"`
	Total   int                     `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

func toDocumentResponse(doc models.Document) DocumentResponse {
	return DocumentResponse{
		Type:         string(doc.Type),
		URL:          doc.URL,
		ThumbnailURL: doc.ThumbnailURL,
		MimeType:     doc.MimeType,
	}
}

func toRecordResponse(record *models.Record, now time.Time) RecordResponse {
	granted := make([]string, 0, len(record.RestrictedItemTypesGranted))
	for _, t := range record.RestrictedItemTypesGranted {
		granted = append(granted, string(t))
	}
	return RecordResponse{
		UserID:                 record.UserID,
		Status:                 string(record.Status),
		Document:               toDocumentResponse(record.Document),
		SubmittedAt:            record.SubmittedAt,
		ReviewedAt:             record.ReviewedAt,
		ExpiryDate:             record.ExpiryDate,
		RejectionReason:        record.RejectionReason,
		RestrictedTypesGranted: granted,
		CanPurchaseRestricted:  record.CanPurchaseRestrictedAt(now),
	}
}

func toPendingListResponse(reviews []models.PendingReview, total, limit, offset int) PendingListResponse {
	out := make([]PendingReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, PendingReviewResponse{
			UserID:       review.Record.UserID,
			Priority:     review.Priority.String(),
			HoursWaiting: review.HoursWaiting,
			SubmittedAt:  review.Record.SubmittedAt,
			DateOfBirth:  review.Record.DateOfBirth.Format(dateLayout),
			Document:     toDocumentResponse(review.Record.Document),
		})
	}
	return PendingListResponse{Reviews: out, Total: total, Limit: limit, Offset: offset}
}
