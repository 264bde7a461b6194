package models

import (
	"time"

	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

// Status is the adjudication state of a verification record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

// IsValid reports whether the status is a known state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// DocumentType identifies the kind of identity document submitted.
type DocumentType string

const (
	DocumentDriversLicense DocumentType = "DRIVERS_LICENSE"
	DocumentPassport       DocumentType = "PASSPORT"
	DocumentNationalID     DocumentType = "NATIONAL_ID"
	DocumentStateID        DocumentType = "STATE_ID"
)

// AllDocumentTypes is the default allowed set when none is configured.
var AllDocumentTypes = []DocumentType{
	DocumentDriversLicense,
	DocumentPassport,
	DocumentNationalID,
	DocumentStateID,
}

// IsValid reports whether the document type is a known kind.
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentDriversLicense, DocumentPassport, DocumentNationalID, DocumentStateID:
		return true
	}
	return false
}

// RestrictedItemType identifies a legally age-restricted catalog category.
type RestrictedItemType string

const (
	RestrictedTobacco RestrictedItemType = "TOBACCO"
	RestrictedAlcohol RestrictedItemType = "ALCOHOL"
)

// AllRestrictedItemTypes is the default grant set for a verified record.
var AllRestrictedItemTypes = []RestrictedItemType{RestrictedTobacco, RestrictedAlcohol}

// IsValid reports whether the restricted item type is a known category.
func (r RestrictedItemType) IsValid() bool {
	return r == RestrictedTobacco || r == RestrictedAlcohol
}

// Allowed mime types for document uploads.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Document is an opaque reference to the stored identity document asset.
type Document struct {
	URL              string
	ThumbnailURL     string
	StorageID        string
	Type             DocumentType
	FileSizeBytes    int64
	MimeType         string
	OriginalFilename string
}

// MinimumPurchaseAge is the legal floor for restricted purchases. Category
// minimums from configuration may only raise it, never lower it.
const MinimumPurchaseAge = 21

// MinimumSubmissionAge is the hard intake precondition: no record is ever
// created for a younger date of birth.
const MinimumSubmissionAge = 18

// Record is the per-user verification entity. Exactly one record exists per
// user; resubmission replaces it atomically.
type Record struct {
	UserID      string
	Document    Document
	Status      Status
	DateOfBirth time.Time
	SubmittedAt time.Time

	ReviewedAt      *time.Time
	VerifiedAt      *time.Time
	ExpiryDate      *time.Time
	RejectionReason string
	ReviewerID      string

	RestrictedItemTypesGranted []RestrictedItemType

	// Audit counters maintained by the read path.
	AccessCount    int64
	LastAccessedAt *time.Time
}

// NewRecord creates a PENDING Record with domain invariant checks.
func NewRecord(userID string, doc Document, dateOfBirth, submittedAt time.Time) (*Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID required")
	}
	if !doc.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid document type")
	}
	if doc.StorageID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document storage reference required")
	}
	if dateOfBirth.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date of birth required")
	}
	if AgeAt(dateOfBirth, submittedAt) < MinimumSubmissionAge {
		return nil, dErrors.New(dErrors.CodeValidation, "submitter must be at least 18 years old")
	}
	granted := make([]RestrictedItemType, len(AllRestrictedItemTypes))
	copy(granted, AllRestrictedItemTypes)
	return &Record{
		UserID:                     userID,
		Document:                   doc,
		Status:                     StatusPending,
		DateOfBirth:                dateOfBirth,
		SubmittedAt:                submittedAt,
		RestrictedItemTypesGranted: granted,
	}, nil
}

// AgeAt returns the whole number of years between dateOfBirth and now.
func AgeAt(dateOfBirth, now time.Time) int {
	years := now.Year() - dateOfBirth.Year()
	// Subtract one year if the birthday has not yet occurred this year.
	anniversary := dateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Age returns the holder's current whole-year age at the given instant.
func (r Record) Age(now time.Time) int {
	return AgeAt(r.DateOfBirth, now)
}

// IsValidAt reports whether the record grants a usable verification at the
// given instant. A VERIFIED record past its expiry date counts as invalid even
// before the sweeper has run (lazy expiry).
func (r Record) IsValidAt(now time.Time) bool {
	if r.Status != StatusVerified {
		return false
	}
	return r.ExpiryDate != nil && now.Before(*r.ExpiryDate)
}

// CanPurchaseRestrictedAt reports whether the holder may buy restricted items
// at the given instant: a valid verification and the legal minimum age.
func (r Record) CanPurchaseRestrictedAt(now time.Time) bool {
	return r.IsValidAt(now) && r.Age(now) >= MinimumPurchaseAge
}

// Grants reports whether the record's granted set covers the given category.
func (r Record) Grants(t RestrictedItemType) bool {
	for _, g := range r.RestrictedItemTypesGranted {
		if g == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores can hand out records without aliasing.
func (r Record) Clone() *Record {
	out := r
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		out.ReviewedAt = &t
	}
	if r.VerifiedAt != nil {
		t := *r.VerifiedAt
		out.VerifiedAt = &t
	}
	if r.ExpiryDate != nil {
		t := *r.ExpiryDate
		out.ExpiryDate = &t
	}
	if r.LastAccessedAt != nil {
		t := *r.LastAccessedAt
		out.LastAccessedAt = &t
	}
	out.RestrictedItemTypesGranted = make([]RestrictedItemType, len(r.RestrictedItemTypesGranted))
	copy(out.RestrictedItemTypesGranted, r.RestrictedItemTypesGranted)
	return &out
}

// Decision is an admin adjudication outcome.
type Decision string

const (
	DecisionVerified Decision = "VERIFIED"
	DecisionRejected Decision = "REJECTED"
)

// IsValid reports whether the decision is a known outcome.
func (d Decision) IsValid() bool {
	return d == DecisionVerified || d == DecisionRejected
}
