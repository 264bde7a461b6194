package models

// WarningType classifies why a restricted cart item is blocked.
type WarningType string

const (
	WarningVerificationRequired WarningType = "AGE_VERIFICATION_REQUIRED"
	WarningVerificationPending  WarningType = "VERIFICATION_PENDING"
	WarningVerificationRejected WarningType = "VERIFICATION_REJECTED"
	WarningVerificationExpired  WarningType = "VERIFICATION_EXPIRED"
	WarningAgeRestriction       WarningType = "AGE_RESTRICTION"
)

// CartItem is the evaluator's view of an order line. RestrictedType is nil for
// unrestricted items, which are never blocked regardless of verification state.
type CartItem struct {
	ItemID         string
	RestrictedType *RestrictedItemType
	MinimumAge     int
}

// Warning is a structured, per-item block reason so callers can render an
// actionable message instead of a bare failure.
type Warning struct {
	Type    WarningType `json:"type"`
	ItemID  string      `json:"item_id"`
	Message string      `json:"message,omitempty"`
}

// CartEvaluation is the aggregate eligibility decision for one cart.
type CartEvaluation struct {
	Blocked  bool      `json:"blocked"`
	Warnings []Warning `json:"warnings"`
}
