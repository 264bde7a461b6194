package handler

import (
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

// dateLayout is the wire format for dates without a time component.
const dateLayout = "2006-01-02"

// SubmitRequest is the document intake payload. The document itself travels
// base64-encoded in the JSON body.
type SubmitRequest struct {
	DocumentType string `json:"document_type" validate:"required,oneof=DRIVERS_LICENSE PASSPORT NATIONAL_ID STATE_ID"`
	DateOfBirth  string `json:"date_of_birth" validate:"required"`
	Filename     string `json:"filename" validate:"required,notblank,max=255"`
	Document     string `json:"document" validate:"required"`
}

// ReviewRequest is the admin adjudication payload.
type ReviewRequest struct {
	Decision             string `json:"decision" validate:"required,oneof=VERIFIED REJECTED"`
	RejectionReason      string `json:"rejection_reason,omitempty" validate:"omitempty,max=1000"`
	CorrectedDateOfBirth string `json:"corrected_date_of_birth,omitempty"`
}

// CartItemRequest is one order line in an eligibility check.
type CartItemRequest struct {
	ItemID         string `json:"item_id" validate:"required,notblank"`
	RestrictedType string `json:"restricted_type,omitempty" validate:"omitempty,oneof=TOBACCO ALCOHOL"`
	MinimumAge     int    `json:"minimum_age,omitempty" validate:"omitempty,gte=0,lte=99"`
}

// EvaluateCartRequest is the checkout eligibility payload.
type EvaluateCartRequest struct {
	Items []CartItemRequest `json:"items" validate:"required,dive"`
}

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be formatted as YYYY-MM-DD")
	}
	return parsed, nil
}

func (r EvaluateCartRequest) toModel() []models.CartItem {
	items := make([]models.CartItem, 0, len(r.Items))
	for _, item := range r.Items {
		out := models.CartItem{ItemID: item.ItemID, MinimumAge: item.MinimumAge}
		if item.RestrictedType != "" {
			t := models.RestrictedItemType(item.RestrictedType)
			out.RestrictedType = &t
		}
		items = append(items, out)
	}
	return items
}
