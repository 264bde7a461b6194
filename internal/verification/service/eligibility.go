package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

// EvaluateCart checks every restricted item in the cart against the user's
// verification state and returns per-item warnings. The record is fetched
// once from the store, never from the cache, so a single consistent snapshot
// backs the whole evaluation. Expiry is applied lazily: a VERIFIED record
// past its expiry date blocks even if the sweeper has not run yet.
func (s *Service) EvaluateCart(ctx context.Context, userID string, items []models.CartItem) (*models.CartEvaluation, error) {
	ctx, span := s.tracer.Start(ctx, "verification.EvaluateCart")
	defer span.End()

	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	for _, item := range items {
		if item.RestrictedType != nil && !item.RestrictedType.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown restricted item type %q", *item.RestrictedType))
		}
	}

	record, err := s.store.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification record")
	}

	now := s.now()
	evaluation := &models.CartEvaluation{Warnings: []models.Warning{}}
	for _, item := range items {
		if item.RestrictedType == nil {
			continue
		}
		if w := s.evaluateItem(record, item, now); w != nil {
			evaluation.Warnings = append(evaluation.Warnings, *w)
		}
	}
	evaluation.Blocked = len(evaluation.Warnings) > 0

	if s.metrics != nil {
		outcome := "allowed"
		if evaluation.Blocked {
			outcome = "blocked"
		}
		s.metrics.CartEvaluations.WithLabelValues(outcome).Inc()
		for _, w := range evaluation.Warnings {
			s.metrics.CartWarnings.WithLabelValues(string(w.Type)).Inc()
		}
	}
	return evaluation, nil
}

// evaluateItem returns the warning blocking one restricted item, or nil when
// the item is purchasable.
func (s *Service) evaluateItem(record *models.Record, item models.CartItem, now time.Time) *models.Warning {
	if record == nil {
		return &models.Warning{
			Type:    models.WarningVerificationRequired,
			ItemID:  item.ItemID,
			Message: "age verification is required to purchase this item",
		}
	}
	switch record.Status {
	case models.StatusPending:
		return &models.Warning{
			Type:    models.WarningVerificationPending,
			ItemID:  item.ItemID,
			Message: "your verification is still under review",
		}
	case models.StatusRejected:
		return &models.Warning{
			Type:    models.WarningVerificationRejected,
			ItemID:  item.ItemID,
			Message: "your verification was rejected; please resubmit your document",
		}
	case models.StatusExpired:
		return &models.Warning{
			Type:    models.WarningVerificationExpired,
			ItemID:  item.ItemID,
			Message: "your verification has expired; please resubmit your document",
		}
	}
	if !record.IsValidAt(now) {
		// VERIFIED past its expiry date; the sweeper has not caught it yet.
		return &models.Warning{
			Type:    models.WarningVerificationExpired,
			ItemID:  item.ItemID,
			Message: "your verification has expired; please resubmit your document",
		}
	}
	minAge := item.MinimumAge
	if minAge <= 0 {
		minAge = s.minimumAges[*item.RestrictedType]
	}
	if minAge < models.MinimumPurchaseAge {
		minAge = models.MinimumPurchaseAge
	}
	if record.Age(now) < minAge {
		return &models.Warning{
			Type:    models.WarningAgeRestriction,
			ItemID:  item.ItemID,
			Message: fmt.Sprintf("you must be at least %d years old to purchase this item", minAge),
		}
	}
	return nil
}
