package service

import (
	"context"
	"sort"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

const (
	defaultPendingLimit = 50
	maxPendingLimit     = 200
)

// ListPendingReviews returns the admin triage queue: PENDING records
// annotated with their priority band, ordered most urgent first and oldest
// first within a band. Priority is computed from wait time at read time, so
// it is always current without any background reprioritization.
func (s *Service) ListPendingReviews(ctx context.Context, limit, offset int) ([]models.PendingReview, error) {
	ctx, span := s.tracer.Start(ctx, "verification.ListPendingReviews")
	defer span.End()

	if limit <= 0 {
		limit = defaultPendingLimit
	}
	if limit > maxPendingLimit {
		limit = maxPendingLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending records")
	}

	now := s.now()
	reviews := make([]models.PendingReview, 0, len(records))
	for _, record := range records {
		wait := now.Sub(record.SubmittedAt)
		reviews = append(reviews, models.PendingReview{
			Record:       record,
			Priority:     models.PriorityForWait(wait),
			HoursWaiting: wait.Hours(),
		})
	}
	// Records arrive oldest first; the stable sort preserves that order
	// within a priority band.
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Priority < reviews[j].Priority
	})

	if s.metrics != nil {
		if depth, err := s.store.CountPending(ctx); err == nil {
			s.metrics.PendingQueueDepth.Set(float64(depth))
		}
	}
	return reviews, nil
}

// CountPendingReviews returns the total triage backlog size for pagination.
func (s *Service) CountPendingReviews(ctx context.Context) (int, error) {
	count, err := s.store.CountPending(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count pending records")
	}
	return count, nil
}
