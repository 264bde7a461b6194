// Package expiry runs the background sweep that transitions VERIFIED records
// past their expiry date to EXPIRED. The sweep is a consistency mechanism,
// not a correctness one: readers already apply expiry lazily, so a delayed
// sweep never lets a stale verification pass checkout.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/audit"
	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/events"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/metrics"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/store"
)

const (
	defaultInterval  = time.Hour
	defaultBatchSize = 500
)

// Sweeper periodically expires stale VERIFIED records.
type Sweeper struct {
	store     store.Store
	events    events.Publisher
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// Option configures the Sweeper.
type Option func(*Sweeper)

// WithInterval sets the sweep cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithBatchSize caps how many records one sweep run processes.
func WithBatchSize(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithEvents sets the event publisher for expiry fan-out.
func WithEvents(p events.Publisher) Option {
	return func(s *Sweeper) {
		if p != nil {
			s.events = p
		}
	}
}

// WithMetrics sets the metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Sweeper.
func New(recordStore store.Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:     recordStore,
		events:    events.Noop{},
		auditor:   auditor,
		logger:    logger,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the sweep loop until the context is canceled. One sweep runs
// immediately on startup so a long-stopped deployment catches up without
// waiting a full interval.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("expiry sweeper started", "interval", s.interval.String())
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := s.now()
	count, err := s.RunOnce(ctx)
	if s.metrics != nil {
		s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "expiry sweep finished with errors", "expired", count, "error", err)
		return
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "expiry sweep finished", "expired", count)
	}
}

// RunOnce performs a single sweep pass and returns how many records it
// expired. Each record transitions independently; a failure on one is
// accumulated and the pass continues, so one bad row cannot wedge the sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	userIDs, err := s.store.ListExpired(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired records: %w", err)
	}

	var expired int
	var errs []error
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		changed, err := s.store.MarkExpired(ctx, userID, now)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// Deleted between list and mark; nothing to do.
				continue
			}
			errs = append(errs, fmt.Errorf("expire record for user %s: %w", userID, err))
			continue
		}
		if !changed {
			// Another instance won the transition, or the record was
			// superseded by a fresh submission.
			continue
		}
		expired++
		s.afterExpire(ctx, userID, now)
	}

	if s.metrics != nil && expired > 0 {
		s.metrics.RecordsExpired.Add(float64(expired))
	}
	return expired, errors.Join(errs...)
}

func (s *Sweeper) afterExpire(ctx context.Context, userID string, at time.Time) {
	record, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "expired record vanished before fan-out", "user_id", userID, "error", err)
		return
	}
	if record.Status != models.StatusExpired {
		return
	}
	s.events.StatusChanged(ctx, record)
	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Action:        audit.ActionRecordExpired,
			ActorID:       "system",
			SubjectUserID: userID,
			Timestamp:     at,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to emit expiry audit event", "user_id", userID, "error", err)
		}
	}
}
