package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/profullstack/food-delivery-multivendor/internal/assets"
	"github.com/profullstack/food-delivery-multivendor/internal/audit"
	"github.com/profullstack/food-delivery-multivendor/internal/notification"
	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/cache"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/events"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/metrics"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/store"
	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

const (
	defaultExpiryMonths   = 24
	defaultMaxUploadBytes = 5 << 20 // 5 MB
	maxDateOfBirthYears   = 120
)

// Service owns the verification record lifecycle: intake, adjudication,
// deletion, and the read surface used by checkout and admin views.
type Service struct {
	store    store.Store
	assets   assets.Store
	auditor  *audit.Publisher
	events   events.Publisher
	notifier notification.Sender
	cache    *cache.StatusCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	expiryMonths         int
	maxUploadBytes       int64
	minimumSubmissionAge int
	allowedTypes         map[models.DocumentType]struct{}
	minimumAges          map[models.RestrictedItemType]int
}

// Option configures the Service.
type Option func(*Service)

// WithEvents sets the event publisher for status fan-out.
func WithEvents(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithNotifier sets the push notification sender.
func WithNotifier(n notification.Sender) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithCache sets the status snapshot cache used by display reads.
func WithCache(c *cache.StatusCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source. Tests use this for deterministic
// expiry arithmetic.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithExpiryMonths configures how long a VERIFIED decision remains valid.
func WithExpiryMonths(months int) Option {
	return func(s *Service) {
		if months > 0 {
			s.expiryMonths = months
		}
	}
}

// WithMaxUploadSize configures the document size ceiling in bytes.
func WithMaxUploadSize(bytes int64) Option {
	return func(s *Service) {
		if bytes > 0 {
			s.maxUploadBytes = bytes
		}
	}
}

// WithAllowedDocumentTypes restricts the accepted document kinds.
func WithAllowedDocumentTypes(types []models.DocumentType) Option {
	return func(s *Service) {
		if len(types) == 0 {
			return
		}
		s.allowedTypes = make(map[models.DocumentType]struct{}, len(types))
		for _, t := range types {
			s.allowedTypes[t] = struct{}{}
		}
	}
}

// WithMinimumSubmissionAge raises the age a submitter must have reached.
// Values below the statutory floor of 18 are ignored.
func WithMinimumSubmissionAge(age int) Option {
	return func(s *Service) {
		if age > models.MinimumSubmissionAge {
			s.minimumSubmissionAge = age
		}
	}
}

// WithMinimumAge overrides the purchase age floor for one restricted category.
func WithMinimumAge(t models.RestrictedItemType, age int) Option {
	return func(s *Service) {
		if age > 0 {
			s.minimumAges[t] = age
		}
	}
}

// NewService wires the verification service with required collaborators and
// options applied.
func NewService(recordStore store.Store, assetStore assets.Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:                recordStore,
		assets:               assetStore,
		auditor:              auditor,
		events:               events.Noop{},
		notifier:             notification.Noop{},
		logger:               logger,
		tracer:               otel.Tracer("verification"),
		now:                  time.Now,
		expiryMonths:         defaultExpiryMonths,
		maxUploadBytes:       defaultMaxUploadBytes,
		minimumSubmissionAge: models.MinimumSubmissionAge,
		minimumAges: map[models.RestrictedItemType]int{
			models.RestrictedTobacco: models.MinimumPurchaseAge,
			models.RestrictedAlcohol: models.MinimumPurchaseAge,
		},
	}
	allowed := make(map[models.DocumentType]struct{}, len(models.AllDocumentTypes))
	for _, t := range models.AllDocumentTypes {
		allowed[t] = struct{}{}
	}
	svc.allowedTypes = allowed
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Submit validates and persists a new verification submission. The asset
// write happens before the record write: a storage failure leaves no record
// state mutated and is safe to retry.
func (s *Service) Submit(ctx context.Context, userID string, document []byte, filename string, docType models.DocumentType, dateOfBirth time.Time) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Submit")
	defer span.End()
	start := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.SubmitLatency.Observe(time.Since(start).Seconds())
		}
	}()

	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	mimeType, err := s.validateSubmission(document, docType, dateOfBirth)
	if err != nil {
		s.countSubmission(docType, "rejected_validation")
		return nil, err
	}

	// Precondition: an active VERIFIED record blocks resubmission. PENDING,
	// REJECTED, and stale VERIFIED records are superseded.
	existing, err := s.store.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification record")
	}
	if existing != nil && existing.IsValidAt(s.now()) {
		s.countSubmission(docType, "rejected_already_verified")
		return nil, dErrors.New(dErrors.CodeAlreadyVerified, "user already holds a valid verification")
	}

	storageID := fmt.Sprintf("verification/%s/%s", userID, uuid.New().String())
	object, err := s.assets.Put(ctx, storageID, document, mimeType)
	if err != nil {
		s.countSubmission(docType, "storage_failure")
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to store document asset")
	}

	now := s.now()
	record, err := models.NewRecord(userID, models.Document{
		URL:              object.URL,
		ThumbnailURL:     object.ThumbnailURL,
		StorageID:        object.StorageID,
		Type:             docType,
		FileSizeBytes:    int64(len(document)),
		MimeType:         mimeType,
		OriginalFilename: filename,
	}, dateOfBirth, now)
	if err != nil {
		s.cleanupAsset(ctx, storageID)
		return nil, err
	}

	if existing != nil {
		// Atomic supersede: the precondition is re-checked against the stored
		// record inside the replace transaction, because an approval can land
		// between the read above and this write (the asset upload sits in that
		// window). The replacement and the check commit together, then the
		// orphaned asset is deleted at-least-once.
		var supersededStorageID string
		err := s.store.Replace(ctx, record, func(current *models.Record) error {
			if current.IsValidAt(s.now()) {
				return dErrors.New(dErrors.CodeAlreadyVerified, "user already holds a valid verification")
			}
			supersededStorageID = current.Document.StorageID
			return nil
		})
		if err != nil {
			s.cleanupAsset(ctx, storageID)
			if dErrors.HasCode(err, dErrors.CodeAlreadyVerified) {
				s.countSubmission(docType, "rejected_already_verified")
				return nil, err
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace verification record")
		}
		s.cleanupAsset(ctx, supersededStorageID)
	} else {
		if err := s.store.Create(ctx, record); err != nil {
			s.cleanupAsset(ctx, storageID)
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "verification record already exists")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification record")
		}
	}

	s.invalidateCache(ctx, userID)
	action := audit.ActionDocumentSubmitted
	if existing != nil {
		action = audit.ActionDocumentResubmitted
	}
	s.emitAudit(ctx, audit.Event{
		Action:        action,
		ActorID:       userID,
		SubjectUserID: userID,
		Timestamp:     now,
		Details: map[string]string{
			"document_type": string(docType),
			"mime_type":     mimeType,
		},
	})
	s.events.Submitted(ctx, record)
	s.countSubmission(docType, "accepted")
	return record, nil
}

// validateSubmission checks type, size, mime, and date-of-birth intake rules.
// Returns the sniffed mime type on success.
func (s *Service) validateSubmission(document []byte, docType models.DocumentType, dateOfBirth time.Time) (string, error) {
	if _, ok := s.allowedTypes[docType]; !ok || !docType.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("document type %q is not accepted", docType))
	}
	if len(document) == 0 {
		return "", dErrors.New(dErrors.CodeValidation, "document is empty")
	}
	if int64(len(document)) > s.maxUploadBytes {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("document exceeds maximum size of %d bytes", s.maxUploadBytes))
	}
	mimeType := http.DetectContentType(document)
	if mimeType != models.MimeJPEG && mimeType != models.MimePNG {
		return "", dErrors.New(dErrors.CodeValidation, "document must be a JPEG or PNG image")
	}
	if err := s.validateDateOfBirth(dateOfBirth); err != nil {
		return "", err
	}
	return mimeType, nil
}

func (s *Service) validateDateOfBirth(dateOfBirth time.Time) error {
	now := s.now()
	if dateOfBirth.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "date of birth is required")
	}
	if dateOfBirth.After(now) {
		return dErrors.New(dErrors.CodeValidation, "date of birth cannot be in the future")
	}
	if dateOfBirth.Before(now.AddDate(-maxDateOfBirthYears, 0, 0)) {
		return dErrors.New(dErrors.CodeValidation, "date of birth is implausibly old")
	}
	if models.AgeAt(dateOfBirth, now) < s.minimumSubmissionAge {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("submitter must be at least %d years old", s.minimumSubmissionAge))
	}
	return nil
}

// Review applies an admin adjudication decision. The status check and the
// transition run as one atomic store operation, so concurrent reviewers
// cannot both succeed; the loser fails with AlreadyReviewed and the record
// is left untouched.
func (s *Service) Review(ctx context.Context, userID, reviewerID string, decision models.Decision, rejectionReason string, correctedDateOfBirth *time.Time) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Review")
	defer span.End()

	if reviewerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing reviewer context")
	}
	if !decision.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid decision: %s", decision))
	}
	rejectionReason = strings.TrimSpace(rejectionReason)
	if decision == models.DecisionRejected && rejectionReason == "" {
		return nil, dErrors.New(dErrors.CodeMissingReason, "rejection requires a reason")
	}
	if correctedDateOfBirth != nil {
		if err := s.validateDateOfBirth(*correctedDateOfBirth); err != nil {
			return nil, err
		}
	}

	now := s.now()
	record, err := s.store.Execute(ctx, userID,
		func(r *models.Record) error {
			if r.Status != models.StatusPending {
				return dErrors.New(dErrors.CodeAlreadyReviewed, fmt.Sprintf("record is already %s", r.Status))
			}
			return nil
		},
		func(r *models.Record) {
			r.ReviewedAt = &now
			r.ReviewerID = reviewerID
			if correctedDateOfBirth != nil {
				r.DateOfBirth = *correctedDateOfBirth
			}
			switch decision {
			case models.DecisionVerified:
				r.Status = models.StatusVerified
				verifiedAt := now
				r.VerifiedAt = &verifiedAt
				expiry := now.AddDate(0, s.expiryMonths, 0)
				r.ExpiryDate = &expiry
				if len(r.RestrictedItemTypesGranted) == 0 {
					r.RestrictedItemTypesGranted = append([]models.RestrictedItemType(nil), models.AllRestrictedItemTypes...)
				}
			case models.DecisionRejected:
				r.Status = models.StatusRejected
				r.RejectionReason = rejectionReason
			}
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification record for user")
		}
		if dErrors.HasCode(err, dErrors.CodeAlreadyReviewed) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply review decision")
	}

	s.invalidateCache(ctx, userID)
	s.auditReview(ctx, record, reviewerID, decision, rejectionReason, now)
	s.events.StatusChanged(ctx, record)
	s.notifyDecision(record, decision)
	if s.metrics != nil {
		s.metrics.ReviewsTotal.WithLabelValues(string(decision)).Inc()
	}
	return record, nil
}

// GetStatus returns the user's record for display reads, serving from the
// snapshot cache when fresh and maintaining the access audit counters.
func (s *Service) GetStatus(ctx context.Context, userID string) (*models.Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	record, err := s.cache.Get(ctx, userID)
	if err != nil {
		record, err = s.store.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "no verification record for user")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification record")
		}
		if cacheErr := s.cache.Set(ctx, record); cacheErr != nil {
			s.logger.WarnContext(ctx, "failed to cache verification status", "error", cacheErr)
		}
	}

	if err := s.store.TouchAccess(ctx, userID, s.now()); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to record status access", "user_id", userID, "error", err)
	}
	return record, nil
}

// DeleteRecord removes the user's record and its backing asset
// (right-to-deletion). Asset deletion is at-least-once: a failure is logged
// for out-of-band cleanup and does not fail the request.
func (s *Service) DeleteRecord(ctx context.Context, userID, requestedBy string) error {
	ctx, span := s.tracer.Start(ctx, "verification.DeleteRecord")
	defer span.End()

	if requestedBy == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing requester context")
	}
	record, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no verification record for user")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification record")
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no verification record for user")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete verification record")
	}
	s.cleanupAsset(ctx, record.Document.StorageID)
	s.invalidateCache(ctx, userID)
	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionRecordDeleted,
		ActorID:       requestedBy,
		SubjectUserID: userID,
		Timestamp:     s.now(),
	})
	if s.metrics != nil {
		s.metrics.RecordsDeleted.Inc()
	}
	return nil
}

func (s *Service) auditReview(ctx context.Context, record *models.Record, reviewerID string, decision models.Decision, reason string, at time.Time) {
	action := audit.ActionVerificationApproved
	details := map[string]string{"document_type": string(record.Document.Type)}
	if decision == models.DecisionRejected {
		action = audit.ActionVerificationRejected
		details["rejection_reason"] = reason
	}
	s.emitAudit(ctx, audit.Event{
		Action:        action,
		ActorID:       reviewerID,
		SubjectUserID: record.UserID,
		Timestamp:     at,
		Details:       details,
	})
}

// notifyDecision pushes the outcome to the user. Fire-and-forget: delivery
// failures are logged and never fail the transition that triggered them.
func (s *Service) notifyDecision(record *models.Record, decision models.Decision) {
	title := "Identity verified"
	body := "Your identity document was approved. You can now purchase age-restricted items."
	if decision == models.DecisionRejected {
		title = "Verification rejected"
		body = "Your identity document was rejected: " + record.RejectionReason
	}
	userID := record.UserID
	status := string(record.Status)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, userID, title, body, map[string]string{
			"type":   "verification",
			"status": status,
		}); err != nil {
			s.logger.Warn("failed to deliver verification notification",
				"user_id", userID,
				"error", err,
			)
		}
	}()
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"subject_user_id", event.SubjectUserID,
			"error", err,
		)
	}
}

func (s *Service) cleanupAsset(ctx context.Context, storageID string) {
	if storageID == "" {
		return
	}
	if err := s.assets.Delete(ctx, storageID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete document asset, leaving for out-of-band cleanup",
			"storage_id", storageID,
			"error", err,
		)
	}
}

func (s *Service) invalidateCache(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate status cache", "user_id", userID, "error", err)
	}
}

func (s *Service) countSubmission(docType models.DocumentType, outcome string) {
	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues(string(docType), outcome).Inc()
	}
}
