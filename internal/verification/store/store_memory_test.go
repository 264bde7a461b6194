package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

func newRecord(t *testing.T, userID string, submittedAt time.Time) *models.Record {
	t.Helper()
	doc := models.Document{
		URL:           "https://cdn.example.com/docs/" + userID,
		ThumbnailURL:  "https://cdn.example.com/docs/" + userID + "?thumb=1",
		StorageID:     "docs/" + userID,
		Type:          models.DocumentPassport,
		FileSizeBytes: 2048,
		MimeType:      models.MimePNG,
	}
	rec, err := models.NewRecord(userID, doc, time.Date(1995, 5, 20, 0, 0, 0, 0, time.UTC), submittedAt)
	require.NoError(t, err)
	rec.SubmittedAt = submittedAt
	return rec
}

func TestCreateEnforcesOneRecordPerUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Create(ctx, newRecord(t, "user-1", now)))
	err := s.Create(ctx, newRecord(t, "user-1", now.Add(time.Hour)))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestFindByUserReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, s.Create(ctx, newRecord(t, "user-1", now)))

	first, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	first.Status = models.StatusRejected

	second, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, second.Status, "mutating a returned record must not affect the store")
}

func TestFindByUserNotFound(t *testing.T) {
	s := New()
	_, err := s.FindByUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestListPendingOrderAndPagination(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order; list must come back oldest first.
	require.NoError(t, s.Create(ctx, newRecord(t, "user-c", base.Add(2*time.Hour))))
	require.NoError(t, s.Create(ctx, newRecord(t, "user-a", base)))
	require.NoError(t, s.Create(ctx, newRecord(t, "user-b", base.Add(time.Hour))))

	all, err := s.ListPending(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "user-a", all[0].UserID)
	assert.Equal(t, "user-b", all[1].UserID)
	assert.Equal(t, "user-c", all[2].UserID)

	page, err := s.ListPending(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "user-b", page[0].UserID)

	empty, err := s.ListPending(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExecuteTransition(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, s.Create(ctx, newRecord(t, "user-1", now)))

	validatePending := func(r *models.Record) error {
		if r.Status != models.StatusPending {
			return sentinel.ErrInvalidState
		}
		return nil
	}
	approve := func(r *models.Record) {
		r.Status = models.StatusVerified
		t := now
		r.ReviewedAt = &t
		r.VerifiedAt = &t
		expiry := now.AddDate(0, 24, 0)
		r.ExpiryDate = &expiry
		r.ReviewerID = "admin-1"
	}

	updated, err := s.Execute(ctx, "user-1", validatePending, approve)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, updated.Status)

	// Second transition must fail validation and leave the record unchanged.
	_, err = s.Execute(ctx, "user-1", validatePending, approve)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	after, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, updated, after)
}

func TestExecuteNotFound(t *testing.T) {
	s := New()
	_, err := s.Execute(context.Background(), "ghost",
		func(*models.Record) error { return nil },
		func(*models.Record) {},
	)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMarkExpiredConditional(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	rec := newRecord(t, "user-1", now.AddDate(0, -25, 0))
	rec.Status = models.StatusVerified
	stale := now.Add(-time.Hour)
	rec.ExpiryDate = &stale
	require.NoError(t, s.Create(ctx, rec))

	fresh := newRecord(t, "user-2", now)
	fresh.Status = models.StatusVerified
	future := now.AddDate(0, 12, 0)
	fresh.ExpiryDate = &future
	require.NoError(t, s.Create(ctx, fresh))

	transitioned, err := s.MarkExpired(ctx, "user-1", now)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// Idempotent: already EXPIRED, nothing to do.
	transitioned, err = s.MarkExpired(ctx, "user-1", now)
	require.NoError(t, err)
	assert.False(t, transitioned)

	// Unexpired records are left alone.
	transitioned, err = s.MarkExpired(ctx, "user-2", now)
	require.NoError(t, err)
	assert.False(t, transitioned)

	got, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)
}

func TestListExpired(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	stale := newRecord(t, "user-stale", now.AddDate(-2, 0, 0))
	stale.Status = models.StatusVerified
	yesterday := now.Add(-24 * time.Hour)
	stale.ExpiryDate = &yesterday
	require.NoError(t, s.Create(ctx, stale))

	pending := newRecord(t, "user-pending", now)
	require.NoError(t, s.Create(ctx, pending))

	ids, err := s.ListExpired(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-stale"}, ids)
}

func TestReplaceSupersedes(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	old := newRecord(t, "user-1", now)
	old.Status = models.StatusRejected
	require.NoError(t, s.Create(ctx, old))

	replacement := newRecord(t, "user-1", now.Add(time.Hour))
	require.NoError(t, s.Replace(ctx, replacement, nil))

	got, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, replacement.SubmittedAt, got.SubmittedAt)
}

func TestReplaceValidatesStoredRecord(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	verified := newRecord(t, "user-1", now)
	verified.Status = models.StatusVerified
	expiry := now.AddDate(0, 24, 0)
	verified.ExpiryDate = &expiry
	require.NoError(t, s.Create(ctx, verified))

	// The closure sees the record as stored, not as the caller last read it.
	replacement := newRecord(t, "user-1", now.Add(time.Hour))
	err := s.Replace(ctx, replacement, func(current *models.Record) error {
		if current.Status == models.StatusVerified {
			return sentinel.ErrInvalidState
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel.ErrInvalidState)

	got, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, got.Status, "a failed validation must leave the record untouched")
}

func TestReplaceInsertsWithoutValidation(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := newRecord(t, "user-1", time.Now().UTC())
	err := s.Replace(ctx, rec, func(*models.Record) error { return sentinel.ErrInvalidState })
	require.NoError(t, err)

	got, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestTouchAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, s.Create(ctx, newRecord(t, "user-1", now)))

	require.NoError(t, s.TouchAccess(ctx, "user-1", now))
	require.NoError(t, s.TouchAccess(ctx, "user-1", now.Add(time.Minute)))

	got, err := s.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AccessCount)
	require.NotNil(t, got.LastAccessedAt)
	assert.Equal(t, now.Add(time.Minute), *got.LastAccessedAt)

	assert.ErrorIs(t, s.TouchAccess(ctx, "ghost", now), sentinel.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newRecord(t, "user-1", time.Now().UTC())))
	require.NoError(t, s.Delete(ctx, "user-1"))
	_, err := s.FindByUser(ctx, "user-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "user-1"), sentinel.ErrNotFound)
}
