package store

import (
	"context"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// Store is the persistence boundary for verification records.
//
// Error Contract:
//   - FindByUser and Execute return sentinel.ErrNotFound when no record exists
//   - Create returns sentinel.ErrConflict when the user already has a record
//   - Other methods return nil on success or wrapped errors on failure
//
// Execute is the atomic conditional update: implementations must load the
// record, run validate, apply mutate, and persist under a single lock or
// transaction so that two concurrent reviewers cannot both succeed.
//
// Replace follows the same discipline for resubmission: validate runs against
// the stored record under the same lock or transaction that writes the
// replacement, so a record that transitions after the caller's read (for
// example an approval landing mid-upload) fails validation instead of being
// silently overwritten. When no record exists, Replace inserts without
// calling validate.
type Store interface {
	Create(ctx context.Context, record *models.Record) error
	Replace(ctx context.Context, record *models.Record, validate func(current *models.Record) error) error
	FindByUser(ctx context.Context, userID string) (*models.Record, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.Record, error)
	CountPending(ctx context.Context) (int, error)
	Execute(ctx context.Context, userID string, validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
	MarkExpired(ctx context.Context, userID string, now time.Time) (bool, error)
	TouchAccess(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, userID string) error
}
