package audit

import (
	"context"

	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "audit record not found")
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectUserID string) ([]Event, error)
}
