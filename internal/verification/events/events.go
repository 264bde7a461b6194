package events

import (
	"context"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// Publisher fans out verification lifecycle events. StatusChanged is unicast
// to the record's user; Submitted is broadcast to admin subscribers.
// Delivery is at-least-once and best-effort: no replay is offered, and a
// reconnecting subscriber must re-query current state.
type Publisher interface {
	StatusChanged(ctx context.Context, record *models.Record)
	Submitted(ctx context.Context, record *models.Record)
}

// Noop discards all events. Useful for tests and disabled fan-out.
type Noop struct{}

func (Noop) StatusChanged(context.Context, *models.Record) {}
func (Noop) Submitted(context.Context, *models.Record)     {}

// Multi fans a single event out to several publishers, e.g. the in-process
// hub for connected clients plus Kafka for other services.
type Multi []Publisher

func (m Multi) StatusChanged(ctx context.Context, record *models.Record) {
	for _, p := range m {
		p.StatusChanged(ctx, record)
	}
}

func (m Multi) Submitted(ctx context.Context, record *models.Record) {
	for _, p := range m {
		p.Submitted(ctx, record)
	}
}
