package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

const defaultSubscriberBuffer = 16

// Hub is the in-process Publisher. Subscribers hold buffered channels; sends
// are non-blocking and drop when a subscriber's buffer is full, since slow
// consumers must re-query state rather than stall the mutation path.
type Hub struct {
	mu     sync.RWMutex
	users  map[string]map[int]chan models.StatusEvent
	admins map[int]chan models.StatusEvent
	nextID int
	logger *slog.Logger
	buffer int
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithSubscriberBuffer overrides the per-subscriber channel buffer size.
func WithSubscriberBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithHubLogger sets the logger used to report dropped events.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHub constructs an empty in-process event hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		users:  make(map[string]map[int]chan models.StatusEvent),
		admins: make(map[int]chan models.StatusEvent),
		buffer: defaultSubscriberBuffer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SubscribeUser registers a channel receiving events for one user only.
// The returned cancel func must be called to release the subscription.
func (h *Hub) SubscribeUser(userID string) (<-chan models.StatusEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan models.StatusEvent, h.buffer)
	subs, ok := h.users[userID]
	if !ok {
		subs = make(map[int]chan models.StatusEvent)
		h.users[userID] = subs
	}
	subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.users[userID]; ok {
			if ch, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// SubscribeAdmins registers a channel receiving every new-submission broadcast.
func (h *Hub) SubscribeAdmins() (<-chan models.StatusEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan models.StatusEvent, h.buffer)
	h.admins[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if ch, ok := h.admins[id]; ok {
			delete(h.admins, id)
			close(ch)
		}
	}
}

// StatusChanged delivers the event to subscribers of that user only.
func (h *Hub) StatusChanged(_ context.Context, record *models.Record) {
	event := models.NewStatusEvent(models.EventStatusChanged, record, time.Now())
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.users[record.UserID] {
		h.send(ch, event)
	}
}

// Submitted broadcasts the event to all admin subscribers.
func (h *Hub) Submitted(_ context.Context, record *models.Record) {
	event := models.NewStatusEvent(models.EventSubmitted, record, time.Now())
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.admins {
		h.send(ch, event)
	}
}

func (h *Hub) send(ch chan models.StatusEvent, event models.StatusEvent) {
	select {
	case ch <- event:
	default:
		h.logger.Warn("subscriber buffer full, event dropped",
			"kind", event.Kind,
			"user_id", event.UserID,
		)
	}
}
