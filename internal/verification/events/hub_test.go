package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

func record(userID string) *models.Record {
	return &models.Record{
		UserID:      userID,
		Status:      models.StatusVerified,
		SubmittedAt: time.Now(),
		Document:    models.Document{Type: models.DocumentPassport},
	}
}

func recv(t *testing.T, ch <-chan models.StatusEvent) models.StatusEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.StatusEvent{}
	}
}

func TestStatusChangedIsUnicast(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	aliceCh, cancelAlice := hub.SubscribeUser("alice")
	defer cancelAlice()
	bobCh, cancelBob := hub.SubscribeUser("bob")
	defer cancelBob()

	hub.StatusChanged(ctx, record("alice"))

	ev := recv(t, aliceCh)
	assert.Equal(t, "alice", ev.UserID)
	assert.Equal(t, models.EventStatusChanged, ev.Kind)

	select {
	case <-bobCh:
		t.Fatal("bob must not receive alice's status change")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmittedBroadcastsToAllAdmins(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	first, cancelFirst := hub.SubscribeAdmins()
	defer cancelFirst()
	second, cancelSecond := hub.SubscribeAdmins()
	defer cancelSecond()

	hub.Submitted(ctx, record("alice"))

	assert.Equal(t, models.EventSubmitted, recv(t, first).Kind)
	assert.Equal(t, models.EventSubmitted, recv(t, second).Kind)
}

func TestCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	ch, cancel := hub.SubscribeUser("alice")
	cancel()

	// Channel is closed on cancel; publish after cancel must not panic.
	hub.StatusChanged(ctx, record("alice"))

	_, open := <-ch
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(WithSubscriberBuffer(1))
	ctx := context.Background()

	ch, cancel := hub.SubscribeUser("alice")
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Second publish overflows the buffer and must drop, not block.
		hub.StatusChanged(ctx, record("alice"))
		hub.StatusChanged(ctx, record("alice"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	require.Len(t, ch, 1)
}

func TestMultiFansOut(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	ch, cancel := hub.SubscribeAdmins()
	defer cancel()

	multi := Multi{Noop{}, hub}
	multi.Submitted(ctx, record("alice"))

	assert.Equal(t, "alice", recv(t, ch).UserID)
}
