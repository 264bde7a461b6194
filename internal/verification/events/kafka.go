package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/platform/kafka/producer"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// Kafka topics for verification fan-out. Status changes are keyed by user ID
// so per-user ordering holds within a partition.
const (
	TopicStatusChanged = "verification.status-changed"
	TopicSubmitted     = "verification.submitted"
)

// kafkaProducer is the slice of the platform producer the publisher needs.
type kafkaProducer interface {
	ProduceAsync(msg *producer.Message) error
}

// KafkaPublisher publishes verification events to Kafka. Publishing is async
// and best-effort: a broker outage must never fail the state transition that
// triggered the event.
type KafkaPublisher struct {
	producer kafkaProducer
	logger   *slog.Logger
}

// NewKafkaPublisher wraps a platform producer as an event Publisher.
func NewKafkaPublisher(p kafkaProducer, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, logger: logger}
}

func (k *KafkaPublisher) StatusChanged(ctx context.Context, record *models.Record) {
	k.publish(ctx, TopicStatusChanged, models.NewStatusEvent(models.EventStatusChanged, record, time.Now()))
}

func (k *KafkaPublisher) Submitted(ctx context.Context, record *models.Record) {
	k.publish(ctx, TopicSubmitted, models.NewStatusEvent(models.EventSubmitted, record, time.Now()))
}

func (k *KafkaPublisher) publish(ctx context.Context, topic string, event models.StatusEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		k.logger.ErrorContext(ctx, "failed to encode verification event",
			"topic", topic,
			"user_id", event.UserID,
			"error", err,
		)
		return
	}
	msg := &producer.Message{
		Topic: topic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: map[string]string{
			"kind": event.Kind,
		},
	}
	if err := k.producer.ProduceAsync(msg); err != nil {
		k.logger.ErrorContext(ctx, "failed to publish verification event",
			"topic", topic,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
