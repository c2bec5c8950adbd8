package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ihirwe/event-locator/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher produces notifications to a Kafka topic.
type KafkaPublisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewKafkaPublisher creates a producer for the notification topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{writer: w, logger: logger, metrics: metrics}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n EventNotification) error {
	msg, err := serializeToMessage(n)
	if err != nil {
		p.metrics.NotificationsPublished.WithLabelValues("kafka", "error").Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.NotificationsPublished.WithLabelValues("kafka", "error").Inc()
		return fmt.Errorf("publish notification: %w", err)
	}
	p.metrics.NotificationsPublished.WithLabelValues("kafka", "ok").Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a notification into a Kafka message keyed by
// event ID so per-event ordering is preserved.
func serializeToMessage(n EventNotification) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(n.EventID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(n.Category)},
		},
	}, nil
}

var _ Publisher = (*KafkaPublisher)(nil)
