package infra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer wraps a kafka-go writer for publishing messages.
type KafkaProducer struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	enabled bool
}

// NewKafkaProducer creates a Kafka producer. If brokers is empty or disabled,
// writes are no-ops (events still drain from the outbox, useful in dev).
func NewKafkaProducer(brokers string, enabled bool, logger *slog.Logger) *KafkaProducer {
	if !enabled || brokers == "" {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{enabled: false, logger: logger}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("kafka producer initialized", "brokers", brokers)
	return &KafkaProducer{writer: w, logger: logger, enabled: true}
}

// Publish sends a message to the given topic. No-op if disabled.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if !p.enabled {
		return nil
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
