package infra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// topicPrefix namespaces every topic this service publishes.
const topicPrefix = "clubstake"

// Topic builds the destination topic for an aggregate's event type,
// for example clubstake.bet.bet_placed.
func Topic(aggregateType, eventType string) string {
	return topicPrefix + "." + aggregateType + "." + eventType
}

// KafkaProducer publishes outbox events. With Kafka disabled in the config it
// degrades to a no-op so the poller can run in environments without a broker.
type KafkaProducer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaProducer creates a producer from the config.
func NewKafkaProducer(cfg *Config, logger *slog.Logger) *KafkaProducer {
	if !cfg.KafkaEnabled || cfg.KafkaBrokers == "" {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{logger: logger}
	}

	// Hash balancing pins a key to one partition, so events for a single
	// aggregate stay ordered.
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("kafka producer initialized", "brokers", cfg.KafkaBrokers)
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish sends one event. The event id travels as a message header so
// consumers can deduplicate the at-least-once delivery. No-op when disabled.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte, eventID string) error {
	if p.writer == nil {
		return nil
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: []kafka.Header{{Key: "event_id", Value: []byte(eventID)}},
	})
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
