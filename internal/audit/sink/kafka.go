package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

// writeTimeout bounds a single Kafka write so a slow broker does not hold the caller.
const writeTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer used by Kafka.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON to a topic, keyed by subject id.
type Kafka struct {
	writer messageWriter
	topic  string
}

// NewKafka creates a Kafka sink that writes security events to the given topic.
// Returns nil when brokers or topic is empty. Call Close when shutting down.
func NewKafka(brokers []string, topic string) *Kafka {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Kafka{writer: writer, topic: topic}
}

func (k *Kafka) Name() string { return "kafka" }

// Write serializes the event as JSON and writes it to the topic.
func (k *Kafka) Write(ctx context.Context, e *domain.SecurityEvent) error {
	if k == nil || k.writer == nil || e == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	msg := kafka.Message{
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if e.SubjectID != "" {
		msg.Key = []byte(e.SubjectID)
	}
	return k.writer.WriteMessages(writeCtx, msg)
}

// Close closes the Kafka writer. Safe to call on a nil sink.
func (k *Kafka) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
