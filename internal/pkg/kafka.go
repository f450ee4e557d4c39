package pkg

import (
	"context"
	"strconv"
	"time"

	"simkas/internal/config"

	"github.com/segmentio/kafka-go"
)

// EventMessage is one outbox row as it goes on the wire.
type EventMessage struct {
	AggregateID uint64
	OutboxID    uint64
	Type        string
	Payload     []byte
	OccurredAt  time.Time
}

// EventProducer writes outbox events to a single topic. Messages are keyed
// by aggregate id and hash-balanced, so one submission's events keep their order.
type EventProducer struct {
	writer *kafka.Writer
}

func NewEventProducer(cfg config.KafkaConfig) *EventProducer {
	return &EventProducer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond, // the relayer writes one event at a time
		WriteTimeout: 10 * time.Second,
	}}
}

func (p *EventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *EventProducer) Publish(ctx context.Context, m EventMessage) error {
	return p.writer.WriteMessages(ctx, eventMessage(m))
}

func eventMessage(m EventMessage) kafka.Message {
	return kafka.Message{
		Key:   []byte(FormatID(m.AggregateID)),
		Value: m.Payload,
		Time:  m.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(m.Type)},
			{Key: "outbox_id", Value: []byte(FormatID(m.OutboxID))},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}
}

func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
