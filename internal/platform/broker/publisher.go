package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"mesaOps/internal/shared/events"
)

// MessageWriter is the part of kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events to a single topic keyed by resource id, so the events of
// one resource stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		AllowAutoTopicCreation: true,
	}}
}

type envelope struct {
	events.Event
	Topic string `json:"topic"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt events.Event) error {
	value, err := json.Marshal(envelope{Event: evt, Topic: evt.Topic()})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.Topic(), err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(evt.ResourceID), Value: value}); err != nil {
		return fmt.Errorf("publish event %s: %w", evt.Topic(), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

var _ events.Publisher = (*KafkaPublisher)(nil)
