package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"credverify/internal/platform/kafka/producer"
)

// ErrListUnsupported is returned by KafkaSink.ListBySubject; the stream is write-only.
var ErrListUnsupported = errors.New("audit stream does not support reads")

// MessageProducer is satisfied by *producer.Producer.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink streams audit events to a topic, keyed by subject so one
// subject's events stay ordered within a partition.
type KafkaSink struct {
	producer MessageProducer
	topic    string
}

func NewKafkaSink(p MessageProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (k *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return k.producer.Produce(ctx, &producer.Message{
		Topic:   k.topic,
		Key:     []byte(event.Subject),
		Value:   payload,
		Headers: map[string]string{"action": event.Action},
	})
}

func (k *KafkaSink) ListBySubject(context.Context, string) ([]Event, error) {
	return nil, ErrListUnsupported
}
