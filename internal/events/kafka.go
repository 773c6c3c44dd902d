package events

import (
	"context"

	"github.com/eventcard/terminal/internal/mykafka"
)

type producer interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// KafkaPublisher keys messages by card number so one card's events stay
// ordered within a partition.
type KafkaPublisher struct {
	producer producer
	topic    string
}

func NewKafkaPublisher(p *mykafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (k *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	return k.producer.PublishEvent(ctx, k.topic, e.CardNumber, e)
}
