package repository

import (
	"context"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
	pkgkafka "Conflux/pkg/kafka"
)

// KafkaSignalPublisher pushes executed signals to a Kafka topic keyed by
// symbol so downstream consumers see one instrument's signals in order.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Symbol), s)
}

func (p *KafkaSignalPublisher) Close() error { return p.producer.Close() }

var _ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
