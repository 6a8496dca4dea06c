package repository

import (
	"context"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	pkgkafka "CandlePull/pkg/kafka"
)

// KafkaBarPublisher fans finalised 1m bars out to a Kafka topic for external
// consumers. Entirely optional; the embedded store remains the source of
// truth.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.BarPublisher = (*KafkaBarPublisher)(nil)

func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) *KafkaBarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

// PublishBar sends one bar keyed by symbol, preserving per-symbol ordering.
func (p *KafkaBarPublisher) PublishBar(ctx context.Context, b *models.Bar) error {
	return p.producer.Publish(ctx, p.topic, []byte(b.Symbol), b)
}

func (p *KafkaBarPublisher) Close() error {
	return p.producer.Close()
}
