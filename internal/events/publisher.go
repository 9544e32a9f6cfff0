package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	CatalogTopic  = "catalog-events"
	CheckoutTopic = "checkout-outbox"
)

// Publisher writes catalog events to Kafka, keyed by entity ID so that the
// events of one entity stay ordered.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  CatalogTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, event domain.CatalogEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal catalog event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EntityID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write catalog event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.CatalogEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
