// Package kafka publishes domain events to a Kafka broker. Event delivery is
// best effort; the services log publish failures and carry on.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	portsevents "github.com/splitstack/splitledger/internal/core/ports/events"
)

// Publisher writes JSON-encoded events, one topic per event kind.
type Publisher struct {
	writer *kafkago.Writer
}

var _ portsevents.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher connected to the given broker address.
func NewPublisher(broker string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(broker),
			Balancer:               &kafkago.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish encodes the event as JSON and writes it to the topic.
func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event for topic %s: %w", topic, err)
	}
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

var _ portsevents.Publisher = NopPublisher{}

// Publish discards the event.
func (NopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}
