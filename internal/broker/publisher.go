package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher publishes derived events back onto the domain exchange.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Publisher implements EventPublisher on a dedicated AMQP channel.
type Publisher struct {
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
	service  string
}

// NewPublisher opens a publishing channel on the broker.
func NewPublisher(b *Broker, service string) (*Publisher, error) {
	ch, err := b.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: b.Exchange(), service: service}, nil
}

// Publish marshals payload and publishes it under routingKey, wrapped in the
// standard event envelope. The channel is serialized with a mutex because
// AMQP channels are not safe for concurrent use.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", routingKey, err)
	}

	envelope, err := json.Marshal(map[string]interface{}{
		"type":      routingKey,
		"data":      json.RawMessage(data),
		"timestamp": time.Now().UTC(),
		"service":   p.service,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now(),
		Body:         envelope,
	})
}

// Close releases the publishing channel.
func (p *Publisher) Close() error {
	return p.channel.Close()
}
