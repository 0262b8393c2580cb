package broker

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker wraps the AMQP connection and owns the exchange topology: a topic
// exchange for domain events and a dead-letter exchange where rejected
// messages land. Messages are never requeued after a handler failure.
type Broker struct {
	conn     *amqp.Connection
	exchange string
}

// Connect dials the broker and declares the exchange topology.
func Connect(url, exchange string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	b := &Broker{conn: conn, exchange: exchange}
	if err := b.declareTopology(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("broker: connected, exchange %q declared", exchange)
	return b, nil
}

func (b *Broker) declareTopology() error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", b.exchange, err)
	}

	dlx := b.DeadLetterExchange()
	if err := ch.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange %q: %w", dlx, err)
	}

	// A single queue collects everything the consumers reject.
	dlq := dlx + ".queue"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue %q: %w", dlq, err)
	}
	if err := ch.QueueBind(dlq, "#", dlx, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}
	return nil
}

// Exchange returns the domain event exchange name.
func (b *Broker) Exchange() string {
	return b.exchange
}

// DeadLetterExchange returns the name of the dead-letter exchange.
func (b *Broker) DeadLetterExchange() string {
	return b.exchange + ".dlx"
}

// Channel opens a fresh channel. Channels are not safe for concurrent use,
// so every consumer loop and the publisher get their own.
func (b *Broker) Channel() (*amqp.Channel, error) {
	return b.conn.Channel()
}

// Close shuts down the underlying connection and all channels on it.
func (b *Broker) Close() error {
	return b.conn.Close()
}
