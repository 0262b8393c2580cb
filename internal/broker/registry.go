package broker

import (
	"context"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one decoded message body. A nil return acknowledges
// the message; an error rejects it without requeue, routing it to the
// dead-letter exchange.
type HandlerFunc func(ctx context.Context, body []byte) error

// BindingStatus is a point-in-time snapshot of one consumer binding,
// exposed through the health endpoint.
type BindingStatus struct {
	Queue      string `json:"queue"`
	RoutingKey string `json:"routing_key"`
	Processed  uint64 `json:"processed"`
	Failed     uint64 `json:"failed"`
}

type binding struct {
	queue      string
	routingKey string
	processed  uint64
	failed     uint64
}

// ConsumerRegistry binds one logical consumer per routing key and runs an
// independent consumption loop for each. It is constructed once at startup
// and passed to whatever exposes health status; there is no package-level
// registry state.
type ConsumerRegistry struct {
	broker *Broker

	mu       sync.Mutex
	bindings map[string]*binding
}

// NewConsumerRegistry creates a registry bound to the given broker.
func NewConsumerRegistry(b *Broker) *ConsumerRegistry {
	return &ConsumerRegistry{
		broker:   b,
		bindings: make(map[string]*binding),
	}
}

// Bind declares a durable queue for the routing key, binds it to the event
// exchange and starts a consumption loop. Within one loop messages are
// processed one at a time in delivery order; no ordering exists across loops.
func (r *ConsumerRegistry) Bind(ctx context.Context, routingKey string, handler HandlerFunc) error {
	ch, err := r.broker.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel for %q: %w", routingKey, err)
	}

	queueName := "notifications." + routingKey
	args := amqp.Table{"x-dead-letter-exchange": r.broker.DeadLetterExchange()}
	queue, err := ch.QueueDeclare(queueName, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	if err := ch.QueueBind(queue.Name, routingKey, r.broker.Exchange(), false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q to %q: %w", queueName, routingKey, err)
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consumer for %q: %w", queueName, err)
	}

	bnd := &binding{queue: queue.Name, routingKey: routingKey}
	r.mu.Lock()
	r.bindings[routingKey] = bnd
	r.mu.Unlock()

	go r.consumeLoop(ctx, ch, bnd, deliveries, handler)
	log.Printf("broker: consumer bound, queue=%s key=%s", queue.Name, routingKey)
	return nil
}

func (r *ConsumerRegistry) consumeLoop(ctx context.Context, ch *amqp.Channel, bnd *binding, deliveries <-chan amqp.Delivery, handler HandlerFunc) {
	defer ch.Close()
	for d := range deliveries {
		if err := handler(ctx, d.Body); err != nil {
			log.Printf("broker: handler failed, key=%s: %v", bnd.routingKey, err)
			r.record(bnd, false)
			// Reject without requeue; the message moves to the DLX.
			if nackErr := d.Nack(false, false); nackErr != nil {
				log.Printf("broker: nack failed, key=%s: %v", bnd.routingKey, nackErr)
			}
			continue
		}
		r.record(bnd, true)
		if ackErr := d.Ack(false); ackErr != nil {
			log.Printf("broker: ack failed, key=%s: %v", bnd.routingKey, ackErr)
		}
	}
	log.Printf("broker: consumer loop stopped, key=%s", bnd.routingKey)
}

func (r *ConsumerRegistry) record(bnd *binding, ok bool) {
	r.mu.Lock()
	if ok {
		bnd.processed++
	} else {
		bnd.failed++
	}
	r.mu.Unlock()
}

// Active returns a snapshot of all bindings and their counters.
func (r *ConsumerRegistry) Active() []BindingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]BindingStatus, 0, len(r.bindings))
	for _, bnd := range r.bindings {
		statuses = append(statuses, BindingStatus{
			Queue:      bnd.queue,
			RoutingKey: bnd.routingKey,
			Processed:  bnd.processed,
			Failed:     bnd.failed,
		})
	}
	return statuses
}
