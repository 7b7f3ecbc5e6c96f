package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type message struct {
	Origin string `json:"origin"`
	Event
}

// NewRelay declares the fanout exchange invalidations are published to. Every relay gets its own
// origin so it can skip the messages it published itself.
func NewRelay(logger *slog.Logger, conn *amqp.Connection, exchange string) (*Relay, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open AMQP channel: %v", err)
	}

	err = channel.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange %q: %v", exchange, err)
	}

	return &Relay{
		logger:   logger,
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		origin:   uuid.NewString(),
	}, nil
}

type Relay struct {
	logger   *slog.Logger
	conn     *amqp.Connection
	exchange string
	origin   string

	mu      sync.Mutex
	channel *amqp.Channel
}

func (r *Relay) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(message{Origin: r.origin, Event: event})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.channel.PublishWithContext(ctx, r.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish invalidation to %q: %v", r.exchange, err)
	}
	return nil
}

// Consume binds an exclusive queue to the exchange and calls handle for every event published by
// other relays. It blocks until ctx is done or the channel is closed, the latter being an error.
func (r *Relay) Consume(ctx context.Context, handle func(context.Context, Event)) error {
	channel, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open AMQP channel: %v", err)
	}
	defer channel.Close()

	queue, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare invalidation queue: %v", err)
	}
	if err := channel.QueueBind(queue.Name, "", r.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q to %q: %v", queue.Name, r.exchange, err)
	}

	deliveries, err := channel.ConsumeWithContext(ctx, queue.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %q: %v", queue.Name, err)
	}

	for d := range deliveries {
		var m message
		if err := json.Unmarshal(d.Body, &m); err != nil || m.WeddingID == 0 {
			r.logger.ErrorContext(ctx, "Dropping invalid invalidation message", "body", string(d.Body), "error", err)
			if err := d.Nack(false, false); err != nil {
				r.logger.ErrorContext(ctx, "Error negatively acknowledging invalidation message", "error", err)
			}
			continue
		}

		if m.Origin != r.origin {
			handle(ctx, m.Event)
		}

		if err := d.Ack(false); err != nil {
			r.logger.ErrorContext(ctx, "Error acknowledging invalidation message", "error", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("invalidation deliveries stopped, the AMQP channel was closed")
}

func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel.Close()
}
