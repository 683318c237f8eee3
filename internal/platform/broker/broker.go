// Package broker moves notification payloads over a durable RabbitMQ queue.
package broker

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	timeout time.Duration
}

// Dial connects and declares queue as a durable quorum queue, which stamps
// x-delivery-count on redeliveries.
func Dial(url, queue string, publishTimeout time.Duration) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{"x-queue-type": "quorum"}); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if publishTimeout <= 0 {
		publishTimeout = 10 * time.Second
	}
	return &Client{conn: conn, ch: ch, queue: queue, timeout: publishTimeout}, nil
}

func (c *Client) Publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.ch.PublishWithContext(ctx, "", c.queue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume starts manual-ack delivery from the queue.
func (c *Client) Consume() (<-chan amqp.Delivery, error) {
	return c.ch.Consume(c.queue, "", false, false, false, false, nil)
}

func (c *Client) Close() error {
	if err := c.ch.Close(); err != nil {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// Discard drops every message; it stands in when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, []byte) error { return nil }
