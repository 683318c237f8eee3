// Package mailer drains the notification queue into SMTP.
package mailer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"crewshift/internal/domain/notifications"
)

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = 5 * time.Second
)

type Worker struct {
	mailer      notifications.Mailer
	log         zerolog.Logger
	maxAttempts int
	retryDelay  time.Duration
}

type Option func(*Worker)

// WithRetry caps send attempts per message and sets the pause before a
// failed message goes back on the queue.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(w *Worker) {
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
		if delay >= 0 {
			w.retryDelay = delay
		}
	}
}

func NewWorker(mailer notifications.Mailer, log zerolog.Logger, opts ...Option) *Worker {
	w := &Worker{mailer: mailer, log: log, maxAttempts: defaultMaxAttempts, retryDelay: defaultRetryDelay}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes deliveries until ctx is cancelled or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.settle(d, w.retry(ctx, d, w.handle(ctx, d.Body)))
		}
	}
}

// retry turns a requeue into a drop once the message has used its attempts,
// and otherwise holds it for the retry delay.
func (w *Worker) retry(ctx context.Context, d amqp.Delivery, result outcome) outcome {
	if result != requeue {
		return result
	}
	attempt := deliveryAttempt(d)
	if attempt >= w.maxAttempts {
		w.log.Error().Int("attempt", attempt).Str("messageId", d.MessageId).Msg("mail retries exhausted, dropping")
		return drop
	}
	if w.retryDelay > 0 {
		timer := time.NewTimer(w.retryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return requeue
}

// deliveryAttempt is 1 for a first delivery. Quorum queues count prior
// deliveries in x-delivery-count; without it a redelivery counts as the second.
func deliveryAttempt(d amqp.Delivery) int {
	switch n := d.Headers["x-delivery-count"].(type) {
	case int64:
		return int(n) + 1
	case int32:
		return int(n) + 1
	case int:
		return n + 1
	}
	if d.Redelivered {
		return 2
	}
	return 1
}

func (w *Worker) settle(d amqp.Delivery, result outcome) {
	var err error
	switch result {
	case ack:
		err = d.Ack(false)
	case drop:
		err = d.Nack(false, false)
	case requeue:
		err = d.Nack(false, true)
	}
	if err != nil {
		w.log.Error().Err(err).Msg("settle delivery failed")
	}
}

// handle decodes and sends one message. Malformed messages are dropped;
// send failures are requeued.
func (w *Worker) handle(ctx context.Context, body []byte) outcome {
	var msg notifications.MailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		w.log.Error().Err(err).Msg("decode mail message failed")
		return drop
	}
	if _, _, err := notifications.Render(msg); err != nil || msg.To == "" {
		w.log.Error().Err(err).Str("type", msg.Type).Msg("unsupported mail message")
		return drop
	}
	if err := notifications.Deliver(ctx, w.mailer, msg); err != nil {
		w.log.Error().Err(err).Str("type", msg.Type).Msg("send mail failed")
		return requeue
	}
	w.log.Info().Str("type", msg.Type).Msg("mail sent")
	return ack
}
