package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"crewshift/internal/app/mailer"
	"crewshift/internal/platform/broker"
	"crewshift/internal/platform/config"
	"crewshift/internal/platform/email"
	"crewshift/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	l := logger.New(logger.Config{Env: cfg.Environment, Level: cfg.LogLevel})
	if cfg.RabbitMQ.URL == "" || cfg.SMTP.Host == "" {
		l.Fatal().Msg("RABBITMQ_URL and SMTP_HOST are required")
	}

	smtp, err := email.New(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("smtp client failed")
	}
	defer func() { _ = smtp.Close() }()

	queue, err := broker.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PublishTimeout)
	if err != nil {
		l.Fatal().Err(err).Msg("rabbitmq connect failed")
	}
	defer func() { _ = queue.Close() }()

	deliveries, err := queue.Consume()
	if err != nil {
		l.Fatal().Err(err).Msg("consume failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("mailer consuming")
	mailer.NewWorker(smtp, l, mailer.WithRetry(cfg.RabbitMQ.MaxAttempts, cfg.RabbitMQ.RetryDelay)).Run(ctx, deliveries)
	l.Info().Msg("mailer stopped")
}
