// Command mailer consumes password reset events from Kafka and delivers
// them over SMTP. The API publishes those events when EMAIL_TRANSPORT=kafka.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redmonkez12/favorite-movies-api/internal/config"
	"github.com/redmonkez12/favorite-movies-api/internal/email"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/queue"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Mailer error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("mailer starting",
		"brokers", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.Topic,
		"group_id", cfg.Kafka.GroupID,
	)

	mailer, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	consumer := queue.NewConsumer(cfg.Kafka, mailer, logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("failed to close consumer", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mailer listening for events")
	if err := consumer.Run(ctx); err != nil {
		return err
	}

	logger.Info("mailer stopped")
	return nil
}
