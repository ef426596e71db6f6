package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/redmonkez12/favorite-movies-api/internal/config"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
)

// Mailer delivers the mail an event asks for.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const handleTimeout = 30 * time.Second

// Consumer reads password reset events and hands them to a Mailer. Every
// message is committed once handled, failed deliveries included; they are
// logged and not retried.
type Consumer struct {
	reader messageReader
	mailer Mailer
	logger *logging.Logger
}

func NewConsumer(cfg config.KafkaConfig, mailer Mailer, logger *logging.Logger) *Consumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.SASLUser != "" {
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.SASLUser,
			Password: cfg.SASLPassword,
		}
		dialer.TLS = &tls.Config{}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return &Consumer{
		reader: reader,
		mailer: mailer,
		logger: logger,
	}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation and
// the error otherwise.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	logger := c.logger.WithFields(map[string]any{
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PasswordResetEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Error("dropping malformed event", "error", err.Error())
		return
	}
	if event.Type != EventPasswordReset {
		logger.Warn("dropping event of unknown type", "type", event.Type)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := c.mailer.SendPasswordReset(ctx, event.Email, event.ResetURL); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("failed to send password reset email", "email", event.Email, "error", err.Error())
		return
	}
	logger.Info("password reset email delivered", "email", event.Email)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
