package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/redmonkez12/favorite-movies-api/internal/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes password reset events. It satisfies the auth mailer
// so the API can hand mail off to Kafka instead of SMTP.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	transport := &kafka.Transport{}
	if cfg.SASLUser != "" {
		transport.SASL = plain.Mechanism{
			Username: cfg.SASLUser,
			Password: cfg.SASLPassword,
		}
		transport.TLS = &tls.Config{}
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// SendPasswordReset publishes the event keyed by the lowercased address, so
// requests for one account stay ordered on a partition.
func (p *Producer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	event := PasswordResetEvent{
		Type:        EventPasswordReset,
		Email:       toEmail,
		ResetURL:    resetURL,
		RequestedAt: p.now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strings.ToLower(toEmail)),
		Value: value,
		Time:  event.RequestedAt,
	})
	if err != nil {
		return fmt.Errorf("publish password reset event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
