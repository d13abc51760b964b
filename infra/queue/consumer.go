package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Broker   string
	Topic    string
	GroupID  string
	Username string
	Password string
}

// MessageReader is the part of *kafka.Reader the consumer loop uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConsumer struct {
	Reader      MessageReader
	Handler     interfaces.ConsumerHandler
	ServiceName string
}

func NewKafkaConsumer(cfg ConsumerConfig, serviceName string, handler interfaces.ConsumerHandler) *KafkaConsumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.Username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Broker},
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, //10MB
		Dialer:   dialer,
	})

	return &KafkaConsumer{
		Reader:      reader,
		Handler:     handler,
		ServiceName: serviceName,
	}
}

// Listen fetches until ctx is cancelled. A message is committed after the
// handler returns, also on handler errors, so one bad event cannot wedge
// the partition.
func (kc *KafkaConsumer) Listen(ctx context.Context) error {
	defer func() { _ = kc.Reader.Close() }()

	for {
		msg, err := kc.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("read message failed", err, zap.String("service", kc.ServiceName))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		logger.Debug("received message",
			zap.String("service", kc.ServiceName),
			zap.ByteString("key", msg.Key),
			zap.Int64("offset", msg.Offset),
		)

		if err := kc.Handler.HandleMessage(ctx, msg.Value); err != nil {
			logger.Error("handler failed", err, zap.String("service", kc.ServiceName), zap.Int64("offset", msg.Offset))
		}

		if err := kc.Reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Error("commit failed", err, zap.String("service", kc.ServiceName))
		}
	}
}
