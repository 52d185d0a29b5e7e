package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/nikolayk812/sweetshop/internal/port"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const (
	EventCheckoutSucceeded = "checkout.succeeded"
	EventCheckoutFailed    = "checkout.failed"
)

const maxWriteAttempts = 2

// MessageWriter is the part of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes checkout outcomes keyed by user, so one user's
// events stay ordered within a partition. Writes go through a circuit
// breaker that stops calling the broker after repeated failures.
type KafkaNotifier struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

var _ port.Notifier = (*KafkaNotifier)(nil)

// NewKafkaWriter returns a writer whose single synchronous write gives up
// within roughly maxAttempts * timeout.
func NewKafkaWriter(brokers []string, topic string, timeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		MaxAttempts:            maxWriteAttempts,
		WriteTimeout:           timeout,
		ReadTimeout:            timeout,
		BatchTimeout:           10 * time.Millisecond,
		WriteBackoffMax:        timeout / 4,
	}
}

func NewKafkaNotifier(writer MessageWriter, logger *slog.Logger) *KafkaNotifier {
	logger = logger.With("component", "notify")

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-checkout-events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &KafkaNotifier{
		writer:  writer,
		breaker: breaker,
		logger:  logger,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, outcome domain.CheckoutOutcome) error {
	msg, err := toMessage(outcome)
	if err != nil {
		return fmt.Errorf("toMessage: %w", err)
	}

	_, err = n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

func toMessage(outcome domain.CheckoutOutcome) (kafka.Message, error) {
	event := newCheckoutEvent(outcome)

	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return kafka.Message{
		Key:   []byte(outcome.UserID),
		Value: payload,
		Time:  outcome.At,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}
