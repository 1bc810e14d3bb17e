package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks -exclude_interfaces=writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hostel/config"
	"hostel/infras/otel"
	"hostel/shared/constant"
	"hostel/shared/timezone"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// Event types published on the hostel topic.
const (
	EventBookingCreated  = "booking.created"
	EventBookingShifted  = "booking.shifted"
	EventBookingDeleted  = "booking.deleted"
	EventPaymentRecorded = "payment.recorded"
)

const writeTimeout = 10 * time.Second

var ErrPublisherClosed = errors.New("kafka publisher closed")

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	jsonValue, err := json.Marshal(m.Value)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal message value to JSON")

		return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	return kafkaGo.Message{
		Key:   []byte(m.Key),
		Value: jsonValue,
	}, nil
}

// DecodeEvent reads an Event envelope back, leaving the payload as raw JSON.
func DecodeEvent(msg kafkaGo.Message) (Event, json.RawMessage, error) {
	var envelope struct {
		Event
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return Event{}, nil, fmt.Errorf("failed to unmarshal kafka event: %w", err)
	}

	return envelope.Event, envelope.Payload, nil
}

type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) (err error)
	// PublishAsync sends in the background and logs failures. Close waits
	// for every event handed over before it returns.
	PublishAsync(ctx context.Context, eventType, key string, payload any)
	Close() error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer writer
	topic  string
	otel   otel.Otel

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// New returns a publisher for KAFKA_TOPIC, or one that drops every event when
// KAFKA_ENABLE is off.
func New(config *config.Config, ot otel.Otel) Publisher {
	if !config.Kafka.Enable || len(config.Kafka.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, domain events are not published")

		return noopPublisher{}
	}

	transport := &kafkaGo.Transport{}

	if config.Kafka.SASL.Username != "" {
		transport.SASL = plain.Mechanism{
			Username: config.Kafka.SASL.Username,
			Password: config.Kafka.SASL.Password,
		}
	}

	log.Info().Strs("brokers", config.Kafka.Brokers).Str("topic", config.Kafka.Topic).Msg("Kafka publisher initialized")

	return NewPublisher(&kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(config.Kafka.Brokers...),
		Topic:                  config.Kafka.Topic,
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		WriteTimeout:           writeTimeout,
		Completion: func(messages []kafkaGo.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(messages)).Msg("Failed to deliver kafka messages")
			}
		},
	}, config.Kafka.Topic, ot)
}

func NewPublisher(w writer, topic string, ot otel.Otel) Publisher {
	return &kafkaPublisher{writer: w, topic: topic, otel: ot}
}

func (k *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	if !k.acquire() {
		return ErrPublisherClosed
	}
	defer k.inflight.Done()

	return k.publish(ctx, eventType, key, payload)
}

func (k *kafkaPublisher) PublishAsync(ctx context.Context, eventType, key string, payload any) {
	if !k.acquire() {
		log.Warn().Str("event", eventType).Str("key", key).Msg("Kafka publisher closed, event dropped")

		return
	}

	go func() {
		defer k.inflight.Done()

		if err := k.publish(context.WithoutCancel(ctx), eventType, key, payload); err != nil {
			log.Error().Err(err).Str("event", eventType).Str("key", key).Msg("Failed to publish event")
		}
	}()
}

// acquire registers one in-flight send unless the publisher is closed.
func (k *kafkaPublisher) acquire() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return false
	}

	k.inflight.Add(1)

	return true
}

func (k *kafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) (err error) {
	ctx, scope := k.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"event.type": eventType,
		"event.key":  key,
	})

	message := Message{
		Key: key,
		Value: Event{
			Type:       eventType,
			OccurredAt: timezone.Now(),
			Payload:    payload,
		},
	}

	msg, err := message.ToKafkaMessage()
	if err != nil {
		return err
	}

	if err = k.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Str("topic", k.topic).Str("event", eventType).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", k.topic).Str("event", eventType).Str("key", key).Msg("Event published")

	return nil
}

// Close refuses new events, waits for the in-flight ones and closes the writer.
func (k *kafkaPublisher) Close() error {
	k.mu.Lock()
	k.closed = true
	k.mu.Unlock()

	k.inflight.Wait()

	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}

	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _, _ string, _ any) error { return nil }
func (noopPublisher) PublishAsync(_ context.Context, _, _ string, _ any)  {}
func (noopPublisher) Close() error                                        { return nil }
