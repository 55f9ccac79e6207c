package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ordersetu-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderAccepted      Type = "order.accepted"
	OrderItemUpdated   Type = "order.item_updated"
	OrderItemDelivered Type = "order.item_delivered"
	OrderDeleted       Type = "order.deleted"
	BillCreated        Type = "bill.created"
	BillAccepted       Type = "bill.accepted"
	BillRejected       Type = "bill.rejected"
)

// Event is one state transition written to the domain event stream.
type Event struct {
	Type         Type      `json:"type"`
	RestaurantID string    `json:"restaurantId"`
	OrderID      string    `json:"confirmedOrderId,omitempty"`
	BillID       string    `json:"billId,omitempty"`
	Payload      any       `json:"payload,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Publisher is best effort. Callers log a failure and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaWriter builds an asynchronous writer: WriteMessages returns as
// soon as the message is queued and delivery errors are only logged.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.L().Warn("kafka delivery failed",
					zap.Int("messages", len(messages)),
					zap.Error(err),
				)
			}
		},
	}
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Publish keys messages by order id so every transition of one order lands
// on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	key := event.OrderID
	if key == "" {
		key = event.BillID
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// New returns a Kafka publisher for brokers, or a NoopPublisher when the
// list is empty.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(NewKafkaWriter(brokers, topic))
}

// Emit publishes and logs failures.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish domain event",
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
