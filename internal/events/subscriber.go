package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Handler processes one decoded event. Returning an error nacks the message
// so the broker redelivers it.
type Handler func(ctx context.Context, event *Event) error

// KafkaEventConsumer consumes the notification topic and dispatches events to
// a handler.
type KafkaEventConsumer struct {
	subscriber message.Subscriber
	topic      string
	logger     *slog.Logger
}

func NewKafkaEventConsumer(brokers []string, topic, consumerGroup string, logger *slog.Logger) (*KafkaEventConsumer, error) {
	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: consumerGroup,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &KafkaEventConsumer{
		subscriber: subscriber,
		topic:      topic,
		logger:     logger,
	}, nil
}

// Run blocks consuming messages until the context is canceled.
func (c *KafkaEventConsumer) Run(ctx context.Context, handler Handler) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, err)
	}

	for msg := range messages {
		var event Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			c.logger.Error("dropping undecodable event", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		if err := handler(ctx, &event); err != nil {
			c.logger.Error("event handler failed", "event_id", event.ID, "event_type", event.Type, "error", err)
			msg.Nack()
			continue
		}

		msg.Ack()
	}

	return nil
}

func (c *KafkaEventConsumer) Close() error {
	return c.subscriber.Close()
}
