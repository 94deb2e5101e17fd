package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// InboundEvent is one event read off the events topic. Payload stays raw
// until the handler knows the concrete type.
type InboundEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// EventHandler processes consumed events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *InboundEvent) error
}

// ConfluentConsumer reads events from Kafka and hands them to the handler.
type ConfluentConsumer struct {
	consumer *kafka.Consumer
	topic    string
	handler  EventHandler
	doneCh   chan struct{}
}

// NewConfluentConsumer creates a new Kafka consumer for worker events.
func NewConfluentConsumer(brokers, topic, groupID string, handler EventHandler) (*ConfluentConsumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &ConfluentConsumer{
		consumer: c,
		topic:    topic,
		handler:  handler,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins consuming messages from Kafka.
func (cc *ConfluentConsumer) Start(ctx context.Context) error {
	if err := cc.consumer.Subscribe(cc.topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", cc.topic, err)
	}

	l := log.L()
	l.Info().Str("topic", cc.topic).Msg("kafka consumer started")

	go cc.consumeLoop(ctx)

	return nil
}

func (cc *ConfluentConsumer) consumeLoop(ctx context.Context) {
	defer close(cc.doneCh)

	for {
		select {
		case <-ctx.Done():
			l := log.L()
			l.Info().Msg("kafka consumer shutting down")
			return
		default:
			msg, err := cc.consumer.ReadMessage(100 * time.Millisecond)
			if err != nil {
				// Timeout is expected, continue
				if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.Code() == kafka.ErrTimedOut {
					continue
				}
				l := log.L()
				l.Error().Err(err).Msg("kafka consumer error")
				continue
			}

			cc.processMessage(ctx, msg)
		}
	}
}

func (cc *ConfluentConsumer) processMessage(ctx context.Context, msg *kafka.Message) {
	l := log.L()

	var event InboundEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		l.Error().Err(err).Msg("failed to unmarshal event")
		return
	}

	l.Debug().Str(log.FieldEvent, event.Type).Str("key", event.Key).Msg("event received")

	if err := cc.handler.HandleEvent(ctx, &event); err != nil {
		l.Error().Err(err).Str(log.FieldEvent, event.Type).Msg("failed to handle event")
	}
}

// Close stops the consumer and releases resources.
func (cc *ConfluentConsumer) Close() error {
	if err := cc.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	<-cc.doneCh
	return nil
}
