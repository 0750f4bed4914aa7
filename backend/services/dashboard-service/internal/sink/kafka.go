package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"evdash/backend/services/dashboard-service/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes every tick to a topic keyed by tick id.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a synchronous producer for the topic.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka sink: no brokers")
	}
	if topic == "" {
		return nil, errors.New("kafka sink: empty topic")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}, nil
}

// Name identifies the sink in logs and metrics.
func (s *KafkaSink) Name() string { return "kafka" }

// Publish sends the tick as one message.
func (s *KafkaSink) Publish(ctx context.Context, tick *models.Tick) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("kafka sink: encode tick: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(tick.ID),
		Value: data,
		Time:  tick.GeneratedAt,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka sink: write message: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
