package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig - параметры публикации событий в Kafka topic
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Validate проверяет конфигурацию
func (c *KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("at least one broker address is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// KafkaNotifier публикует JSON события в topic
type KafkaNotifier struct {
	config KafkaConfig
}

// NewKafkaNotifier создает Kafka notifier
func NewKafkaNotifier(cfg KafkaConfig) *KafkaNotifier {
	return &KafkaNotifier{config: cfg}
}

// Channel возвращает тип канала
func (n *KafkaNotifier) Channel() string {
	return "kafka"
}

// Notify публикует событие в topic
func (n *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(n.config.Brokers...),
		Topic:        n.config.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}
	defer writer.Close()

	msg := kafka.Message{
		Key:   []byte(event.Pipeline),
		Value: payload,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-kind", Value: []byte(event.Kind)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to Kafka: %w", err)
	}

	return nil
}
