package notify

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConfig - параметры публикации событий в RabbitMQ очередь
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Queue    string `yaml:"queue"`
	Durable  bool   `yaml:"durable"`
}

// Validate проверяет конфигурацию
func (c *RabbitMQConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Queue == "" {
		return fmt.Errorf("queue is required")
	}
	return nil
}

// RabbitMQNotifier публикует JSON события в очередь.
// Соединение открывается на время доставки: уведомления редкие
// (конец запуска), держать постоянный канал незачем.
type RabbitMQNotifier struct {
	config RabbitMQConfig
}

// NewRabbitMQNotifier создает RabbitMQ notifier
func NewRabbitMQNotifier(cfg RabbitMQConfig) *RabbitMQNotifier {
	if cfg.Port == 0 {
		cfg.Port = 5672
	}
	if cfg.User == "" {
		cfg.User = "guest"
	}
	if cfg.Password == "" {
		cfg.Password = "guest"
	}
	if cfg.VHost == "" {
		cfg.VHost = "/"
	}
	return &RabbitMQNotifier{config: cfg}
}

// Channel возвращает тип канала
func (n *RabbitMQNotifier) Channel() string {
	return "rabbitmq"
}

// Notify публикует событие в очередь
func (n *RabbitMQNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	connStr := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		n.config.User, n.config.Password, n.config.Host, n.config.Port, n.config.VHost)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Идемпотентное объявление очереди; параметры должны совпадать
	// с существующей очередью
	queue, err := ch.QueueDeclare(
		n.config.Queue,
		n.config.Durable,
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		"",         // default exchange
		queue.Name, // routing key = имя очереди
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
