package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Kind - тип события конвейера
type Kind string

const (
	// KindFailure - запуск провалил все попытки
	KindFailure Kind = "failure"
	// KindRetry - запуск будет повторен
	KindRetry Kind = "retry"
	// KindSuccess - запуск завершился успешно
	KindSuccess Kind = "success"
)

// Event - событие запуска конвейера, доставляемое получателям
type Event struct {
	Pipeline  string        `json:"pipeline"`
	Owner     string        `json:"owner,omitempty"`
	Kind      Kind          `json:"kind"`
	Attempt   int           `json:"attempt,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Subject - тема уведомления (email subject, ключ сообщения)
func (e Event) Subject() string {
	switch e.Kind {
	case KindFailure:
		return fmt.Sprintf("[%s] run FAILED", e.Pipeline)
	case KindRetry:
		return fmt.Sprintf("[%s] run failed, retrying (attempt %d)", e.Pipeline, e.Attempt)
	case KindSuccess:
		return fmt.Sprintf("[%s] run succeeded", e.Pipeline)
	default:
		return fmt.Sprintf("[%s] %s", e.Pipeline, e.Kind)
	}
}

// Body - человекочитаемое тело уведомления
func (e Event) Body() string {
	body := fmt.Sprintf("Pipeline: %s\nStatus: %s\nTime: %s\n",
		e.Pipeline, e.Kind, e.Timestamp.Format(time.RFC3339))
	if e.Owner != "" {
		body += fmt.Sprintf("Owner: %s\n", e.Owner)
	}
	if e.Attempt > 0 {
		body += fmt.Sprintf("Attempt: %d\n", e.Attempt)
	}
	if e.Duration > 0 {
		body += fmt.Sprintf("Duration: %s\n", e.Duration)
	}
	if e.Error != "" {
		body += fmt.Sprintf("Error: %s\n", e.Error)
	}
	return body
}

// ToJSON - событие как JSON (для broker каналов)
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier доставляет события запуска получателям
type Notifier interface {
	// Notify отправляет событие. Ошибка доставки не должна
	// прерывать конвейер - ее логирует вызывающая сторона.
	Notify(ctx context.Context, event Event) error

	// Channel возвращает тип канала (email, rabbitmq, kafka)
	Channel() string
}

// Config содержит конфигурацию каналов уведомлений
type Config struct {
	// OnFailure - уведомлять о провале всех попыток
	OnFailure bool `yaml:"on_failure"`
	// OnRetry - уведомлять о каждом повторе
	OnRetry bool `yaml:"on_retry"`
	// OnSuccess - уведомлять об успешном запуске
	OnSuccess bool `yaml:"on_success"`

	Email    *EmailConfig    `yaml:"email,omitempty"`
	RabbitMQ *RabbitMQConfig `yaml:"rabbitmq,omitempty"`
	Kafka    *KafkaConfig    `yaml:"kafka,omitempty"`
}

// Validate проверяет конфигурацию каналов
func (c *Config) Validate() error {
	if c.Email != nil {
		if err := c.Email.Validate(); err != nil {
			return fmt.Errorf("email: %w", err)
		}
	}
	if c.RabbitMQ != nil {
		if err := c.RabbitMQ.Validate(); err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
	}
	if c.Kafka != nil {
		if err := c.Kafka.Validate(); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	return nil
}

// Wants проверяет, настроена ли доставка событий данного типа
func (c *Config) Wants(kind Kind) bool {
	switch kind {
	case KindFailure:
		return c.OnFailure
	case KindRetry:
		return c.OnRetry
	case KindSuccess:
		return c.OnSuccess
	default:
		return false
	}
}

// New создает все сконфигурированные каналы
func New(cfg Config) ([]Notifier, error) {
	var notifiers []Notifier

	if cfg.Email != nil {
		notifiers = append(notifiers, NewEmailNotifier(*cfg.Email))
	}
	if cfg.RabbitMQ != nil {
		notifiers = append(notifiers, NewRabbitMQNotifier(*cfg.RabbitMQ))
	}
	if cfg.Kafka != nil {
		notifiers = append(notifiers, NewKafkaNotifier(*cfg.Kafka))
	}

	return notifiers, nil
}

// Dispatcher рассылает событие во все каналы. Ошибки доставки
// собираются, но не прерывают рассылку в остальные каналы.
type Dispatcher struct {
	config    Config
	notifiers []Notifier
	onError   func(channel string, err error)
}

// NewDispatcher создает dispatcher поверх сконфигурированных каналов
func NewDispatcher(cfg Config, onError func(channel string, err error)) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	notifiers, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		config:    cfg,
		notifiers: notifiers,
		onError:   onError,
	}, nil
}

// Dispatch рассылает событие, если его тип включен в конфигурации
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if !d.config.Wants(event.Kind) {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, n := range d.notifiers {
		if err := n.Notify(ctx, event); err != nil && d.onError != nil {
			d.onError(n.Channel(), err)
		}
	}
}

// ChannelCount возвращает число активных каналов
func (d *Dispatcher) ChannelCount() int {
	return len(d.notifiers)
}
