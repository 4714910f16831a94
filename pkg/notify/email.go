package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailConfig - параметры SMTP доставки.
// Повторяет alerting-контракт оригинального планировщика:
// письмо владельцу при провале и при повторе.
type EmailConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
}

// Validate проверяет конфигурацию
func (c *EmailConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.From == "" {
		return fmt.Errorf("from address is required")
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}

// EmailNotifier отправляет события по SMTP
type EmailNotifier struct {
	config EmailConfig

	// send подменяется в тестах
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier создает email notifier
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	return &EmailNotifier{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// Channel возвращает тип канала
func (n *EmailNotifier) Channel() string {
	return "email"
}

// Notify отправляет письмо всем получателям
func (n *EmailNotifier) Notify(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := n.buildMessage(event)
	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	if err := n.send(addr, auth, n.config.From, n.config.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage собирает RFC 5322 сообщение
func (n *EmailNotifier) buildMessage(event Event) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.config.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", event.Subject())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(event.Body())
	return []byte(b.String())
}
