package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestEvent_Subject(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "failure",
			event: Event{Pipeline: "toll_traffic", Kind: KindFailure},
			want:  "[toll_traffic] run FAILED",
		},
		{
			name:  "retry includes attempt",
			event: Event{Pipeline: "toll_traffic", Kind: KindRetry, Attempt: 1},
			want:  "[toll_traffic] run failed, retrying (attempt 1)",
		},
		{
			name:  "success",
			event: Event{Pipeline: "toll_traffic", Kind: KindSuccess},
			want:  "[toll_traffic] run succeeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Subject(); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmailNotifier_BuildsMessage(t *testing.T) {
	var sentTo []string
	var sentMsg []byte

	n := NewEmailNotifier(EmailConfig{
		Host:       "smtp.example.com",
		From:       "etl@example.com",
		Recipients: []string{"armiaromeel@gmail.com"},
	})
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sentTo = to
		sentMsg = msg
		return nil
	}

	event := Event{
		Pipeline:  "toll_traffic",
		Owner:     "Armia Garas",
		Kind:      KindFailure,
		Error:     "archive unreachable",
		Timestamp: time.Now(),
	}
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(sentTo) != 1 || sentTo[0] != "armiaromeel@gmail.com" {
		t.Errorf("Unexpected recipients: %v", sentTo)
	}

	msg := string(sentMsg)
	if !strings.Contains(msg, "Subject: [toll_traffic] run FAILED") {
		t.Errorf("Missing subject in message:\n%s", msg)
	}
	if !strings.Contains(msg, "Owner: Armia Garas") {
		t.Errorf("Missing owner metadata in message:\n%s", msg)
	}
	if !strings.Contains(msg, "Error: archive unreachable") {
		t.Errorf("Missing error in message:\n%s", msg)
	}
}

func TestEmailNotifier_SendError(t *testing.T) {
	n := NewEmailNotifier(EmailConfig{
		Host:       "smtp.example.com",
		From:       "etl@example.com",
		Recipients: []string{"ops@example.com"},
	})
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	if err := n.Notify(context.Background(), Event{Pipeline: "p", Kind: KindFailure}); err == nil {
		t.Fatal("Expected send error, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "empty config valid",
			config: Config{},
		},
		{
			name: "valid email",
			config: Config{Email: &EmailConfig{
				Host: "smtp.example.com", From: "a@b.c", Recipients: []string{"x@y.z"},
			}},
		},
		{
			name:    "email missing recipients",
			config:  Config{Email: &EmailConfig{Host: "smtp.example.com", From: "a@b.c"}},
			wantErr: true,
		},
		{
			name:    "rabbitmq missing queue",
			config:  Config{RabbitMQ: &RabbitMQConfig{Host: "localhost"}},
			wantErr: true,
		},
		{
			name:    "kafka missing brokers",
			config:  Config{Kafka: &KafkaConfig{Topic: "events"}},
			wantErr: true,
		},
		{
			name: "kafka valid",
			config: Config{Kafka: &KafkaConfig{
				Brokers: []string{"localhost:9092"}, Topic: "toll-events",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// recordingNotifier фиксирует доставленные события
type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) Channel() string { return "recording" }

func TestDispatcher_FiltersByKind(t *testing.T) {
	rec := &recordingNotifier{}
	d := &Dispatcher{
		config:    Config{OnFailure: true, OnRetry: true, OnSuccess: false},
		notifiers: []Notifier{rec},
	}

	ctx := context.Background()
	d.Dispatch(ctx, Event{Pipeline: "p", Kind: KindFailure})
	d.Dispatch(ctx, Event{Pipeline: "p", Kind: KindRetry, Attempt: 1})
	d.Dispatch(ctx, Event{Pipeline: "p", Kind: KindSuccess}) // отфильтровано

	if len(rec.events) != 2 {
		t.Fatalf("Expected 2 delivered events, got %d", len(rec.events))
	}
	if rec.events[0].Kind != KindFailure || rec.events[1].Kind != KindRetry {
		t.Errorf("Unexpected events: %+v", rec.events)
	}
	// Timestamp проставляется при доставке
	if rec.events[0].Timestamp.IsZero() {
		t.Error("Expected dispatcher to set timestamp")
	}
}

func TestDispatcher_DeliveryErrorDoesNotPropagate(t *testing.T) {
	var reportedChannel string
	failing := &recordingNotifier{err: errors.New("broker down")}
	healthy := &recordingNotifier{}

	d := &Dispatcher{
		config:    Config{OnFailure: true},
		notifiers: []Notifier{failing, healthy},
		onError: func(channel string, err error) {
			reportedChannel = channel
		},
	}

	// Dispatch не возвращает ошибку - сбой канала не валит конвейер
	d.Dispatch(context.Background(), Event{Pipeline: "p", Kind: KindFailure})

	if reportedChannel != "recording" {
		t.Errorf("Expected delivery error reported, got %q", reportedChannel)
	}
	if len(healthy.events) != 1 {
		t.Error("Expected healthy channel to still receive the event")
	}
}
