package retry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestRetryer_Success(t *testing.T) {
	config := EnableRetry(3, 10*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	err = retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryer_SuccessAfterRetry(t *testing.T) {
	config := EnableRetry(3, 10*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	err = retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient failure")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Expected success, got: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestRetryer_MaxAttemptsExceeded(t *testing.T) {
	config := EnableRetry(2, 5*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	err = retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("persistent failure")
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts (policy: first try + one retry), got %d", attempts)
	}
}

func TestRetryer_OnRetryCallback(t *testing.T) {
	config := EnableRetry(3, 5*time.Millisecond)

	var callbackAttempts []int
	config.OnRetry = func(attempt int, err error, delay time.Duration) {
		callbackAttempts = append(callbackAttempts, attempt)
	}

	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("fail")
		}
		return nil
	})

	// Callback вызывается перед каждым повтором, но не перед первой попыткой
	if len(callbackAttempts) != 2 {
		t.Errorf("Expected 2 retry callbacks, got %d", len(callbackAttempts))
	}
}

func TestRetryer_NonRetryableError(t *testing.T) {
	config := EnableRetry(5, 5*time.Millisecond)
	config.RetryableErrors = []string{"timeout", "connection refused"}

	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	err = retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("malformed data")
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryer_ContextCancellation(t *testing.T) {
	config := EnableRetry(10, 500*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err = retryer.Do(ctx, func(ctx context.Context) error {
		return errors.New("fail")
	})
	if err == nil {
		t.Fatal("Expected cancellation error, got nil")
	}
}

func TestRetryer_DisabledRunsOnce(t *testing.T) {
	retryer, err := NewRetryer(Config{Enabled: false})
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("fail")
	})
	if attempts != 1 {
		t.Errorf("Expected 1 attempt with retry disabled, got %d", attempts)
	}
}

func TestJournal_RecordsExhaustedRuns(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "failures.json")

	config := EnableRetry(2, time.Millisecond)
	config.Journal = JournalConfig{Enabled: true, FilePath: journalPath, MaxSize: 10}

	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	retryer.DoNamed(context.Background(), "toll_traffic", func(ctx context.Context) error {
		return errors.New("archive unreachable")
	})

	if err := retryer.Close(); err != nil {
		t.Fatalf("Failed to save journal: %v", err)
	}

	// Журнал переживает перезапуск процесса
	reloaded, err := NewJournal(config.Journal)
	if err != nil {
		t.Fatalf("Failed to reload journal: %v", err)
	}
	entries := reloaded.Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 journal entry, got %d", len(entries))
	}
	if entries[0].Name != "toll_traffic" {
		t.Errorf("Expected name 'toll_traffic', got %q", entries[0].Name)
	}
	if entries[0].Attempts != 2 {
		t.Errorf("Expected 2 attempts recorded, got %d", entries[0].Attempts)
	}
}

func TestJournal_MaxSizeEviction(t *testing.T) {
	j, err := NewJournal(JournalConfig{Enabled: true, FilePath: filepath.Join(t.TempDir(), "j.json"), MaxSize: 3})
	if err != nil {
		t.Fatalf("Failed to create journal: %v", err)
	}

	for i := 0; i < 5; i++ {
		j.Add(Entry{Name: "run", Attempts: i + 1})
	}

	if j.Len() != 3 {
		t.Errorf("Expected 3 entries after eviction, got %d", j.Len())
	}
	// Остаются самые свежие записи
	entries := j.Entries()
	if entries[0].Attempts != 3 || entries[2].Attempts != 5 {
		t.Errorf("Expected newest entries retained, got %+v", entries)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default valid", mutate: func(c *Config) {}},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "bad strategy", mutate: func(c *Config) { c.BackoffStrategy = "fibonacci" }, wantErr: true},
		{name: "jitter out of range", mutate: func(c *Config) { c.Jitter = 1.5 }, wantErr: true},
		{name: "max below initial", mutate: func(c *Config) { c.MaxDelay = time.Second }, wantErr: true},
		{name: "disabled skips validation", mutate: func(c *Config) { c.Enabled = false; c.MaxAttempts = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
