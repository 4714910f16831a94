package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryableFunc - функция, которую можно повторять
type RetryableFunc func(ctx context.Context) error

// Retryer выполняет retry логику вокруг запуска конвейера или шага
type Retryer struct {
	config  Config
	journal *Journal
}

// NewRetryer создает новый Retryer
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	var journal *Journal
	if config.Journal.Enabled {
		var err error
		journal, err = NewJournal(config.Journal)
		if err != nil {
			return nil, fmt.Errorf("failed to create failure journal: %w", err)
		}
	}

	return &Retryer{
		config:  config,
		journal: journal,
	}, nil
}

// Do выполняет функцию с retry
func (r *Retryer) Do(ctx context.Context, fn RetryableFunc) error {
	return r.DoNamed(ctx, "", fn)
}

// DoNamed выполняет функцию с retry; name попадает в журнал при провале
// всех попыток (обычно это имя конвейера или шага)
func (r *Retryer) DoNamed(ctx context.Context, name string, fn RetryableFunc) error {
	if !r.config.Enabled {
		return fn(ctx)
	}

	var lastErr error
	attempts := 0

	for {
		attempts++

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.isRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if attempts >= r.config.MaxAttempts {
			if r.journal != nil {
				r.journal.Add(Entry{
					Timestamp: time.Now(),
					Name:      name,
					Attempts:  attempts,
					LastError: err.Error(),
				})
			}
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
		}

		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := r.calculateDelay(attempts)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempts, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry delay: %w", ctx.Err())
		}
	}
}

// calculateDelay вычисляет задержку для текущей попытки
func (r *Retryer) calculateDelay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.BackoffStrategy {
	case BackoffConstant:
		delay = r.config.InitialDelay

	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)

	case BackoffExponential:
		multiplier := math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)

	default:
		delay = r.config.InitialDelay
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter > 0 {
		jitter := time.Duration(float64(delay) * r.config.Jitter * (rand.Float64()*2 - 1))
		delay += jitter
		if delay < 0 {
			delay = r.config.InitialDelay
		}
	}

	return delay
}

// isRetryableError проверяет нужен ли retry для ошибки
func (r *Retryer) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if len(r.config.RetryableErrors) == 0 {
		return true
	}

	errStr := err.Error()
	for _, pattern := range r.config.RetryableErrors {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// GetJournal возвращает журнал проваленных запусков, если он включен
func (r *Retryer) GetJournal() *Journal {
	return r.journal
}

// Close сохраняет журнал и закрывает Retryer
func (r *Retryer) Close() error {
	if r.journal != nil {
		return r.journal.Save()
	}
	return nil
}
