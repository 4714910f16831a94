package retry

import (
	"fmt"
	"time"
)

// BackoffStrategy определяет стратегию задержки между повторами
type BackoffStrategy string

const (
	// BackoffConstant - постоянная задержка
	BackoffConstant BackoffStrategy = "constant"
	// BackoffLinear - линейное увеличение задержки
	BackoffLinear BackoffStrategy = "linear"
	// BackoffExponential - экспоненциальное увеличение задержки
	BackoffExponential BackoffStrategy = "exponential"
)

// Config содержит конфигурацию retry механизма.
// Дефолты повторяют политику оригинального планировщика:
// один повтор с фиксированной задержкой 5 минут.
type Config struct {
	// Enabled - включить retry механизм
	Enabled bool

	// MaxAttempts - максимальное количество попыток (включая первую)
	MaxAttempts int

	// InitialDelay - задержка перед первым повтором
	InitialDelay time.Duration

	// MaxDelay - максимальная задержка между попытками
	MaxDelay time.Duration

	// BackoffStrategy - стратегия увеличения задержки
	BackoffStrategy BackoffStrategy

	// BackoffMultiplier - множитель для exponential backoff
	BackoffMultiplier float64

	// Jitter - доля случайности в задержке (0.0 - 1.0)
	Jitter float64

	// RetryableErrors - substrings ошибок, для которых нужен retry.
	// Пустой список = retry для всех ошибок (политика оригинала:
	// transient и permanent сбои не различаются).
	RetryableErrors []string

	// OnRetry - callback перед каждым повтором
	OnRetry func(attempt int, err error, delay time.Duration)

	// Journal - конфигурация журнала проваленных запусков
	Journal JournalConfig
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts)
	}

	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}

	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}

	if c.BackoffStrategy != BackoffConstant &&
		c.BackoffStrategy != BackoffLinear &&
		c.BackoffStrategy != BackoffExponential {
		return fmt.Errorf("invalid backoff strategy: %s", c.BackoffStrategy)
	}

	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = 2.0
	}

	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}

	return nil
}

// DefaultConfig возвращает политику оригинального конвейера:
// 1 повтор через 5 минут, постоянная задержка, без различения ошибок
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MaxAttempts:       2, // Первая попытка + один повтор
		InitialDelay:      5 * time.Minute,
		MaxDelay:          5 * time.Minute,
		BackoffStrategy:   BackoffConstant,
		BackoffMultiplier: 1.0,
		Jitter:            0,
		RetryableErrors:   []string{},
	}
}

// EnableRetry создает конфигурацию с заданным числом попыток и задержкой
func EnableRetry(maxAttempts int, initialDelay time.Duration) Config {
	config := DefaultConfig()
	config.MaxAttempts = maxAttempts
	config.InitialDelay = initialDelay
	if config.MaxDelay < initialDelay {
		config.MaxDelay = initialDelay
	}
	return config
}
