package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config - параметры публикации результата запуска в Redis
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Name - имя конвейера в Redis-ключах; если пусто,
	// используется имя конвейера из метаданных
	Name string `yaml:"name"`
	// TTL состояния в секундах (0 = без истечения)
	TTL int `yaml:"ttl"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Address == "" {
		return fmt.Errorf("address is required when result log is enabled")
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must be non-negative")
	}
	return nil
}

// RunResult представляет итог запуска конвейера, публикуемый в Redis
// после завершения (успешного или с ошибкой).
//
// Redis-ключи:
//
//	SET  toll:pipeline:<name>:state  <JSON>  EX <ttl>  — для GET-запросов оркестратора
//	PUB  toll:pipeline:<name>                          — для event-driven маршрутизации
type RunResult struct {
	Pipeline      string    `json:"pipeline"`
	Status        string    `json:"status"` // "success" | "failed"
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	DurationMs    int64     `json:"duration_ms"`
	RowsExtracted int       `json:"rows_extracted"`
	Attempts      int       `json:"attempts"`
	Artifact      string    `json:"artifact,omitempty"`
	Error         *string   `json:"error,omitempty"`
}

// RedisPublisher публикует итог запуска конвейера в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает Redis publisher на основе конфигурации
func NewRedisPublisher(config Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// Publish публикует итог запуска:
//   - SET toll:pipeline:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH toll:pipeline:<name> <JSON>             → для подписки (pub/sub)
//
// Вызывается независимо от итога запуска. execErr == nil означает успех.
func (p *RedisPublisher) Publish(ctx context.Context, result RunResult, execErr error) error {
	if execErr != nil {
		result.Status = "failed"
		errStr := execErr.Error()
		result.Error = &errStr
	} else {
		result.Status = "success"
	}

	name := p.config.Name
	if name == "" {
		name = result.Pipeline
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stateKey := fmt.Sprintf("toll:pipeline:%s:state", name)
	eventChannel := fmt.Sprintf("toll:pipeline:%s", name)
	ttl := time.Duration(p.config.TTL) * time.Second

	// SET ключ с TTL — оркестратор может GET для получения последнего состояния
	if err := p.client.Set(ctx, stateKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	// PUBLISH событие — оркестратор может SUBSCRIBE для event-driven маршрутизации
	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
