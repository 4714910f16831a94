package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Fetcher скачивает архив из удаленного источника в локальный файл
type Fetcher interface {
	// Fetch скачивает источник в destPath и возвращает число записанных байт
	Fetch(ctx context.Context, destPath string) (int64, error)

	// Source возвращает адрес источника (для логов)
	Source() string
}

// Config содержит параметры источника архива
type Config struct {
	URL      string        // http(s):// или s3:// адрес архива
	Checksum string        // Ожидаемый xxh3 хеш (hex), пустая строка = без проверки
	Timeout  time.Duration // Таймаут скачивания (0 = без таймаута)
	Region   string        // AWS регион, только для s3://
}

// New создает Fetcher по схеме URL
func New(cfg Config) (Fetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("source url is required")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(cfg), nil
	case "s3":
		return NewS3Fetcher(cfg)
	default:
		return nil, fmt.Errorf("unsupported url scheme '%s', must be http, https or s3", u.Scheme)
	}
}

// Download скачивает источник в destPath с защитой от частичной загрузки:
// данные пишутся в <destPath>.part и переименовываются после успешного
// завершения и проверки checksum. Прерванное скачивание не оставляет
// недописанный артефакт на месте целевого файла.
func Download(ctx context.Context, cfg Config, destPath string) (int64, error) {
	fetcher, err := New(cfg)
	if err != nil {
		return 0, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	partPath := destPath + ".part"
	n, err := fetcher.Fetch(ctx, partPath)
	if err != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("failed to fetch %s: %w", fetcher.Source(), err)
	}

	if cfg.Checksum != "" {
		if err := VerifyFileChecksum(partPath, cfg.Checksum); err != nil {
			os.Remove(partPath)
			return 0, err
		}
	}

	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("failed to finalize download: %w", err)
	}

	return n, nil
}
