package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// HTTPFetcher скачивает архив по HTTP(S)
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher создает новый HTTP fetcher
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	return &HTTPFetcher{
		url:    cfg.URL,
		client: &http.Client{},
	}
}

// Source возвращает URL источника
func (f *HTTPFetcher) Source() string {
	return f.url
}

// Fetch скачивает URL в destPath
func (f *HTTPFetcher) Fetch(ctx context.Context, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}

	// Сервер объявил длину — проверяем, что тело пришло целиком
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return n, fmt.Errorf("truncated download: got %d of %d bytes", n, resp.ContentLength)
	}

	return n, out.Sync()
}
