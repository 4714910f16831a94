package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Fetcher скачивает архив из S3-совместимого хранилища.
// URL имеет вид s3://bucket/key.
type S3Fetcher struct {
	rawURL string
	bucket string
	key    string
	region string
}

// NewS3Fetcher создает новый S3 fetcher
func NewS3Fetcher(cfg Config) (*S3Fetcher, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 url: %w", err)
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 url must be s3://bucket/key, got %q", cfg.URL)
	}

	return &S3Fetcher{
		rawURL: cfg.URL,
		bucket: bucket,
		key:    key,
		region: cfg.Region,
	}, nil
}

// Source возвращает URL источника
func (f *S3Fetcher) Source() string {
	return f.rawURL
}

// Fetch скачивает объект в destPath через download manager
// (параллельная загрузка частей)
func (f *S3Fetcher) Fetch(ctx context.Context, destPath string) (int64, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if f.region != "" {
		opts = append(opts, awsconfig.WithRegion(f.region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return 0, fmt.Errorf("failed to load AWS config: %w", err)
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	client := s3.NewFromConfig(awsCfg)
	downloader := manager.NewDownloader(client)

	n, err := downloader.Download(ctx, out, &s3.GetObjectInput{
		Bucket: &f.bucket,
		Key:    &f.key,
	})
	if err != nil {
		return n, fmt.Errorf("s3 download failed: %w", err)
	}

	return n, out.Sync()
}
