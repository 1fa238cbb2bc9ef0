// File: internal/services/storage/bucket.go
package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// BucketService stores uploaded assets and hands back public URLs.
type BucketService interface {
	UploadFile(ctx context.Context, key string, r io.Reader, contentType string) error
	GetPublicURL(key string) string
	Close() error
}

// Logger defines the logging interface used by the bucket service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type gcsBucketService struct {
	config *Config
	client *gcs.Client
	logger Logger
}

// NewBucketService connects to GCS. The caller decides whether a failure
// here is fatal; the rest of the app works without uploads.
func NewBucketService(ctx context.Context, config *Config, logger Logger) (BucketService, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	logger.Info("bucket service ready", "bucket", config.BucketName)
	return &gcsBucketService{config: config, client: client, logger: logger}, nil
}

func (s *gcsBucketService) UploadFile(ctx context.Context, key string, r io.Reader, contentType string) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.UploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.config.BucketName).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("upload %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %q: %w", key, err)
	}

	s.logger.Debug("object uploaded", "key", key, "content_type", contentType)
	return nil
}

func (s *gcsBucketService) GetPublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.config.BucketName, key)
}

func (s *gcsBucketService) Close() error {
	return s.client.Close()
}
