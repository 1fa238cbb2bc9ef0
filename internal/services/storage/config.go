// File: internal/services/storage/config.go
package storage

import (
	"fmt"
	"time"
)

type Config struct {
	// BucketName is the GCS bucket uploads land in.
	BucketName string

	// CredentialsFile points at a service-account JSON key. Empty means
	// application default credentials.
	CredentialsFile string

	// UploadTimeout bounds each object write.
	UploadTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.BucketName == "" {
		return fmt.Errorf("bucket_name is required")
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("upload_timeout must be positive")
	}
	return nil
}

func DefaultConfig(bucketName, credentialsFile string) *Config {
	return &Config{
		BucketName:      bucketName,
		CredentialsFile: credentialsFile,
		UploadTimeout:   30 * time.Second,
	}
}
