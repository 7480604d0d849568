package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

const (
	// EnvStorageBasePath overrides the storage base path.
	EnvStorageBasePath = "STORAGE_BASE_PATH"

	// EnvStoragePublicBaseURL overrides the public URL prefix for stored blobs.
	EnvStoragePublicBaseURL = "STORAGE_PUBLIC_BASE_URL"

	// EnvStorageMaxUploadSize overrides the maximum upload size.
	EnvStorageMaxUploadSize = "STORAGE_MAX_UPLOAD_SIZE"

	// EnvStorageUploadConcurrency overrides the per-batch upload fan-out limit.
	EnvStorageUploadConcurrency = "STORAGE_UPLOAD_CONCURRENCY"
)

// StorageConfig contains blob storage configuration.
type StorageConfig struct {
	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	// PublicBaseURL is the URL prefix under which stored blobs are served.
	PublicBaseURL string `toml:"public_base_url"`

	MaxUploadSize string `toml:"max_upload_size"`

	// UploadConcurrency bounds how many files of one batch upload at once.
	UploadConcurrency int `toml:"upload_concurrency"`

	maxUploadSizeVal int64
}

// MaxUploadSizeBytes returns the parsed maximum upload size in bytes.
func (c *StorageConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
	if overlay.UploadConcurrency != 0 {
		c.UploadConcurrency = overlay.UploadConcurrency
	}

	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "/files"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = 4
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvStoragePublicBaseURL); v != "" {
		c.PublicBaseURL = v
	}
	if v := os.Getenv(EnvStorageMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvStorageUploadConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UploadConcurrency = n
		}
	}
}

func (c *StorageConfig) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}
	if !strings.HasPrefix(c.PublicBaseURL, "/") && !strings.Contains(c.PublicBaseURL, "://") {
		return fmt.Errorf("public_base_url must be an absolute path or URL")
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("upload_concurrency must be positive")
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
