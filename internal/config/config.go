package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/veranemoloko/media-downloader/internal/validation"
)

// Backend endpoint paths. They are fixed; only the base URL is configurable.
const (
	EndpointInfo     = "/api/info"
	EndpointDownload = "/api/download"
	EndpointFormats  = "/api/formats"
	EndpointHealth   = "/api/health"
)

// HealthPollInterval is how often the backend health is checked.
const HealthPollInterval = 30 * time.Second

// HealthTimeout bounds a single health check.
const HealthTimeout = 5 * time.Second

// SuccessStatusTTL is how long a success message stays visible.
const SuccessStatusTTL = 10 * time.Second

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"MD_ENV" default:"development" yaml:"environment"`

	BackendURL     string        `envconfig:"MD_BACKEND_URL" default:"http://localhost:5000" yaml:"backend_url"`
	RequestTimeout time.Duration `envconfig:"MD_REQUEST_TIMEOUT" default:"30s" yaml:"request_timeout"`
	Debug          bool          `envconfig:"MD_DEBUG" default:"false" yaml:"debug"`

	DownloadDir string `envconfig:"MD_DOWNLOAD_DIR" default:"./downloads" yaml:"download_dir"`
	SaveURL     string `envconfig:"MD_SAVE_URL" yaml:"save_url"`
	TempDir     string `envconfig:"MD_TEMP_DIR" yaml:"temp_dir"`
	MaxFileSize int64  `envconfig:"MD_MAX_FILE_SIZE" default:"524288000" yaml:"max_file_size"`

	HistoryFile string `envconfig:"MD_HISTORY_FILE" default:"./.mediadl/history.json" yaml:"history_file"`
	StatusAddr  string `envconfig:"MD_STATUS_ADDR" yaml:"status_addr"`

	LogLevel  string `envconfig:"MD_LOG_LEVEL" default:"info" yaml:"log_level"`
	LogFormat string `envconfig:"MD_LOG_FORMAT" default:"text" yaml:"log_format"`
}

// APIURL joins the backend base URL and an endpoint path.
func (c *Config) APIURL(endpoint string) string {
	return strings.TrimRight(c.BackendURL, "/") + endpoint
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if !validation.IsWebURL(c.BackendURL) {
		return fmt.Errorf("invalid backend URL: %q", c.BackendURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %s", c.RequestTimeout)
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive: %d", c.MaxFileSize)
	}

	if c.DownloadDir == "" && c.SaveURL == "" {
		return fmt.Errorf("download directory cannot be empty")
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %q", c.LogFormat)
	}

	return nil
}
