// Package config handles configuration loading for the controller and the
// worker: an optional YAML file layered under environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string `yaml:"database_url"`

	// HTTP server port for the controller
	HTTPPort int `yaml:"http_port"`

	// Port for the worker's metrics endpoint
	MetricsPort int `yaml:"metrics_port"`

	// OTLP collector endpoint for traces
	OTELEndpoint string `yaml:"otel_endpoint"`

	// Worker-specific configuration
	WorkerConcurrency  int           `yaml:"worker_concurrency"`
	WorkerPollInterval time.Duration `yaml:"worker_poll_interval"`
	WorkerMaxBackoff   time.Duration `yaml:"worker_max_backoff"`
	WorkerBatchSize    int           `yaml:"worker_batch_size"`

	// Publish transport selection: "wordpress" or "webhook"
	Publisher string `yaml:"publisher"`

	// WordPress transport settings
	WordPressURL         string `yaml:"wordpress_url"`
	WordPressUsername    string `yaml:"wordpress_username"`
	WordPressAppPassword string `yaml:"wordpress_app_password"`

	// Webhook transport settings
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`

	// Webhook for pre-publish reminders; empty means reminders are only logged
	NotifyWebhookURL string `yaml:"notify_webhook_url"`
}

// Load reads configuration from an optional YAML file, then overlays
// environment variables on top. The file path defaults to publishplane.yaml
// in the current directory when it exists.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPPort:           7070,
		MetricsPort:        7071,
		OTELEndpoint:       "localhost:4317",
		WorkerConcurrency:  4,
		WorkerPollInterval: 30 * time.Second,
		WorkerMaxBackoff:   5 * time.Minute,
		WorkerBatchSize:    10,
		Publisher:          "wordpress",
	}

	if path == "" {
		if _, err := os.Stat("publishplane.yaml"); err == nil {
			path = "publishplane.yaml"
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	if cfg.HTTPPort, err = intEnv("PORT", cfg.HTTPPort); err != nil {
		return nil, err
	}
	if cfg.MetricsPort, err = intEnv("METRICS_PORT", cfg.MetricsPort); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency, err = intEnv("WORKER_CONCURRENCY", cfg.WorkerConcurrency); err != nil {
		return nil, err
	}
	if cfg.WorkerBatchSize, err = intEnv("WORKER_BATCH_SIZE", cfg.WorkerBatchSize); err != nil {
		return nil, err
	}
	if cfg.WorkerPollInterval, err = durationEnv("WORKER_POLL_INTERVAL", cfg.WorkerPollInterval); err != nil {
		return nil, err
	}
	if cfg.WorkerMaxBackoff, err = durationEnv("WORKER_MAX_BACKOFF", cfg.WorkerMaxBackoff); err != nil {
		return nil, err
	}

	if v := os.Getenv("OTEL_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("PUBLISHER"); v != "" {
		cfg.Publisher = v
	}
	if v := os.Getenv("WORDPRESS_URL"); v != "" {
		cfg.WordPressURL = v
	}
	if v := os.Getenv("WORDPRESS_USERNAME"); v != "" {
		cfg.WordPressUsername = v
	}
	if v := os.Getenv("WORDPRESS_APP_PASSWORD"); v != "" {
		cfg.WordPressAppPassword = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = v
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.NotifyWebhookURL = v
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
