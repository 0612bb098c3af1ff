// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"mediafetch/api"
)

// Config holds all settings for the resolution pipeline.
type Config struct {
	// DownloadDir is where resolved files are placed.
	DownloadDir string

	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp").
	YtdlpPath string
	// YtdlpTimeout is the wall-clock budget per yt-dlp invocation.
	YtdlpTimeout time.Duration
	// CookiesPath is the cookie file enabling the extraction tier.
	// The tier is skipped when the file is absent or empty.
	CookiesPath string

	// MaxAttempts and BaseDelay configure the resilient-call executor.
	MaxAttempts int
	BaseDelay   time.Duration

	// MetaTTL and MetaMaxEntries bound the in-memory metadata caches.
	MetaTTL        time.Duration
	MetaMaxEntries int

	// APIURLEndpoint publishes the fallback service base URL; FallbackURL
	// is used when it cannot be fetched; APIBaseURL pins the URL outright.
	APIURLEndpoint string
	FallbackURL    string
	APIBaseURL     string

	// RedisURL locates the file-id document store. Empty disables the
	// token tier.
	RedisURL string

	// S3Bucket/S3Prefix locate the durable store. Empty bucket disables
	// background cache population.
	S3Bucket string
	S3Prefix string

	// YouTubeAPIKey enables metadata search via the Data API.
	YouTubeAPIKey string
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		DownloadDir:    "downloads",
		YtdlpPath:      "yt-dlp",
		YtdlpTimeout:   2 * time.Minute,
		MaxAttempts:    4,
		BaseDelay:      1 * time.Second,
		MetaTTL:        10 * time.Minute,
		MetaMaxEntries: 256,
		APIURLEndpoint: api.DefaultURLEndpoint,
		FallbackURL:    api.DefaultFallbackURL,
		S3Prefix:       "mediafetch/",
	}
}

// Load builds configuration from defaults overridden by environment
// variables, then validates it.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv overrides config with MEDIAFETCH_* environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("MEDIAFETCH_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("MEDIAFETCH_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("MEDIAFETCH_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("MEDIAFETCH_COOKIES"); v != "" {
		c.CookiesPath = v
	}
	if v := os.Getenv("MEDIAFETCH_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv("MEDIAFETCH_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.BaseDelay = d
		}
	}
	if v := os.Getenv("MEDIAFETCH_META_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MetaTTL = d
		}
	}
	if v := os.Getenv("MEDIAFETCH_META_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MetaMaxEntries = n
		}
	}
	if v := os.Getenv("MEDIAFETCH_API_URL_ENDPOINT"); v != "" {
		c.APIURLEndpoint = v
	}
	if v := os.Getenv("MEDIAFETCH_FALLBACK_URL"); v != "" {
		c.FallbackURL = v
	}
	if v := os.Getenv("MEDIAFETCH_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("MEDIAFETCH_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("MEDIAFETCH_S3_BUCKET"); v != "" {
		c.S3Bucket = v
	}
	if v := os.Getenv("MEDIAFETCH_S3_PREFIX"); v != "" {
		c.S3Prefix = v
	}
	if v := os.Getenv("MEDIAFETCH_YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.DownloadDir == "" {
		return fmt.Errorf("download_dir must not be empty")
	}
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be positive")
	}
	if c.MetaTTL <= 0 {
		return fmt.Errorf("meta_ttl must be positive")
	}
	if c.MetaMaxEntries <= 0 {
		return fmt.Errorf("meta_max_entries must be positive")
	}
	return nil
}
