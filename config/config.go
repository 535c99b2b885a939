// Package config loads wall settings from defaults, an optional YAML file,
// an optional .env file and GW_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gravity-wall/constant"
)

// Source kinds for the live feed
const (
	SourceNone      = "none"
	SourceMemory    = "memory"
	SourceWebsocket = "websocket"
	SourceRedis     = "redis"
)

// Config is the full runtime configuration
type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Fallback FallbackConfig `yaml:"fallback"`
	Texture  TextureConfig  `yaml:"texture"`
	Wall     WallConfig     `yaml:"wall"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
	Sound    bool           `yaml:"sound" env:"GW_SOUND"`
}

// FeedConfig selects and addresses the live photo feed
type FeedConfig struct {
	ID        string `yaml:"id" env:"GW_FEED_ID"`
	Source    string `yaml:"source" env:"GW_FEED_SOURCE"`
	URL       string `yaml:"url" env:"GW_FEED_URL"`
	RedisAddr string `yaml:"redis_addr" env:"GW_FEED_REDIS_ADDR"`
	Limit     int    `yaml:"limit" env:"GW_FEED_LIMIT"`
}

// FallbackConfig controls placeholder content shown when the feed is empty or unreachable
type FallbackConfig struct {
	Interval     time.Duration `yaml:"interval" env:"GW_FALLBACK_INTERVAL"`
	Count        int           `yaml:"count" env:"GW_FALLBACK_COUNT"`
	Placeholders []string      `yaml:"placeholders"`
}

// TextureConfig controls acquisition and normalization
type TextureConfig struct {
	Width        int           `yaml:"width" env:"GW_TEXTURE_WIDTH"`
	Height       int           `yaml:"height" env:"GW_TEXTURE_HEIGHT"`
	Quality      int           `yaml:"quality" env:"GW_TEXTURE_QUALITY"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"GW_FETCH_TIMEOUT"`
	MaxBytes     int64         `yaml:"max_bytes" env:"GW_FETCH_MAX_BYTES"`
	RateLimit    float64       `yaml:"rate_limit" env:"GW_FETCH_RATE"`
	Burst        int           `yaml:"burst" env:"GW_FETCH_BURST"`
	S3           S3Config      `yaml:"s3"`
}

// S3Config addresses the blob store for s3:// photo URLs
type S3Config struct {
	Endpoint  string `yaml:"endpoint" env:"GW_S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"GW_S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"GW_S3_SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"GW_S3_USE_SSL"`
}

// WallConfig controls the simulation and projection
type WallConfig struct {
	UnitsPerPixel float64 `yaml:"units_per_pixel" env:"GW_UNITS_PER_PIXEL"`
	InitialScale  float64 `yaml:"initial_scale" env:"GW_INITIAL_SCALE"`
	Seed          uint64  `yaml:"seed" env:"GW_SEED"`
}

// MetricsConfig enables the HTTP control and metrics surface when Addr is set
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"GW_METRICS_ADDR"`
}

// LogConfig controls the log file
type LogConfig struct {
	File  string `yaml:"file" env:"GW_LOG_FILE"`
	Level string `yaml:"level" env:"GW_LOG_LEVEL"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			ID:     "default",
			Source: SourceNone,
			Limit:  constant.FeedSnapshotLimit,
		},
		Fallback: FallbackConfig{
			Interval:     constant.FallbackInterval,
			Count:        constant.FallbackCount,
			Placeholders: DefaultPlaceholders(),
		},
		Texture: TextureConfig{
			Width:        constant.TextureWidth,
			Height:       constant.TextureHeight,
			Quality:      constant.TextureQuality,
			FetchTimeout: constant.FetchTimeout,
			MaxBytes:     constant.FetchMaxBytes,
			RateLimit:    constant.FetchRatePerSecond,
			Burst:        constant.FetchBurst,
		},
		Wall: WallConfig{
			UnitsPerPixel: constant.UnitsPerPixel,
			InitialScale:  constant.ScaleDefault,
		},
		Log: LogConfig{
			File:  "gravity-wall.log",
			Level: "info",
		},
	}
}

// DefaultPlaceholders is the static placeholder set served offline by the placeholder fetcher
func DefaultPlaceholders() []string {
	return []string{
		"placeholder://sunset",
		"placeholder://lagoon",
		"placeholder://meadow",
		"placeholder://berry",
		"placeholder://slate",
		"placeholder://ember",
		"placeholder://glacier",
		"placeholder://citrus",
	}
}

// Load builds the configuration. An empty path skips the YAML file; a missing .env is ignored.
// The result is not validated so command-line overrides can complete it first.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the wall cannot run with
func (c *Config) Validate() error {
	switch c.Feed.Source {
	case SourceNone, SourceMemory:
	case SourceWebsocket:
		if c.Feed.URL == "" {
			return fmt.Errorf("feed: websocket source requires url")
		}
	case SourceRedis:
		if c.Feed.RedisAddr == "" {
			return fmt.Errorf("feed: redis source requires redis_addr")
		}
	default:
		return fmt.Errorf("feed: unknown source %q", c.Feed.Source)
	}
	if c.Feed.Limit < 1 || c.Feed.Limit > 500 {
		return fmt.Errorf("feed: limit %d outside 1..500", c.Feed.Limit)
	}
	if c.Fallback.Interval <= 0 {
		return fmt.Errorf("fallback: interval must be positive")
	}
	if c.Fallback.Count < 0 {
		return fmt.Errorf("fallback: count must not be negative")
	}
	if c.Texture.Width <= 0 || c.Texture.Height <= 0 {
		return fmt.Errorf("texture: dimensions must be positive")
	}
	if c.Wall.UnitsPerPixel <= 0 {
		return fmt.Errorf("wall: units_per_pixel must be positive")
	}
	if c.Wall.InitialScale < constant.ScaleMin || c.Wall.InitialScale > constant.ScaleMax {
		return fmt.Errorf("wall: initial_scale %.0f outside %.0f..%.0f",
			c.Wall.InitialScale, constant.ScaleMin, constant.ScaleMax)
	}
	return nil
}
