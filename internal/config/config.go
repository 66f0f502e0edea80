// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBSCAN_* environment variables.
type Config struct {
	Detector  DetectorConfig            `toml:"detector"`
	Poller    PollerConfig              `toml:"poller"`
	Exchanges map[string]ExchangeConfig `toml:"exchanges"`
	Postgres  PostgresConfig            `toml:"postgres"`
	Redis     RedisConfig               `toml:"redis"`
	S3        S3Config                  `toml:"s3"`
	Kafka     KafkaConfig               `toml:"kafka"`
	Server    ServerConfig              `toml:"server"`
	Notify    NotifyConfig              `toml:"notify"`
	Assistant AssistantConfig           `toml:"assistant"`
	Mode      string                    `toml:"mode"`
	LogLevel  string                    `toml:"log_level"`
}

// DetectorConfig holds the detection engine parameters.
type DetectorConfig struct {
	WatchSymbols    []string `toml:"watch_symbols"`
	MinNetProfitPct float64  `toml:"min_net_profit_pct"`
	DemoMode        bool     `toml:"demo_mode"`
	Bidirectional   bool     `toml:"bidirectional"`
	NotionalUSD     float64  `toml:"notional_usd"`
	FetchTimeout    duration `toml:"fetch_timeout"`
	CacheTTL        duration `toml:"cache_ttl"`
}

// PollerConfig holds the background scan loop parameters.
type PollerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval duration `toml:"interval"`
}

// ExchangeConfig holds per-exchange overrides, keyed by the lowercase
// exchange name in the [exchanges] table. All fields are optional; an empty
// value keeps the connector's built-in default.
type ExchangeConfig struct {
	BaseURL   string   `toml:"base_url"`
	APIKey    string   `toml:"api_key"`
	APISecret string   `toml:"api_secret"`
	Timeout   duration `toml:"timeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	ResultTTL  duration `toml:"result_ttl"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// KafkaConfig holds the opportunity publishing parameters.
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled         bool     `toml:"enabled"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	Cooldown          duration `toml:"cooldown"`
}

// AssistantConfig holds the OpenAI-compatible chat API parameters for the
// tool-call interface.
type AssistantConfig struct {
	Enabled bool     `toml:"enabled"`
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Model   string   `toml:"model"`
	Timeout duration `toml:"timeout"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Detector: DetectorConfig{
			WatchSymbols:    []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "SOL/USDT", "XRP/USDT"},
			MinNetProfitPct: 0.5,
			DemoMode:        false,
			Bidirectional:   false,
			NotionalUSD:     10_000,
			FetchTimeout:    duration{5 * time.Second},
			CacheTTL:        duration{10 * time.Second},
		},
		Poller: PollerConfig{
			Enabled:  true,
			Interval: duration{10 * time.Second},
		},
		Exchanges: map[string]ExchangeConfig{},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
			ResultTTL:  duration{time.Minute},
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbscan-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "arbscan.opportunities",
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       0,
			RateLimitWindow: duration{time.Second},
		},
		Notify: NotifyConfig{
			Events:   []string{"opportunity", "error"},
			Cooldown: duration{time.Minute},
		},
		Assistant: AssistantConfig{
			Enabled: false,
			Model:   "gpt-4o-mini",
			Timeout: duration{60 * time.Second},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve": true,
	"poll":  true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// knownExchanges enumerates the venue keys accepted in the [exchanges] table.
var knownExchanges = map[string]bool{
	"binance":  true,
	"coinbase": true,
	"kucoin":   true,
	"kraken":   true,
	"bybit":    true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, poll, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Detector
	if !c.Detector.DemoMode && len(c.Detector.WatchSymbols) == 0 {
		errs = append(errs, "detector: watch_symbols must not be empty")
	}
	for _, sym := range c.Detector.WatchSymbols {
		if !strings.Contains(sym, "/") {
			errs = append(errs, fmt.Sprintf("detector: watch symbol %q is not in BASE/QUOTE form", sym))
		}
	}
	if c.Detector.MinNetProfitPct < 0 {
		errs = append(errs, fmt.Sprintf("detector: min_net_profit_pct must not be negative, got %v", c.Detector.MinNetProfitPct))
	}
	if c.Detector.NotionalUSD <= 0 {
		errs = append(errs, fmt.Sprintf("detector: notional_usd must be > 0, got %v", c.Detector.NotionalUSD))
	}
	if c.Detector.CacheTTL.Duration <= 0 {
		errs = append(errs, "detector: cache_ttl must be > 0")
	}

	// Exchanges
	for name := range c.Exchanges {
		if !knownExchanges[strings.ToLower(name)] {
			errs = append(errs, fmt.Sprintf("exchanges: unknown venue %q (valid: binance, coinbase, kucoin, kraken, bybit)", name))
		}
	}

	// Poller
	if c.Poller.Enabled && c.Poller.Interval.Duration <= 0 {
		errs = append(errs, "poller: interval must be > 0 when enabled")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// Kafka
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, "kafka: brokers must not be empty when enabled")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit > 0 && !c.Redis.Enabled {
			errs = append(errs, "server: rate_limit requires redis to be enabled")
		}
	}

	// Assistant
	if c.Assistant.Enabled && c.Assistant.APIKey == "" {
		errs = append(errs, "assistant: api_key is required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
