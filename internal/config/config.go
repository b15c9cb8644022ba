// Package config defines the top-level configuration for the trading
// gateway and provides validation helpers.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by DOJI_* environment variables.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Trading  TradingConfig  `toml:"trading"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// TerminalConfig holds the connection parameters for the MT5 terminal
// bridge RPC.
type TerminalConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
	// UseMock selects the in-process mock venue. No real trades execute in
	// mock mode.
	UseMock bool `toml:"use_mock"`
}

// TradingConfig holds the order-execution policy knobs.
type TradingConfig struct {
	// VerifySettle is the delay before the first post-submission position
	// query; the venue's book can lag its own acknowledgement.
	VerifySettle duration `toml:"verify_settle"`
	// VerifyInterval is the poll spacing during verification.
	VerifyInterval duration `toml:"verify_interval"`
	// VerifyMaxWait bounds the whole verification window.
	VerifyMaxWait duration `toml:"verify_max_wait"`
	// PriceTolerance is the absolute open-price tolerance for the fallback
	// verification match.
	PriceTolerance float64 `toml:"price_tolerance"`
	// DedupWindow rejects identical intents resubmitted within this window.
	// Zero disables the guard.
	DedupWindow duration `toml:"dedup_window"`
	// SerializeAccount, when true and Redis is configured, takes a
	// per-account lock around each order operation.
	SerializeAccount bool `toml:"serialize_account"`
	// AccountLockTTL bounds how long a crashed holder can keep the lock.
	AccountLockTTL duration `toml:"account_lock_ttl"`
}

// RedisConfig holds Redis connection parameters. Leave Addr empty to run
// without Redis (no account lock, no websocket event stream).
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey, if set, enables static-key authentication on all endpoints
	// except the health checks.
	APIKey string `toml:"api_key"`
}

// NotifyConfig holds the notification channel settings.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so TOML values like "500ms" decode.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Defaults returns the built-in configuration, matching the venue policy
// the gateway has always shipped with.
func Defaults() Config {
	return Config{
		Terminal: TerminalConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: duration{30 * time.Second},
		},
		Trading: TradingConfig{
			VerifySettle:   duration{500 * time.Millisecond},
			VerifyInterval: duration{500 * time.Millisecond},
			VerifyMaxWait:  duration{2 * time.Second},
			PriceTolerance: 0.01,
			DedupWindow:    duration{2 * time.Second},
			AccountLockTTL: duration{15 * time.Second},
		},
		Redis: RedisConfig{
			PoolSize:   10,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if !c.Terminal.UseMock && c.Terminal.BaseURL == "" {
		return fmt.Errorf("config: terminal.base_url is required when mock mode is off")
	}
	if c.Terminal.Timeout.Duration <= 0 {
		return fmt.Errorf("config: terminal.timeout must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Trading.PriceTolerance <= 0 {
		return fmt.Errorf("config: trading.price_tolerance must be positive")
	}
	if c.Trading.VerifyMaxWait.Duration < c.Trading.VerifySettle.Duration {
		return fmt.Errorf("config: trading.verify_max_wait must be at least verify_settle")
	}
	if c.Trading.SerializeAccount && c.Redis.Addr == "" {
		return fmt.Errorf("config: trading.serialize_account requires redis.addr")
	}
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		return fmt.Errorf("config: notify.telegram_token and notify.telegram_chat_id must be set together")
	}
	return nil
}
