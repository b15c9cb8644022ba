package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DOJI_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DOJI_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Terminal ──
	setStr(&cfg.Terminal.BaseURL, "DOJI_TERMINAL_BASE_URL")
	setDuration(&cfg.Terminal.Timeout, "DOJI_TERMINAL_TIMEOUT")
	setBool(&cfg.Terminal.UseMock, "DOJI_TERMINAL_USE_MOCK")
	setBool(&cfg.Terminal.UseMock, "USE_MOCK_MT5") // compatibility alias

	// ── Trading ──
	setDuration(&cfg.Trading.VerifySettle, "DOJI_TRADING_VERIFY_SETTLE")
	setDuration(&cfg.Trading.VerifyInterval, "DOJI_TRADING_VERIFY_INTERVAL")
	setDuration(&cfg.Trading.VerifyMaxWait, "DOJI_TRADING_VERIFY_MAX_WAIT")
	setFloat64(&cfg.Trading.PriceTolerance, "DOJI_TRADING_PRICE_TOLERANCE")
	setDuration(&cfg.Trading.DedupWindow, "DOJI_TRADING_DEDUP_WINDOW")
	setBool(&cfg.Trading.SerializeAccount, "DOJI_TRADING_SERIALIZE_ACCOUNT")
	setDuration(&cfg.Trading.AccountLockTTL, "DOJI_TRADING_ACCOUNT_LOCK_TTL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "DOJI_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "DOJI_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DOJI_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "DOJI_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "DOJI_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "DOJI_REDIS_TLS_ENABLED")

	// ── Server ──
	setInt(&cfg.Server.Port, "DOJI_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "DOJI_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "DOJI_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "DOJI_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "DOJI_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "DOJI_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "DOJI_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "DOJI_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
