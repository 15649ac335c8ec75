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
// built-in defaults, applies MEMEBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MEMEBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Feed ──
	setStr(&cfg.Feed.BaseURL, "MEMEBOT_FEED_BASE_URL")
	setStr(&cfg.Feed.BearerToken, "MEMEBOT_FEED_BEARER_TOKEN")
	setInt(&cfg.Feed.RateLimit, "MEMEBOT_FEED_RATE_LIMIT")
	setDuration(&cfg.Feed.RateWindow, "MEMEBOT_FEED_RATE_WINDOW")

	// ── Market ──
	setStr(&cfg.Market.BaseURL, "MEMEBOT_MARKET_BASE_URL")

	// ── Engine ──
	setDuration(&cfg.Engine.Interval, "MEMEBOT_ENGINE_INTERVAL")
	setStr(&cfg.Engine.SearchQuery, "MEMEBOT_ENGINE_SEARCH_QUERY")
	setInt(&cfg.Engine.SearchLimit, "MEMEBOT_ENGINE_SEARCH_LIMIT")
	setStringSlice(&cfg.Engine.DenyTerms, "MEMEBOT_ENGINE_DENY_TERMS")
	setInt(&cfg.Engine.MaxOperations, "MEMEBOT_ENGINE_MAX_OPERATIONS")
	setStr(&cfg.Engine.BudgetReset, "MEMEBOT_ENGINE_BUDGET_RESET")
	setDuration(&cfg.Engine.BudgetWindow, "MEMEBOT_ENGINE_BUDGET_WINDOW")
	setFloat64(&cfg.Engine.PriceCeiling, "MEMEBOT_ENGINE_PRICE_CEILING")
	setFloat64(&cfg.Engine.CapTarget, "MEMEBOT_ENGINE_CAP_TARGET")
	setFloat64(&cfg.Engine.CapBand, "MEMEBOT_ENGINE_CAP_BAND")
	setFloat64(&cfg.Engine.MinMultiplier, "MEMEBOT_ENGINE_MIN_MULTIPLIER")
	setFloat64(&cfg.Engine.MaxMultiplier, "MEMEBOT_ENGINE_MAX_MULTIPLIER")
	setFloat64(&cfg.Engine.TradeSize, "MEMEBOT_ENGINE_TRADE_SIZE")
	setInt(&cfg.Engine.MaxOpenPositions, "MEMEBOT_ENGINE_MAX_OPEN_POSITIONS")
	setDuration(&cfg.Engine.MaxHold, "MEMEBOT_ENGINE_MAX_HOLD")
	setDuration(&cfg.Engine.CallTimeout, "MEMEBOT_ENGINE_CALL_TIMEOUT")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "MEMEBOT_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "MEMEBOT_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "MEMEBOT_WALLET_KEY_PASSWORD")
	setInt64(&cfg.Wallet.ChainID, "MEMEBOT_WALLET_CHAIN_ID")

	// ── Venue ──
	setStr(&cfg.Venue.Kind, "MEMEBOT_VENUE_KIND")
	setStr(&cfg.Venue.RPCURL, "MEMEBOT_VENUE_RPC_URL")
	setStr(&cfg.Venue.RouterAddress, "MEMEBOT_VENUE_ROUTER_ADDRESS")
	setStr(&cfg.Venue.WETHAddress, "MEMEBOT_VENUE_WETH_ADDRESS")
	setUint64(&cfg.Venue.GasLimit, "MEMEBOT_VENUE_GAS_LIMIT")
	setInt64(&cfg.Venue.SlippageBps, "MEMEBOT_VENUE_SLIPPAGE_BPS")
	setDuration(&cfg.Venue.ConfirmTimeout, "MEMEBOT_VENUE_CONFIRM_TIMEOUT")
	setDuration(&cfg.Venue.SwapDeadline, "MEMEBOT_VENUE_SWAP_DEADLINE")

	// ── Journal ──
	setBool(&cfg.Journal.Enabled, "MEMEBOT_JOURNAL_ENABLED")
	setStr(&cfg.Journal.DSN, "MEMEBOT_JOURNAL_DSN")
	setStr(&cfg.Journal.Host, "MEMEBOT_JOURNAL_HOST")
	setInt(&cfg.Journal.Port, "MEMEBOT_JOURNAL_PORT")
	setStr(&cfg.Journal.Database, "MEMEBOT_JOURNAL_DATABASE")
	setStr(&cfg.Journal.User, "MEMEBOT_JOURNAL_USER")
	setStr(&cfg.Journal.Password, "MEMEBOT_JOURNAL_PASSWORD")
	setStr(&cfg.Journal.SSLMode, "MEMEBOT_JOURNAL_SSL_MODE")
	setInt(&cfg.Journal.PoolMaxConns, "MEMEBOT_JOURNAL_POOL_MAX_CONNS")
	setInt(&cfg.Journal.PoolMinConns, "MEMEBOT_JOURNAL_POOL_MIN_CONNS")
	setBool(&cfg.Journal.RunMigrations, "MEMEBOT_JOURNAL_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MEMEBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MEMEBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MEMEBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MEMEBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MEMEBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MEMEBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MEMEBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.SeenTTL, "MEMEBOT_REDIS_SEEN_TTL")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "MEMEBOT_ARCHIVE_ENABLED")
	setStr(&cfg.Archive.Endpoint, "MEMEBOT_ARCHIVE_ENDPOINT")
	setStr(&cfg.Archive.Region, "MEMEBOT_ARCHIVE_REGION")
	setStr(&cfg.Archive.Bucket, "MEMEBOT_ARCHIVE_BUCKET")
	setStr(&cfg.Archive.AccessKey, "MEMEBOT_ARCHIVE_ACCESS_KEY")
	setStr(&cfg.Archive.SecretKey, "MEMEBOT_ARCHIVE_SECRET_KEY")
	setBool(&cfg.Archive.UseSSL, "MEMEBOT_ARCHIVE_USE_SSL")
	setBool(&cfg.Archive.ForcePathStyle, "MEMEBOT_ARCHIVE_FORCE_PATH_STYLE")
	setInt(&cfg.Archive.RetentionDays, "MEMEBOT_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "MEMEBOT_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "MEMEBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "MEMEBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MEMEBOT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "MEMEBOT_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "MEMEBOT_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "MEMEBOT_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MEMEBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MEMEBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhook, "MEMEBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MEMEBOT_NOTIFY_EVENTS")
	setBool(&cfg.Notify.CommandsEnabled, "MEMEBOT_NOTIFY_COMMANDS_ENABLED")

	// ── Top-level ──
	setStr(&cfg.Mode, "MEMEBOT_MODE")
	setStr(&cfg.LogLevel, "MEMEBOT_LOG_LEVEL")
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

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
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
