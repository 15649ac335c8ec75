// Package config defines the top-level configuration for the meme-coin
// trading bot and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MEMEBOT_* environment variables.
type Config struct {
	Feed     FeedConfig    `toml:"feed"`
	Market   MarketConfig  `toml:"market"`
	Engine   EngineConfig  `toml:"engine"`
	Wallet   WalletConfig  `toml:"wallet"`
	Venue    VenueConfig   `toml:"venue"`
	Journal  JournalConfig `toml:"journal"`
	Redis    RedisConfig   `toml:"redis"`
	Archive  ArchiveConfig `toml:"archive"`
	Server   ServerConfig  `toml:"server"`
	Notify   NotifyConfig  `toml:"notify"`
	Mode     string        `toml:"mode"`
	LogLevel string        `toml:"log_level"`
}

// FeedConfig holds social feed API parameters.
type FeedConfig struct {
	BaseURL     string   `toml:"base_url"`
	BearerToken string   `toml:"bearer_token"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// MarketConfig holds market data API parameters.
type MarketConfig struct {
	BaseURL string `toml:"base_url"`
}

// EngineConfig holds the decision engine constants.
type EngineConfig struct {
	Interval         duration `toml:"interval"`
	SearchQuery      string   `toml:"search_query"`
	SearchLimit      int      `toml:"search_limit"`
	DenyTerms        []string `toml:"deny_terms"`
	MaxOperations    int      `toml:"max_operations"`
	BudgetReset      string   `toml:"budget_reset"` // "utc-midnight" or "interval"
	BudgetWindow     duration `toml:"budget_window"`
	PriceCeiling     float64  `toml:"price_ceiling"`
	CapTarget        float64  `toml:"cap_target"`
	CapBand          float64  `toml:"cap_band"`
	MinMultiplier    float64  `toml:"min_multiplier"`
	MaxMultiplier    float64  `toml:"max_multiplier"`
	TradeSize        float64  `toml:"trade_size"`
	MaxOpenPositions int      `toml:"max_open_positions"`
	MaxHold          duration `toml:"max_hold"` // zero disables expiry
	CallTimeout      duration `toml:"call_timeout"`
	// Lexicon entries merged over the built-in sentiment lexicon.
	Lexicon map[string]float64 `toml:"lexicon"`
}

// WalletConfig holds the trading wallet credentials.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
	ChainID          int64  `toml:"chain_id"`
}

// VenueConfig selects and parameterizes the execution venue.
type VenueConfig struct {
	Kind           string   `toml:"kind"` // "sim" or "evm"
	RPCURL         string   `toml:"rpc_url"`
	RouterAddress  string   `toml:"router_address"`
	WETHAddress    string   `toml:"weth_address"`
	GasLimit       uint64   `toml:"gas_limit"`
	SlippageBps    int64    `toml:"slippage_bps"`
	ConfirmTimeout duration `toml:"confirm_timeout"`
	SwapDeadline   duration `toml:"swap_deadline"`
}

// JournalConfig holds PostgreSQL connection parameters for the optional
// trade journal and audit log.
type JournalConfig struct {
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

// RedisConfig holds Redis connection parameters for the optional shared-state
// backends (dedup store, cycle lock, rate limits, event bus).
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	SeenTTL    duration `toml:"seen_ttl"` // zero uses the store default
}

// ArchiveConfig holds S3-compatible object storage parameters for the
// optional journal retention archiver.
type ArchiveConfig struct {
	Enabled        bool     `toml:"enabled"`
	Endpoint       string   `toml:"endpoint"`
	Region         string   `toml:"region"`
	Bucket         string   `toml:"bucket"`
	AccessKey      string   `toml:"access_key"`
	SecretKey      string   `toml:"secret_key"`
	UseSSL         bool     `toml:"use_ssl"`
	ForcePathStyle bool     `toml:"force_path_style"`
	RetentionDays  int      `toml:"retention_days"`
	Interval       duration `toml:"interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"` // per-IP requests per rate_window; 0 disables
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken   string   `toml:"telegram_token"`
	TelegramChatID  string   `toml:"telegram_chat_id"`
	DiscordWebhook  string   `toml:"discord_webhook_url"`
	Events          []string `toml:"events"`
	CommandsEnabled bool     `toml:"commands_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "4h", "30s").
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
		Feed: FeedConfig{
			BaseURL:    "https://api.twitter.com",
			RateLimit:  180,
			RateWindow: duration{15 * time.Minute},
		},
		Market: MarketConfig{
			BaseURL: "https://api.dexscreener.com",
		},
		Engine: EngineConfig{
			Interval:         duration{4 * time.Hour},
			SearchQuery:      "memecoin",
			SearchLimit:      50,
			DenyTerms:        []string{"scam", "rug"},
			MaxOperations:    10,
			BudgetReset:      "utc-midnight",
			BudgetWindow:     duration{24 * time.Hour},
			PriceCeiling:     0.01,
			CapTarget:        5_000,
			CapBand:          0.5,
			MinMultiplier:    2,
			MaxMultiplier:    5,
			TradeSize:        0.1,
			MaxOpenPositions: 5,
			MaxHold:          duration{0},
			CallTimeout:      duration{15 * time.Second},
		},
		Wallet: WalletConfig{
			ChainID: 8453, // Base
		},
		Venue: VenueConfig{
			Kind:           "sim",
			GasLimit:       400_000,
			SlippageBps:    300,
			ConfirmTimeout: duration{2 * time.Minute},
			SwapDeadline:   duration{5 * time.Minute},
		},
		Journal: JournalConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "memebot",
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
		},
		Archive: ArchiveConfig{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "memebot-archive",
			UseSSL:         false,
			ForcePathStyle: true,
			RetentionDays:  90,
			Interval:       duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   0,
			RateWindow:  duration{time.Second},
		},
		Notify: NotifyConfig{
			Events:          nil, // empty allows every event
			CommandsEnabled: false,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"trade":   true,
	"monitor": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validBudgetResets enumerates the accepted values for engine.budget_reset.
var validBudgetResets = map[string]bool{
	"utc-midnight": true,
	"interval":     true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: trade, monitor, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Feed — every mode scans the social feed.
	if c.Feed.BearerToken == "" {
		errs = append(errs, "feed: bearer_token must be set")
	}
	if c.Feed.RateLimit < 1 {
		errs = append(errs, "feed: rate_limit must be >= 1")
	}
	if c.Feed.RateWindow.Duration <= 0 {
		errs = append(errs, "feed: rate_window must be positive")
	}

	// Engine
	if c.Engine.Interval.Duration <= 0 {
		errs = append(errs, "engine: interval must be positive")
	}
	if strings.TrimSpace(c.Engine.SearchQuery) == "" {
		errs = append(errs, "engine: search_query must not be empty")
	}
	if c.Engine.MaxOperations < 1 {
		errs = append(errs, "engine: max_operations must be >= 1")
	}
	if !validBudgetResets[c.Engine.BudgetReset] {
		errs = append(errs, fmt.Sprintf("engine: unknown budget_reset %q (valid: utc-midnight, interval)", c.Engine.BudgetReset))
	}
	if c.Engine.BudgetReset == "interval" && c.Engine.BudgetWindow.Duration <= 0 {
		errs = append(errs, "engine: budget_window must be positive for interval reset")
	}
	if c.Engine.PriceCeiling <= 0 {
		errs = append(errs, "engine: price_ceiling must be > 0")
	}
	if c.Engine.CapTarget <= 0 {
		errs = append(errs, "engine: cap_target must be > 0")
	}
	if c.Engine.CapBand <= 0 || c.Engine.CapBand >= 1 {
		errs = append(errs, fmt.Sprintf("engine: cap_band must be in (0, 1), got %g", c.Engine.CapBand))
	}
	if c.Engine.MinMultiplier < 2 || c.Engine.MinMultiplier > 5 {
		errs = append(errs, fmt.Sprintf("engine: min_multiplier must be in [2, 5], got %g", c.Engine.MinMultiplier))
	}
	if c.Engine.MaxMultiplier < 2 || c.Engine.MaxMultiplier > 5 {
		errs = append(errs, fmt.Sprintf("engine: max_multiplier must be in [2, 5], got %g", c.Engine.MaxMultiplier))
	}
	if c.Engine.MaxMultiplier < c.Engine.MinMultiplier {
		errs = append(errs, "engine: max_multiplier must not be less than min_multiplier")
	}
	if c.Engine.TradeSize <= 0 {
		errs = append(errs, "engine: trade_size must be > 0")
	}
	if c.Engine.MaxOpenPositions < 1 {
		errs = append(errs, "engine: max_open_positions must be >= 1")
	}

	// Venue
	venueKind := strings.ToLower(c.Venue.Kind)
	if venueKind != "sim" && venueKind != "evm" {
		errs = append(errs, fmt.Sprintf("venue: unknown kind %q (valid: sim, evm)", c.Venue.Kind))
	}
	if venueKind == "evm" {
		if c.Venue.RPCURL == "" {
			errs = append(errs, "venue: rpc_url is required for the evm venue")
		}
		if c.Venue.RouterAddress == "" {
			errs = append(errs, "venue: router_address is required for the evm venue")
		}
		if c.Venue.WETHAddress == "" {
			errs = append(errs, "venue: weth_address is required for the evm venue")
		}
		if c.Venue.SlippageBps < 0 || c.Venue.SlippageBps >= 10_000 {
			errs = append(errs, fmt.Sprintf("venue: slippage_bps must be in [0, 10000), got %d", c.Venue.SlippageBps))
		}

		// Wallet — only the evm venue signs anything.
		if c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
			errs = append(errs, "wallet: either private_key or encrypted_key_path must be set for the evm venue")
		}
		if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
			errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
		}
		if c.Wallet.ChainID <= 0 {
			errs = append(errs, fmt.Sprintf("wallet: chain_id must be positive, got %d", c.Wallet.ChainID))
		}
	}

	// Journal
	if c.Journal.Enabled {
		if strings.TrimSpace(c.Journal.DSN) == "" {
			if c.Journal.Host == "" {
				errs = append(errs, "journal: host must not be empty (or set journal.dsn)")
			}
			if c.Journal.Port <= 0 || c.Journal.Port > 65535 {
				errs = append(errs, fmt.Sprintf("journal: port must be 1-65535, got %d", c.Journal.Port))
			}
			if c.Journal.Database == "" {
				errs = append(errs, "journal: database must not be empty")
			}
		}
		if c.Journal.PoolMaxConns < 1 {
			errs = append(errs, "journal: pool_max_conns must be >= 1")
		}
		if c.Journal.PoolMinConns < 0 {
			errs = append(errs, "journal: pool_min_conns must be >= 0")
		}
		if c.Journal.PoolMinConns > c.Journal.PoolMaxConns {
			errs = append(errs, "journal: pool_min_conns must not exceed pool_max_conns")
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

	// Archive
	if c.Archive.Enabled {
		if !c.Journal.Enabled {
			errs = append(errs, "archive: requires journal.enabled (the archiver exports journal rows)")
		}
		if c.Archive.Endpoint == "" {
			errs = append(errs, "archive: endpoint must not be empty")
		}
		if c.Archive.Bucket == "" {
			errs = append(errs, "archive: bucket must not be empty")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be positive")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be positive when rate_limit is set")
		}
	}

	// Notify — token and chat ID only work as a pair.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}
	if c.Notify.CommandsEnabled && !(tt && tc) {
		errs = append(errs, "notify: commands_enabled requires telegram_token and telegram_chat_id")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
