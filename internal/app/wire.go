package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/noor961/Meme-coin--7/internal/blob/s3"
	"github.com/noor961/Meme-coin--7/internal/cache/redis"
	"github.com/noor961/Meme-coin--7/internal/config"
	"github.com/noor961/Meme-coin--7/internal/crypto"
	"github.com/noor961/Meme-coin--7/internal/domain"
	"github.com/noor961/Meme-coin--7/internal/feed"
	"github.com/noor961/Meme-coin--7/internal/notify"
	"github.com/noor961/Meme-coin--7/internal/platform/dexscreener"
	"github.com/noor961/Meme-coin--7/internal/rank"
	"github.com/noor961/Meme-coin--7/internal/sentiment"
	"github.com/noor961/Meme-coin--7/internal/store/postgres"
	"github.com/noor961/Meme-coin--7/internal/venue"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function. The engine collaborators are always present;
// everything else is nil when its backend is disabled in config, and the
// engine degrades gracefully around the gaps.
type Dependencies struct {
	// Engine collaborators
	Feed   domain.SocialFeed
	Market domain.MarketData
	Venue  domain.ExecutionVenue
	Ranker *rank.Ranker

	// Shared state (nil unless redis.enabled)
	Seen    domain.SeenStore
	Locks   domain.LockManager
	Limiter domain.RateLimiter
	Bus     domain.EventBus

	// Persistence (nil unless journal.enabled)
	Journal domain.TradeJournal
	Audit   domain.AuditStore

	// Cold storage (nil unless archive.enabled)
	Archiver domain.Archiver

	// Notifications
	Notifier *notify.Notifier

	// Backend handles, kept for the health endpoint's connectivity checks.
	Redis    *redis.Client
	Postgres *postgres.Client
	Blob     *s3blob.Client
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis (optional: post dedup, cycle lock, rate limits, event bus) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Redis = redisClient
		deps.Seen = redis.NewSeenStore(redisClient, cfg.Redis.SeenTTL.Duration)
		deps.Locks = redis.NewLockManager(redisClient)
		deps.Limiter = redis.NewRateLimiter(redisClient)
		deps.Bus = redis.NewEventBus(redisClient)
	}

	// --- PostgreSQL (optional: trade journal + audit log) ---
	if cfg.Journal.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Journal.DSN,
			Host:     cfg.Journal.Host,
			Port:     cfg.Journal.Port,
			Database: cfg.Journal.Database,
			User:     cfg.Journal.User,
			Password: cfg.Journal.Password,
			SSLMode:  cfg.Journal.SSLMode,
			MaxConns: cfg.Journal.PoolMaxConns,
			MinConns: cfg.Journal.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Journal.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.Postgres = pgClient
		deps.Journal = postgres.NewJournalStore(pool)
		deps.Audit = postgres.NewAuditStore(pool)
	}

	// --- S3 (optional: journal cold storage) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.Archive.Endpoint,
			Region:         cfg.Archive.Region,
			Bucket:         cfg.Archive.Bucket,
			AccessKey:      cfg.Archive.AccessKey,
			SecretKey:      cfg.Archive.SecretKey,
			UseSSL:         cfg.Archive.UseSSL,
			ForcePathStyle: cfg.Archive.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Blob = s3Client
		// Archiver only when the journal it exports from is wired too.
		// Validate enforces this pairing; the guard keeps Wire self-contained.
		if deps.Journal != nil && deps.Audit != nil {
			deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.Journal, deps.Audit)
		}
	}

	// --- Engine collaborators ---
	deps.Feed = feed.NewTwitterClient(feed.TwitterConfig{
		BaseURL:     cfg.Feed.BaseURL,
		BearerToken: cfg.Feed.BearerToken,
		RateLimit:   cfg.Feed.RateLimit,
		RateWindow:  cfg.Feed.RateWindow.Duration,
	}, deps.Limiter)

	deps.Market = dexscreener.NewClient(cfg.Market.BaseURL)

	deps.Ranker = rank.NewRanker(sentiment.NewScorer(cfg.Engine.Lexicon), cfg.Engine.DenyTerms)

	execVenue, venueClose, err := buildVenue(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: venue: %w", err)
	}
	if venueClose != nil {
		closers = append(closers, venueClose)
	}
	deps.Venue = execVenue

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhook != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhook))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// buildVenue constructs the configured execution venue. The sim venue needs no
// credentials; the evm venue loads the wallet key and dials the RPC endpoint.
// The returned close function is nil when the venue holds no connection.
func buildVenue(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ExecutionVenue, func(), error) {
	switch strings.ToLower(cfg.Venue.Kind) {
	case "", "sim":
		return venue.NewSimulator(logger), nil, nil

	case "evm":
		keyHex, err := crypto.LoadKey(crypto.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("load wallet key: %w", err)
		}
		wallet, err := crypto.NewWallet(keyHex, cfg.Wallet.ChainID)
		if err != nil {
			return nil, nil, fmt.Errorf("create wallet: %w", err)
		}
		router, err := venue.NewRouter(ctx, venue.RouterConfig{
			RPCURL:         cfg.Venue.RPCURL,
			RouterAddress:  cfg.Venue.RouterAddress,
			WETHAddress:    cfg.Venue.WETHAddress,
			GasLimit:       cfg.Venue.GasLimit,
			SlippageBps:    cfg.Venue.SlippageBps,
			ConfirmTimeout: cfg.Venue.ConfirmTimeout.Duration,
			SwapDeadline:   cfg.Venue.SwapDeadline.Duration,
		}, wallet, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create router: %w", err)
		}
		return router, router.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown kind %q", cfg.Venue.Kind)
	}
}
