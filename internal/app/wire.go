package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	s3blob "solarb/internal/blob/s3"
	"solarb/internal/cache/redis"
	"solarb/internal/chain/solana"
	"solarb/internal/config"
	"solarb/internal/domain"
	"solarb/internal/engine"
	"solarb/internal/notify"
	"solarb/internal/platform/jupiter"
	"solarb/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	ConfigStore      domain.BotConfigStore
	OpportunityStore domain.OpportunityStore
	TradeStore       domain.TradeStore
	SignalBus        domain.SignalBus

	Quotes domain.QuoteSource
	Chain  domain.ChainClient

	Engine   *engine.Engine
	Notifier *notify.Notifier
	Watcher  *notify.Watcher
	Archiver *s3blob.Archiver

	// DefaultConfigID is the stored configuration seeded from the [bot]
	// section; start requests without an explicit id use it.
	DefaultConfigID string
}

// Wire constructs the concrete dependency implementations from the given
// configuration, returning them with a cleanup function for shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.ConfigStore = postgres.NewBotConfigStore(pool)
	deps.OpportunityStore = postgres.NewOpportunityStore(pool)
	deps.TradeStore = postgres.NewTradeStore(pool)

	// --- Redis signal bus ---
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
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- Quote source and chain client ---
	deps.Quotes = jupiter.NewClient(
		cfg.Jupiter.Host,
		time.Duration(cfg.Jupiter.TimeoutSeconds)*time.Second,
	)
	deps.Chain = solana.NewClient(solana.ClientConfig{
		RPCEndpoint:    cfg.Solana.RPCEndpoint,
		ConfirmTimeout: time.Duration(cfg.Solana.ConfirmTimeoutSec) * time.Second,
		ConfirmPoll:    time.Duration(cfg.Solana.ConfirmPollMs) * time.Millisecond,
		SkipPreflight:  cfg.Solana.SkipPreflight,
	}, logger)

	// --- Engine ---
	evaluator := engine.NewEvaluator(deps.Quotes, logger)
	trader := engine.NewTrader(deps.Quotes, deps.Chain, evaluator, logger)
	recorder := engine.NewRecorder(deps.OpportunityStore, deps.TradeStore, logger)
	broadcaster := engine.NewBroadcaster(deps.SignalBus, logger)
	deps.Engine = engine.New(evaluator, trader, recorder, broadcaster, deps.Chain, logger)

	// --- Default configuration seeding ---
	defaultID, err := seedDefaultConfig(ctx, deps.ConfigStore, cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: seed default config: %w", err)
	}
	deps.DefaultConfigID = defaultID

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	if len(senders) > 0 {
		deps.Watcher = notify.NewWatcher(deps.SignalBus, deps.Notifier, logger)
	}

	// --- S3 archiver (optional) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		retention := time.Duration(cfg.S3.RetentionDays) * 24 * time.Hour
		deps.Archiver = s3blob.NewArchiver(
			s3blob.NewWriter(s3Client),
			deps.TradeStore,
			deps.OpportunityStore,
			retention,
			logger,
		)
	}

	return deps, cleanup, nil
}

// seedDefaultConfig makes sure the [bot] section exists as a stored
// configuration, matching by name, and returns its id. The stored row wins
// over the file for everything except the private key, which never persists
// from the file on reruns.
func seedDefaultConfig(ctx context.Context, store domain.BotConfigStore, cfg *config.Config) (string, error) {
	configs, err := store.List(ctx)
	if err != nil {
		return "", err
	}
	for i := range configs {
		if configs[i].Name == cfg.Bot.Name {
			return configs[i].ID, nil
		}
	}

	now := time.Now().UTC()
	seeded := &domain.BotConfig{
		ID:              uuid.NewString(),
		Name:            cfg.Bot.Name,
		TokenASymbol:    cfg.Bot.TokenASymbol,
		TokenAMint:      cfg.Bot.TokenAMint,
		TokenADecimals:  cfg.Bot.TokenADecimals,
		TokenBSymbol:    cfg.Bot.TokenBSymbol,
		TokenBMint:      cfg.Bot.TokenBMint,
		TokenBDecimals:  cfg.Bot.TokenBDecimals,
		ProfitThreshold: cfg.Bot.ProfitThreshold,
		MaxTradeAmount:  cfg.Bot.MaxTradeAmount,
		ScanIntervalSec: cfg.Bot.ScanIntervalSec,
		SlippageBps:     cfg.Bot.SlippageBps,
		MockMode:        cfg.Bot.MockMode,
		PrivateKey:      cfg.Wallet.PrivateKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := store.Create(ctx, seeded); err != nil {
		return "", err
	}
	return seeded.ID, nil
}
