package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/alphanest/arbscan/internal/blob/s3"
	"github.com/alphanest/arbscan/internal/cache"
	"github.com/alphanest/arbscan/internal/cache/redis"
	"github.com/alphanest/arbscan/internal/config"
	"github.com/alphanest/arbscan/internal/domain"
	"github.com/alphanest/arbscan/internal/engine"
	"github.com/alphanest/arbscan/internal/exchange"
	"github.com/alphanest/arbscan/internal/metrics"
	"github.com/alphanest/arbscan/internal/notify"
	"github.com/alphanest/arbscan/internal/queue"
	"github.com/alphanest/arbscan/internal/store/postgres"
	"github.com/alphanest/arbscan/internal/tools"
)

// Dependencies bundles every dependency that the application modes need to
// operate. Optional backends (Postgres, Redis, S3, Kafka) are nil when not
// enabled in configuration; modes degrade gracefully around them.
type Dependencies struct {
	// Detection
	Connectors []exchange.Connector
	Tickers    *cache.TickerCache
	Engine     *engine.Engine

	// Persistence and caching
	OpportunityStore domain.OpportunityStore
	ResultCache      domain.ResultCache
	SignalBus        domain.SignalBus
	RateLimiter      domain.RateLimiter
	BlobWriter       domain.BlobWriter

	// Publishing
	Publisher *queue.Publisher

	// Observability and notifications
	Metrics  *metrics.Recorder
	Notifier *notify.Notifier

	// Optional chat interface over the detection tools.
	Assistant *tools.Assistant
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

	// --- Exchange connectors and detection engine ---
	exchangeCfgs := make(map[string]exchange.Config, len(cfg.Exchanges))
	for name, ec := range cfg.Exchanges {
		exchangeCfgs[strings.ToLower(name)] = exchange.Config{
			BaseURL:   ec.BaseURL,
			APIKey:    ec.APIKey,
			APISecret: ec.APISecret,
			Timeout:   ec.Timeout.Duration,
		}
	}
	deps.Connectors = exchange.All(exchangeCfgs)
	deps.Tickers = cache.NewTickerCache(cfg.Detector.CacheTTL.Duration)

	eng, err := engine.New(engine.Config{
		WatchList:       cfg.Detector.WatchSymbols,
		MinNetProfitPct: cfg.Detector.MinNetProfitPct,
		DemoMode:        cfg.Detector.DemoMode,
		Bidirectional:   cfg.Detector.Bidirectional,
		NotionalUSD:     cfg.Detector.NotionalUSD,
		FetchTimeout:    cfg.Detector.FetchTimeout.Duration,
	}, deps.Connectors, deps.Tickers, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: engine: %w", err)
	}
	deps.Engine = eng

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.OpportunityStore = postgres.NewOpportunityStore(pgClient.Pool())
	}

	// --- Redis ---
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

		deps.ResultCache = redis.NewResultCache(redisClient, cfg.Redis.ResultTTL.Duration)
		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- S3 blob storage ---
	if cfg.S3.Enabled {
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

		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	// --- Kafka ---
	if cfg.Kafka.Enabled {
		writer, err := queue.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kafka: %w", err)
		}
		deps.Publisher = queue.NewPublisher(writer)
		closers = append(closers, func() { _ = deps.Publisher.Close() })
	}

	// --- Metrics ---
	deps.Metrics = metrics.New()

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Assistant ---
	if cfg.Assistant.Enabled {
		assistant, err := tools.NewAssistant(tools.AssistantConfig{
			APIKey:  cfg.Assistant.APIKey,
			BaseURL: cfg.Assistant.BaseURL,
			Model:   cfg.Assistant.Model,
			Timeout: cfg.Assistant.Timeout.Duration,
		}, tools.NewDispatcher(eng))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: assistant: %w", err)
		}
		deps.Assistant = assistant
	}

	return deps, cleanup, nil
}
