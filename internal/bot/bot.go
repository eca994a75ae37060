// Package bot assembles the finance assistant and owns its lifecycle: the
// ledger, the classification oracle, the inbound channel and the health
// server are created by New, run by Run and released by Close.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/backend"
	"dompet/internal/cache"
	"dompet/internal/config"
	apihttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/oracle"
	"dompet/internal/oracle/gemini"
	"dompet/internal/oracle/rules"
	"dompet/internal/services"
	"dompet/internal/worker"
)

const cacheSweepInterval = 10 * time.Minute

// Core is the channel-independent part of the assistant.
type Core struct {
	Service *services.FinanceService
	Ledger  *backend.BackendResult
	Janitor *cache.Janitor
}

// NewCore opens the ledger and builds the finance service around it.
func NewCore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Core, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	ledger, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create ledger backend: %w", err)
	}

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	classifier, err := newOracleBackend(ctx, cfg, now, loc)
	if err != nil {
		ledger.Cleanup()
		return nil, err
	}

	janitor := cache.NewJanitor(logger)
	var categories cache.Cache[string]
	if cfg.CategoryCacheSize > 0 {
		lru := cache.NewLRUCache[string](cfg.CategoryCacheSize, cfg.CategoryCacheTTL)
		janitor.Register(lru)
		categories = lru
	}

	svc := services.NewFinanceService(ledger.Ledger, oracle.New(classifier, categories, logger),
		services.WithClock(now),
		services.WithMaxRows(cfg.LedgerMaxRows),
		services.WithSourceTag(cfg.SourceTag),
		services.WithLogger(logger))

	logger.InfoContext(ctx, "Finance service ready",
		"backend", cfg.DataBackend,
		"oracle", cfg.Oracle,
		"timezone", loc.String())

	return &Core{Service: svc, Ledger: ledger, Janitor: janitor}, nil
}

func newOracleBackend(ctx context.Context, cfg *config.Config, now func() time.Time, loc *time.Location) (oracle.Backend, error) {
	switch cfg.Oracle {
	case config.OracleGemini:
		b, err := gemini.New(ctx, gemini.Options{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			Now:      now,
			Location: loc,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini oracle: %w", err)
		}
		return b, nil
	case config.OracleRules, "":
		return rules.New(now), nil
	default:
		return nil, fmt.Errorf("unknown oracle %q", cfg.Oracle)
	}
}

// Close releases the ledger.
func (c *Core) Close() error {
	if c.Ledger != nil && c.Ledger.Cleanup != nil {
		return c.Ledger.Cleanup()
	}
	return nil
}

// Bot is the long-running assistant process.
type Bot struct {
	*Core
	cfg    *config.Config
	logger *log.Logger
	server *apihttp.Server
	broker *amqp.Client
}

// New builds the core, the HTTP server and, for the amqp channel, connects
// to the broker. Connecting retries until ctx is done.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Bot, error) {
	logger = logger.WithComponent(log.ComponentBot)

	core, err := NewCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	server, err := apihttp.NewServer(apihttp.Options{
		Addr:              ":" + cfg.Port,
		AcceptMessages:    cfg.Channel == config.ChannelHTTP,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:    cfg.TrustedProxyList(),
	}, core.Service, logger)
	if err != nil {
		core.Close()
		return nil, err
	}
	server.AddReadinessCheck("ledger", core.Ledger.Ready)

	b := &Bot{Core: core, cfg: cfg, logger: logger, server: server}

	if cfg.Channel == config.ChannelAMQP {
		broker, err := amqp.Connect(ctx, amqp.Config{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			Queue:      cfg.AMQPQueue,
			ReplyQueue: cfg.AMQPReplyQueue,
		}, logger)
		if err != nil {
			core.Close()
			return nil, fmt.Errorf("connect chat bridge: %w", err)
		}
		b.broker = broker
		server.AddReadinessCheck("amqp", broker.Ping)
	}

	return b, nil
}

// Run serves the channel, the health server and the cache janitor until ctx
// is done or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return b.server.Run(ctx) })
	g.Go(func() error { return b.Janitor.Run(ctx, cacheSweepInterval) })

	if b.broker != nil {
		w := worker.NewMessageWorker(b.Service, b.broker, b.logger)
		g.Go(func() error { return b.broker.Consume(ctx, w.HandleMessage) })
	}

	b.logger.InfoContext(ctx, "Bot running", "channel", b.cfg.Channel, "port", b.cfg.Port)
	return g.Wait()
}

// Close disconnects from the broker and releases the ledger.
func (b *Bot) Close() error {
	var errs []error
	if b.broker != nil {
		if err := b.broker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close broker: %w", err))
		}
	}
	if err := b.Core.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close ledger: %w", err))
	}
	return errors.Join(errs...)
}
