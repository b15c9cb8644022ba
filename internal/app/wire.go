package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/cache/redis"
	"github.com/Clover403/Doji-Hunter/internal/config"
	"github.com/Clover403/Doji-Hunter/internal/domain"
	"github.com/Clover403/Doji-Hunter/internal/executor"
	"github.com/Clover403/Doji-Hunter/internal/notify"
	"github.com/Clover403/Doji-Hunter/internal/platform/mt5"
	"github.com/Clover403/Doji-Hunter/internal/server"
	"github.com/Clover403/Doji-Hunter/internal/server/handler"
	"github.com/Clover403/Doji-Hunter/internal/server/ws"
	"github.com/Clover403/Doji-Hunter/internal/service"
)

// Dependencies bundles everything the running gateway needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Venue        domain.Venue
	Orchestrator *executor.Orchestrator
	Server       *server.Server
	Hub          *ws.Hub

	// Redis-backed collaborators; nil when Redis is not configured.
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
//
// Connecting to the terminal happens here and its failure is a returned
// error: the process refuses to come up serving a venue it could never
// reach. A session that drops later is reported by the readiness probe
// instead.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Venue ---
	if cfg.Terminal.UseMock {
		logger.Warn("mock venue enabled, no real trades will execute")
		deps.Venue = mt5.NewMock()
	} else {
		deps.Venue = mt5.NewClient(cfg.Terminal.BaseURL, cfg.Terminal.Timeout.Duration)
	}
	if err := deps.Venue.InitializeSession(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: initialize terminal session: %w", err)
	}

	// --- Redis (optional) ---
	if cfg.Redis.Addr != "" {
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
			return nil, nil, fmt.Errorf("app: connect redis: %w", err)
		}
		closers = append(closers, func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.Warn("redis close failed", slog.String("error", cerr.Error()))
			}
		})

		deps.LockManager = redis.NewLockManager(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.Hub = ws.NewHub(deps.SignalBus, logger)
	}

	// --- Notifications (optional) ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	// --- Services ---
	healthSvc := service.NewHealthService(deps.Venue, logger)
	orderSvc := service.NewOrderService(deps.Venue, logger)
	marketSvc := service.NewMarketService(deps.Venue, logger)
	positionSvc := service.NewPositionService(deps.Venue, logger)
	accountSvc := service.NewAccountService(deps.Venue, logger)

	// --- Order lifecycle ---
	verifier := executor.NewVerifier(deps.Venue, executor.VerifierConfig{
		Settle:         cfg.Trading.VerifySettle.Duration,
		Interval:       cfg.Trading.VerifyInterval.Duration,
		MaxWait:        cfg.Trading.VerifyMaxWait.Duration,
		PriceTolerance: cfg.Trading.PriceTolerance,
	}, logger)

	dedup := executor.NewDedup(cfg.Trading.DedupWindow.Duration)

	orch := executor.NewOrchestrator(healthSvc, orderSvc, verifier, positionSvc, dedup, logger)
	if cfg.Trading.SerializeAccount && deps.LockManager != nil {
		orch = orch.WithAccountLock(deps.LockManager, cfg.Trading.AccountLockTTL.Duration)
	}
	if deps.SignalBus != nil {
		orch = orch.WithSignalBus(deps.SignalBus)
	}
	if deps.Notifier != nil {
		orch = orch.WithNotifier(deps.Notifier)
	}
	deps.Orchestrator = orch

	// --- HTTP server ---
	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(healthSvc, logger),
		Markets:   handler.NewMarketHandler(marketSvc, logger),
		Positions: handler.NewPositionHandler(positionSvc, healthSvc, logger),
		Orders:    handler.NewOrderHandler(orch, logger),
		Account:   handler.NewAccountHandler(accountSvc, logger),
	}
	deps.Server = server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKey:      cfg.Server.APIKey,
	}, handlers, deps.Hub, logger)

	return deps, cleanup, nil
}
