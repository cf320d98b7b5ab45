package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pretium/internal/common"
	"github.com/ternarybob/pretium/internal/handlers"
	"github.com/ternarybob/pretium/internal/interfaces"
	"github.com/ternarybob/pretium/internal/logs"
	"github.com/ternarybob/pretium/internal/metrics"
	"github.com/ternarybob/pretium/internal/services/market"
	"github.com/ternarybob/pretium/internal/services/scheduler"
)

// refreshJobName is the registered name of the cache warm job.
const refreshJobName = "warm-refresh"

// App holds all application components and dependencies
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Metrics *metrics.Metrics

	// Market data pipeline
	MarketService interfaces.MarketService

	// Background refresh
	SchedulerService interfaces.SchedulerService

	// Activity log ring fed from arbor's context channel
	LogBuffer   *logs.Buffer
	LogConsumer *logs.Consumer

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	MarketHandler    *handlers.MarketHandler
	SearchHandler    *handlers.SearchHandler
	StatusHandler    *handlers.StatusHandler
	SchedulerHandler *handlers.SchedulerHandler
	LogsHandler      *handlers.LogsHandler

	startedAt time.Time
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		startedAt: time.Now(),
	}

	// Activity ring must exist before any service logs, so recent
	// entries from startup are queryable.
	app.LogBuffer = logs.NewBuffer(cfg.Logging.ActivityBuffer)

	logConsumer := logs.NewConsumer(app.LogBuffer, logger, cfg.Logging.MinActivityLevel)
	if err := logConsumer.Start(); err != nil {
		return nil, fmt.Errorf("failed to start log consumer: %w", err)
	}
	app.LogConsumer = logConsumer

	// Route arbor's context channel into the consumer.
	app.Logger.SetChannel("context", logConsumer.GetChannel())

	app.Metrics = metrics.New()

	// Market service owns the full fetch pipeline: session, transport,
	// resolver, extractor, caches, detector, news.
	app.MarketService = market.NewService(cfg, logger, app.Metrics)

	app.SchedulerService = scheduler.NewService(logger)
	if err := app.registerRefreshJob(); err != nil {
		return nil, fmt.Errorf("failed to register refresh job: %w", err)
	}
	if err := app.SchedulerService.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("source", cfg.Source.BaseURL).
		Bool("consolidated", cfg.Source.Consolidated).
		Bool("news_enabled", cfg.News.Enabled).
		Int("refresh_symbols", len(cfg.Refresh.Symbols)).
		Msg("Application initialization complete")

	return app, nil
}

// registerRefreshJob wires the cache warm job when symbols are configured.
// With no symbols the job is skipped entirely rather than registered idle.
func (a *App) registerRefreshJob() error {
	symbols := a.Config.Refresh.Symbols
	if len(symbols) == 0 {
		a.Logger.Debug().Msg("No refresh symbols configured, warm job not registered")
		return nil
	}

	handler := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return a.MarketService.WarmSymbols(ctx, symbols)
	}

	return a.SchedulerService.RegisterJob(
		refreshJobName,
		a.Config.Refresh.Schedule,
		"Refresh quote and chart caches for configured symbols",
		handler,
	)
}

// initHandlers initializes HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.MarketHandler = handlers.NewMarketHandler(a.MarketService, a.Logger)
	a.SearchHandler = handlers.NewSearchHandler(a.MarketService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.MarketService, a.SchedulerService, a.startedAt, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)
	a.LogsHandler = handlers.NewLogsHandler(a.LogBuffer, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	// Stop scheduler service
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	// Stop log consumer last so shutdown messages still reach the ring
	if a.LogConsumer != nil {
		if err := a.LogConsumer.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop log consumer")
		}
	}

	return nil
}
