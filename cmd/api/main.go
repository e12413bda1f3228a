package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoshop/internal/api"
	"autoshop/internal/clock"
	"autoshop/internal/config"
	"autoshop/internal/database"
	"autoshop/internal/domain"
	"autoshop/internal/events"
	"autoshop/internal/google"
	"autoshop/internal/logging"
	"autoshop/internal/metrics"
	"autoshop/internal/mongostore"
	"autoshop/internal/notify"
	"autoshop/internal/repository"
	"autoshop/internal/scheduler"
	"autoshop/internal/service"
	"autoshop/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.System{Location: loc}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, sqliteDB, err := initStore(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus(logging.Component(&logger, "events"))
	subscribeLogging(eventBus, &logger)

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	dashboardSvc := service.NewDashboardService(store, clk, logging.Component(&logger, "dashboard"))
	salesSvc := service.NewSalesService(store, clk, logging.Component(&logger, "sales"))
	directorySvc := service.NewDirectoryService(store, clk, cfg.Shop.PhoneRegion, logging.Component(&logger, "directory"))
	transactionSvc := service.NewTransactionService(
		initDrafts(cfg, redisClient, &logger),
		store,
		eventBus,
		clk,
		logging.Component(&logger, "transactions"),
	)

	if sheetsService != nil {
		sheetsWorker := worker.NewSheetsWorker(sheetsService, redisClient, worker.RetryPolicy{}, logging.Component(&logger, "sheets_worker"))
		eventBus.Subscribe(events.EventTransactionCreated, sheetsWorker.HandleTransactionCreated)
		go sheetsWorker.Start(ctx)
	}

	sched, err := initScheduler(cfg, loc, clk, schedulerDeps{
		dashboard: dashboardSvc,
		sales:     salesSvc,
		sheets:    sheetsService,
		notifier:  initTelegram(cfg, loc, &logger),
		eventBus:  eventBus,
		sqliteDB:  sqliteDB,
	}, &logger)
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	httpServer := api.NewHTTPServer(cfg.API, api.Services{
		Dashboard:    dashboardSvc,
		Sales:        salesSvc,
		Transactions: transactionSvc,
		Directory:    directorySvc,
		Health:       store.Ping,
	}, cfg.Exports.Path, logging.Component(&logger, "http"))

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initStore opens the configured document backend. The sqlite handle is also
// returned because only it can be backed up.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.Store, *database.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		m := cfg.Database.Mongo
		store, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      m.URI,
			Database: m.Database,
			Username: m.Username,
			Password: m.Password,
			Timeout:  m.Timeout,
		}, logging.Component(logger, "mongo"))
		if err != nil {
			logger.Error().Err(err).Msg("init mongo store")
			return nil, nil, err
		}
		return store, nil, nil
	default:
		db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
			return nil, nil, err
		}
		return db, db, nil
	}
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initDrafts(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.DraftRepository {
	memory := repository.NewMemoryDraftRepository(cfg.Drafts.TTL)
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverDraftRepository(
		repository.NewRedisDraftRepository(redisClient, cfg.Drafts.TTL),
		memory,
		logging.Component(logger, "drafts"),
	)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled() {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initTelegram(cfg *config.Config, loc *time.Location, logger *zerolog.Logger) domain.Notifier {
	if !cfg.Telegram.Enabled() {
		return nil
	}
	bot, err := notify.NewBotAPI(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, daily summary disabled")
		return nil
	}
	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.Telegram.ManagerChatIDs)).Msg("telegram connected")
	return notify.NewTelegramNotifier(bot, cfg.Telegram.ManagerChatIDs, loc, cfg.Shop.CurrencySymbol, logging.Component(logger, "telegram"))
}

func subscribeLogging(bus *events.EventBus, logger *zerolog.Logger) {
	eventLogger := logging.Component(logger, "events")
	bus.Subscribe(events.EventTransactionCreated, func(e *events.Event) error {
		var p events.TransactionEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		eventLogger.Info().
			Str("transaction_id", p.TransactionID).
			Str("reference", p.Reference).
			Str("payment_method", p.PaymentMethod).
			Float64("total", p.TotalPrice).
			Msg("transaction recorded")
		return nil
	})
	bus.Subscribe(events.EventReportGenerated, func(e *events.Event) error {
		var p events.ReportEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		eventLogger.Info().Str("period", p.Period).Str("file", p.File).Msg("report generated")
		return nil
	})
	bus.Subscribe(events.EventBackupCompleted, func(e *events.Event) error {
		var p events.BackupEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		eventLogger.Info().Str("path", p.Path).Int("removed", p.Removed).Msg("backup completed")
		return nil
	})
}

type schedulerDeps struct {
	dashboard domain.DashboardService
	sales     domain.SalesService
	sheets    *google.SheetsService
	notifier  domain.Notifier
	eventBus  domain.EventPublisher
	sqliteDB  *database.DB
}

func initScheduler(cfg *config.Config, loc *time.Location, clk clock.Clock, deps schedulerDeps, logger *zerolog.Logger) (*scheduler.Service, error) {
	if !cfg.Scheduler.Enabled && !cfg.Backup.Enabled {
		return nil, nil
	}

	sched, err := scheduler.New(loc, logging.Component(logger, "scheduler"))
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if cfg.Scheduler.Enabled {
		var sheets domain.SheetsWriter
		if deps.sheets != nil {
			sheets = deps.sheets
		}
		job := worker.NewReportJob(worker.ReportJobDeps{
			Dashboard: deps.dashboard,
			Sales:     deps.sales,
			Sheets:    sheets,
			Notifier:  deps.notifier,
			EventBus:  deps.eventBus,
			ExportDir: cfg.Exports.Path,
			Clock:     clk,
			Logger:    logging.Component(logger, "report_job"),
		})
		if _, err := sched.AddRunner("daily_report", cfg.Scheduler.DailyReportCron, 0, job); err != nil {
			return nil, fmt.Errorf("register daily report: %w", err)
		}
	}

	if cfg.Backup.Enabled && deps.sqliteDB != nil {
		job := worker.NewBackupJob(deps.sqliteDB, cfg.Backup.StoragePath, cfg.Backup.RetentionDays, deps.eventBus, clk, logging.Component(logger, "backup_job"))
		if _, err := sched.AddRunner("backup", cfg.Backup.Schedule, 0, job); err != nil {
			return nil, fmt.Errorf("register backup: %w", err)
		}
	}

	return sched, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("driver", cfg.Database.Driver).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
