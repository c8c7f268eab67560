package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"fbsync/internal/config"
	"fbsync/internal/infrastructure/facebook"
	"fbsync/internal/infrastructure/scheduler"
	"fbsync/internal/infrastructure/storage"
	"fbsync/internal/logging"
	"fbsync/internal/settings"
	"fbsync/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	pipeline *usecase.Pipeline
}

// New opens the database, prepares the schema and builds the pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := storage.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	encryptor, err := settings.NewEncryptor(cfg.Settings.EncryptionKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build encryptor: %w", err)
	}

	provider := settings.NewProvider(storage.NewSettingsStore(db), encryptor, cfg.Store.BaseURL)

	if err := settings.MigrateLegacyPriceAttribute(ctx, provider, baseLogger.With("component", "settings")); err != nil {
		baseLogger.Warn("legacy settings migration failed", "error", err)
	}

	ledger := storage.NewLedgerRepository(db)
	if removed, err := ledger.CleanupDuplicateSKUs(ctx); err != nil {
		baseLogger.Warn("duplicate sku cleanup failed", "error", err)
	} else if removed > 0 {
		baseLogger.Info("removed duplicate ledger rows", "count", removed)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Settings:     provider,
		Catalog:      storage.NewCatalogReader(db),
		Ledger:       ledger,
		Publisher:    facebook.NewClient(cfg.Facebook.GraphURL, cfg.Facebook.APIVersion, nil),
		StoreBaseURL: cfg.Store.BaseURL,
		Location:     cfg.Scheduler.Location(),
		Logger:       baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, db: db, pipeline: pipeline}, nil
}

// Run executes a single sync, or stays resident firing on the cron
// expression when daemon mode is configured. Sync-level failures are
// logged and ledgered inside the pipeline and never surface here.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if !a.cfg.Scheduler.Daemon {
		return a.pipeline.ProcessDay(ctx, time.Now().In(a.cfg.Scheduler.Location()))
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline)

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case sig := <-stop:
		a.logger.Info("shutting down", "signal", sig.String())
	}

	return sched.Stop(context.Background())
}
