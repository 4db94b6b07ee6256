package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cityreport_backend/internal/adapters"
	"cityreport_backend/internal/adapters/storage"
	"cityreport_backend/internal/categories"
	catrepo "cityreport_backend/internal/categories/repository"
	"cityreport_backend/internal/chat"
	"cityreport_backend/internal/events"
	apphttp "cityreport_backend/internal/http"
	"cityreport_backend/internal/http/router"
	"cityreport_backend/internal/notification"
	"cityreport_backend/internal/reports"
	"cityreport_backend/internal/scheduler"
	"cityreport_backend/internal/users"
	usersrepo "cityreport_backend/internal/users/repository"
	"cityreport_backend/platform/config"
	"cityreport_backend/platform/db"
	"cityreport_backend/platform/logger"
	"cityreport_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	emailQueue, closeQueue := initEmailScheduler(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	userDirectory := adapters.NewUserDirectory(usersrepo.New(pool))
	categoryDirectory := adapters.NewCategoryDirectory(catrepo.New(pool))

	usersModule := users.NewModule(pool, val, cfg)
	categoriesModule := categories.NewModule(pool, val, userDirectory)
	notificationModule := notification.NewModule(pool, emailQueue, log)
	chatModule := chat.NewModule(pool, val, notificationModule, eventBus, log)

	chatProvisioner := adapters.NewChatProvisioner(chatModule.Service)
	reportsModule := reports.NewModule(pool, val, categoryDirectory, userDirectory, chatProvisioner, notificationModule, eventBus, log)

	// Storage for report images (MinIO). Optional: without it report reads
	// return bare object keys instead of presigned URLs.
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, storageSvc, cfg.GetMinioBucketReportImages())
		log.Info("storage service initialized", "reportImagesBucket", cfg.GetMinioBucketReportImages())

		reportsModule.Service.SetImageSigner(adapters.NewReportImageSigner(storageSvc, cfg.GetMinioBucketReportImages()))
	} else {
		log.Warn("MinIO not configured; report image URL signing disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			usersModule,
			categoriesModule,
			reportsModule,
			chatModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		notificationModule.SSE.Close()
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// ensureBucket wraps the retry logic for verifying the MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, store storage.ObjectStore, bucket string) {
	if err := withRetry(ctx, log, "ensure storage bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func initEmailScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.EmailScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notification emails disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize email scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
