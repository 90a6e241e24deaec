package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hasan197668/nis/internal/handler"
	"github.com/Hasan197668/nis/internal/repository"
	"github.com/Hasan197668/nis/internal/service"
	"github.com/Hasan197668/nis/migrator/postgres"
	"github.com/Hasan197668/nis/pkg/cache"
	"github.com/Hasan197668/nis/pkg/config"
	"github.com/Hasan197668/nis/pkg/database"
	"github.com/Hasan197668/nis/pkg/jobs"
	"github.com/Hasan197668/nis/pkg/logger"
	"github.com/Hasan197668/nis/pkg/notify"
	"github.com/Hasan197668/nis/pkg/storage"
)

// @title Nöbetçi Öğretmen Ders Doldurma API
// @version 1.0.0
// @description Substitute teacher planning: weekly tables, planning sessions, history and daily sheets.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logr.Info("database migrations applied")
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var (
		sessionCache service.SessionCache
		statsCache   service.CacheRepository
	)
	if redisClient != nil {
		sessionCache = cacheRepo
		statsCache = cacheRepo
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(statsCache, metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("init report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	notifier := notify.New(cfg.Slack, logr)

	tables := service.NewTableService(
		repository.NewTimetableRepository(db),
		repository.NewDutyRepository(db),
		repository.NewBaselineRepository(db),
		validate, metrics, logr,
	)
	history := service.NewHistoryService(repository.NewHistoryRepository(db), cacheSvc, validate, logr, cfg.Stats.CacheTTL)
	reports := service.NewReportService(store, signer, nil, notifier, cfg.School, metrics, logr, service.ReportServiceConfig{
		Retention:    cfg.Reports.Retention,
		DownloadPath: cfg.APIPrefix + "/reports/download",
	})
	queue := jobs.NewQueue("reports", reports.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
		OnResult:   reports.OnJobResult,
	})
	reports.SetQueue(queue)
	queue.Start(ctx)
	defer queue.Stop()

	sessions := service.NewSessionStore(cfg.Sessions, sessionCache)
	planning := service.NewPlanningService(sessions, tables, history, reports, validate, metrics, logr, cfg.School.Location())

	maintenance := service.NewMaintenanceService(reports, sessions, cfg.Maintenance.Schedule, logr)
	if err := maintenance.Start(ctx); err != nil {
		return err
	}
	defer maintenance.Stop()

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, metrics, handlers{
		calendar: handler.NewCalendarHandler(cfg.School),
		tables:   handler.NewTableHandler(tables),
		sessions: handler.NewSessionHandler(planning),
		history:  handler.NewHistoryHandler(history),
		reports:  handler.NewReportHandler(reports),
		metrics:  handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
