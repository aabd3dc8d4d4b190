package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wartungsmanager-backend/config"
	"wartungsmanager-backend/internal/api"
	"wartungsmanager-backend/internal/auth"
	"wartungsmanager-backend/internal/db"
	"wartungsmanager-backend/internal/inspection"
	"wartungsmanager-backend/internal/live"
	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/metrics"
	"wartungsmanager-backend/internal/notification"
	"wartungsmanager-backend/internal/registry"
	"wartungsmanager-backend/internal/store"
	"wartungsmanager-backend/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the live feed and the inspection reminders",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.Sync()
	log := logging.Get()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("Database initialized", zap.String("driver", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appStore := store.NewGormStore(gormDB)
	collector := metrics.NewCollector()
	hub := live.NewHub()
	defer hub.Close()

	if cfg.Compressor.ResetPasswordHash == "" {
		log.Warn("No reset password hash configured; compressor resets will be refused")
	}
	manager := workflow.NewManager(appStore, workflow.Options{
		Authorizer: auth.NewPasswordAuthorizer(cfg.Compressor.ResetPasswordHash),
		Recorder:   workflow.MultiRecorder{collector, hub},
	})
	if active, err := manager.ActiveSession(ctx); err != nil {
		log.Warn("Failed to read compressor state", zap.Error(err))
	} else {
		collector.SetSessionActive(active != nil)
	}

	webpushOptions, err := startReminders(ctx, cfg, appStore, collector)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Workflow: manager,
		Registry: registry.NewService(gormDB),
		DB:       gormDB,
		WebPush:  webpushOptions,
		Hub:      hub,
		Metrics:  collector,
		Server:   cfg.Server,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping services...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}

// startReminders starts the push worker pool and the inspection scan. Both
// stay off without VAPID keys.
func startReminders(ctx context.Context, cfg *config.Config, appStore store.Store, collector *metrics.Collector) (*webpush.Options, error) {
	log := logging.Get()
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		log.Warn("VAPID keys are not configured; inspection reminders are disabled")
		return nil, nil
	}

	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	loc, err := time.LoadLocation(cfg.Inspection.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Inspection.Timezone, err)
	}
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore.DB(), webpushOptions, loc)
	pool.Start(ctx)

	scan, err := inspection.NewService(cfg.Inspection, appStore, pool, collector)
	if err != nil {
		return nil, err
	}
	go scan.Run(ctx)
	return webpushOptions, nil
}
