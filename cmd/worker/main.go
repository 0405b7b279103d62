// Command worker runs the reminder sweeper.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetdesk/internal/notify"
	remindersApplication "meetdesk/internal/reminders/application"
	remindersDomain "meetdesk/internal/reminders/domain"
	remindersPersistence "meetdesk/internal/reminders/infrastructure/persistence"
	"meetdesk/internal/shared/infrastructure/database"
	"meetdesk/internal/shared/infrastructure/migrations"
	"meetdesk/pkg/config"
	"meetdesk/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig("meetdesk-worker")
	if !cfg.IsDevelopment() {
		logCfg = observability.ProductionLogConfig("meetdesk-worker")
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logger := observability.NewLogger(logCfg)

	logger.Info("starting reminder worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	reminderRepo, ping, closeStore, err := openReminderStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var notifier notify.Notifier
	if cfg.MailConfigured() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		logger.Info("SMTP notifier initialized", "host", cfg.SMTPHost)
	} else {
		logger.Warn("SMTP not configured, reminders will be logged and marked sent")
		notifier = notify.NewNoopNotifier(logger)
	}

	sweeperConfig := remindersApplication.SweeperConfig{
		Interval:        cfg.SweepInterval,
		BatchSize:       cfg.SweepBatchSize,
		DispatchTimeout: cfg.DispatchTimeout,
	}
	sweeper := remindersApplication.NewSweeper(reminderRepo, notifier, sweeperConfig, logger)
	sweeper.Start(ctx)

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, sweeper, ping, logger)
	}

	<-ctx.Done()
	logger.Info("shutting down worker")

	sweeper.Stop()
	logger.Info("worker stopped")
}

func openReminderStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (remindersDomain.Repository, func(context.Context) error, func(), error) {
	switch database.Driver(cfg.DatabaseDriver) {
	case database.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrations.ApplyPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		logger.Info("connected to postgres")
		return remindersPersistence.NewPostgresReminderRepository(pool), pool.Ping, pool.Close, nil
	case database.DriverSQLite, "":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrations.ApplySQLite(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("opened sqlite database", "path", cfg.SQLitePath)
		return remindersPersistence.NewSQLiteReminderRepository(db),
			func(pingCtx context.Context) error { return db.PingContext(pingCtx) },
			func() { _ = db.Close() },
			nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func startHealthServer(ctx context.Context, addr string, sweeper *remindersApplication.Sweeper, ping func(context.Context) error, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := sweeper.Stats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"sent":          stats.Sent,
			"failed":        stats.Failed,
			"last_sweep_at": stats.LastSweepAt,
			"last_error":    stats.LastError,
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	healthSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
