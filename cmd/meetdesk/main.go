// Command meetdesk runs the calendar HTTP API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetdesk/adapter/api"
	"meetdesk/internal/meetings/application/commands"
	"meetdesk/internal/meetings/application/queries"
	meetingsDomain "meetdesk/internal/meetings/domain"
	meetingsPersistence "meetdesk/internal/meetings/infrastructure/persistence"
	"meetdesk/internal/notify"
	remindersApplication "meetdesk/internal/reminders/application"
	remindersDomain "meetdesk/internal/reminders/domain"
	remindersPersistence "meetdesk/internal/reminders/infrastructure/persistence"
	sharedApplication "meetdesk/internal/shared/application"
	"meetdesk/internal/shared/infrastructure/database"
	"meetdesk/internal/shared/infrastructure/migrations"
	sharedPersistence "meetdesk/internal/shared/infrastructure/persistence"
	"meetdesk/pkg/config"
	"meetdesk/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig("meetdesk")
	if !cfg.IsDevelopment() {
		logCfg = observability.ProductionLogConfig("meetdesk")
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logger := observability.NewLogger(logCfg)

	logger.Info("starting meetdesk", "driver", cfg.DatabaseDriver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	notifier := buildNotifier(cfg, logger)
	resolver := notify.NewDirectoryResolver(cfg.RecipientDirectory)
	queue := remindersApplication.NewQueueManager(stores.ReminderRepo, stores.UoW, logger)

	list := queries.NewListMeetingsHandler(stores.MeetingRepo)
	handler := api.NewMeetingHandler(api.MeetingHandlerConfig{
		Schedule: commands.NewScheduleMeetingHandler(stores.MeetingRepo, queue, resolver, notifier, stores.UoW, logger),
		Update:   commands.NewUpdateMeetingHandler(stores.MeetingRepo, resolver, notifier, stores.UoW, logger),
		Delete:   commands.NewDeleteMeetingHandler(stores.MeetingRepo, logger),
		List:     list,
		Get:      queries.NewGetMeetingHandler(stores.MeetingRepo),
		Export:   queries.NewExportMeetingsHandler(list),
		Logger:   logger,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr
	server := api.NewServer(serverCfg, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("meetdesk stopped")
}

// Stores bundles the driver-specific persistence wiring.
type Stores struct {
	MeetingRepo  meetingsDomain.Repository
	ReminderRepo remindersDomain.Repository
	UoW          sharedApplication.UnitOfWork
	Close        func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch database.Driver(cfg.DatabaseDriver) {
	case database.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migrations.ApplyPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected to postgres")
		return &Stores{
			MeetingRepo:  meetingsPersistence.NewPostgresMeetingRepository(pool),
			ReminderRepo: remindersPersistence.NewPostgresReminderRepository(pool),
			UoW:          sharedPersistence.NewPostgresUnitOfWork(pool),
			Close:        pool.Close,
		}, nil
	case database.DriverSQLite, "":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.ApplySQLite(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("opened sqlite database", "path", cfg.SQLitePath)
		return &Stores{
			MeetingRepo:  meetingsPersistence.NewSQLiteMeetingRepository(db),
			ReminderRepo: remindersPersistence.NewSQLiteReminderRepository(db),
			UoW:          sharedPersistence.NewSQLiteUnitOfWork(db),
			Close:        func() { _ = db.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if !cfg.MailConfigured() {
		logger.Warn("SMTP not configured, mail delivery disabled")
		return notify.NewNoopNotifier(logger)
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}
