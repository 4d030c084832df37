package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"bishopric/backend/internal/config"
	"bishopric/backend/internal/service/reminders"
	"bishopric/backend/internal/store/postgres"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "bishopric-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "bishopric-server"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("log_level", cfg.LogLevel), slog.String("reminder_cron", cfg.ReminderCron))

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	schedRepo := postgres.NewSchedulingRepo(db)
	msgRepo := postgres.NewMessagesRepo(db)
	reminderSvc := reminders.NewService(schedRepo, schedRepo, msgRepo, msgRepo, cfg.ScheduleTemplateID, time.Now, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runSweep := func() {
		sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := reminderSvc.Run(sweepCtx); err != nil {
			log.Error("reminder sweep failed", slog.Any("err", err))
		}
	}

	// Catch up immediately on start, then on the configured schedule. The
	// sweep itself is a no-op when it already ran today.
	runSweep()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderCron, runSweep); err != nil {
		log.Error("invalid reminder cron expression", slog.Any("err", err), slog.String("cron", cfg.ReminderCron))
		os.Exit(1)
	}
	scheduler.Start()
	log.Info("reminder scheduler started", slog.String("cron", cfg.ReminderCron))

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdown(log, scheduler, cfg.ShutdownTimeout)
}

func shutdown(log *slog.Logger, scheduler *cron.Cron, timeout time.Duration) {
	log.Info("stopping reminder scheduler", slog.Duration("timeout", timeout))

	stopCtx := scheduler.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-stopCtx.Done():
		log.Info("reminder scheduler stopped")
	case <-timer.C:
		log.Warn("reminder scheduler stop timed out")
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
