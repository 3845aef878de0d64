package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/config"
	"github.com/tasktreasure/tasktreasure/internal/database"
	"github.com/tasktreasure/tasktreasure/internal/logging"
	"github.com/tasktreasure/tasktreasure/internal/server"
	"github.com/tasktreasure/tasktreasure/internal/store"
	"github.com/tasktreasure/tasktreasure/internal/sweeper"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := store.Backfill(ctx, db)
	if err != nil {
		logger.Error("backfill defaults", "error", err)
		os.Exit(1)
	}
	if report.Total() > 0 {
		logger.Info("backfilled missing defaults",
			"chore_frequency", report.ChoreFrequency,
			"child_weekly_goal", report.ChildWeeklyGoal,
			"child_savings", report.ChildSavings,
		)
	}

	srv := server.New(db, server.Options{
		SessionTTL:    cfg.SessionTTL,
		FanoutTimeout: cfg.FanoutTimeout,
		FanoutPolicy:  cfg.Policy(),
		Location:      cfg.Location(),
		WSOrigins:     cfg.WSOrigins,
	}, logger)

	sw := sweeper.New(srv.SessionStore(), cfg.SessionSweep, logger, srv.RateLimiter())
	sw.Start(ctx)
	defer sw.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("tasktreasure listening", "addr", httpServer.Addr, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
