package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/porelog/internal/config"
	"github.com/JonMunkholm/porelog/internal/core"
	"github.com/JonMunkholm/porelog/internal/history"
	"github.com/JonMunkholm/porelog/internal/logging"
	"github.com/JonMunkholm/porelog/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"history_driver", cfg.History.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()
	store, err := history.Open(ctx, cfg.HistoryStoreConfig())
	if err != nil {
		slog.Error("failed to open load history", "driver", cfg.History.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("load history ready", "driver", cfg.History.Driver)

	service := core.NewService(store, core.Options{
		MaxConcurrentLoads: cfg.Upload.MaxConcurrent,
		MaxWait:            cfg.Upload.MaxWaitTime,
		LoadTimeout:        cfg.Upload.Timeout,
		MaxFileSize:        cfg.Upload.MaxFileSize,
		Missing:            cfg.Transform.MissingPolicy(),
		CSVMode:            cfg.Transform.ExportMode(),
	})

	server := web.NewServer(cfg, service)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	go service.StartSessionSweeper(jobCtx, core.SweepConfig{
		SessionTTL:       cfg.Session.TTL,
		Interval:         cfg.Session.SweepInterval,
		HistoryRetention: cfg.History.Retention,
	})

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for active loads to complete (with timeout)
		status := service.LoadStatus()
		if status.Active > 0 {
			slog.Info("waiting for loads to complete", "active", status.Active)
			if err := service.WaitForLoads(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		store.Close()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
