package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"retailtracker/internal/auth"
	"retailtracker/internal/cli"
	apphttp "retailtracker/internal/http"
	applog "retailtracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	be := cli.OpenBackend(context.Background(), logger, cfg)
	sessions := auth.NewSessions(cli.SessionSecret(logger, cfg), cfg.SessionTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:              be.Store,
		Stats:              be.Stats,
		Publisher:          be.Publisher,
		Sessions:           sessions,
		Logger:             logger,
		DemoLogin:          cfg.AuthDemoLogin,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, stop, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		requests, limits, detections := srv.Metrics()
		logger.Info("Request totals",
			"requests", requests.TotalRequests,
			"server_errors", requests.ServerErrors,
			"rate_limited", limits.Rejected,
			"suspicious", detections.SuspiciousRequests)
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting retailtracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"stats_engine", cfg.StatsEngine,
		"demo_login", cfg.AuthDemoLogin,
		"events_enabled", be.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		stop()
		<-done
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
