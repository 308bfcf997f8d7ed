package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SscSPs/travel_backoffice/internal/handlers"
	"github.com/SscSPs/travel_backoffice/internal/jobs"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/SscSPs/travel_backoffice/pkg/database"
)

const (
	shutdownTimeout = 15 * time.Second
	loginRate       = "10-M"
)

func newServeCommand(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, then serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cc)
		},
	}
}

func runServe(parent context.Context, cc *cliContext) error {
	cfg, logger := cc.cfg, cc.logger

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath, database.Up); err != nil {
		return cc.logFailure("Failed to apply migrations", err)
	}

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return cc.logFailure("Failed to initialize application", err)
	}
	defer app.Close()

	posthogClient := analytics.NewClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	deps := handlers.RouterDeps{Analytics: posthogClient}
	if deps.APILimiter, err = middleware.NewLimiter(cfg.RateLimit, "api", app.redis); err != nil {
		return cc.logFailure("Failed to create rate limiter", err)
	}
	if deps.LoginLimiter, err = middleware.NewLimiter(loginRate, "login", app.redis); err != nil {
		return cc.logFailure("Failed to create login rate limiter", err)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-api-key", handlers.IdempotencyKeyHeader},
			ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		return cc.logFailure("Failed to set trusted proxies", err)
	}
	if err := handlers.RegisterRoutes(r, cfg, app.services, deps); err != nil {
		return cc.logFailure("Failed to register routes", err)
	}

	var scheduler *jobs.Scheduler
	if cfg.JobsEnabled {
		runner := jobs.NewRunner(app.services.Subscription, app.services.Booking, app.services.Notification, logger)
		scheduler, err = jobs.NewScheduler(runner, cfg.OverdueCron, logger)
		if err != nil {
			return cc.logFailure("Failed to create job scheduler", err)
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return cc.logFailure("Server failed to run", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cc.logFailure("Server shutdown failed", err)
	}
	logger.Info("Server stopped")
	return nil
}
