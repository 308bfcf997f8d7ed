package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SscSPs/travel_backoffice/internal/adapters/gemini"
	"github.com/SscSPs/travel_backoffice/internal/adapters/storage"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/platform/cache"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/repositories/database/pgsql"
	"github.com/SscSPs/travel_backoffice/pkg/database"
)

// application holds the wired dependencies shared by the server and the one-shot commands.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	services *portssvc.ServiceContainer

	closers []func()
}

// newApplication connects to the database and builds the service container. Redis, storage and
// document extraction are wired only when configured.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("initialize database pool: %w", err)
	}
	app.pool = pool
	app.closers = append(app.closers, pool.Close)
	logger.Info("Database connection pool established.")

	var integrations services.Integrations

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = rc
		app.closers = append(app.closers, func() { _ = rc.Close() })
		integrations.Idempotency = cache.NewRedisIdempotencyStore(rc)
		logger.Info("Redis connected; idempotency keys and rate limits are shared")
	} else {
		mem := cache.NewInMemoryIdempotencyStore()
		app.closers = append(app.closers, func() { _ = mem.Close() })
		integrations.Idempotency = mem
	}

	if cfg.StorageEnabled() {
		store, err := storage.NewS3AttachmentStore(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("initialize attachment storage: %w", err)
		}
		integrations.Attachments = store
		logger.Info("Attachment storage enabled", slog.String("bucket", cfg.S3Bucket))
	} else {
		logger.Warn("S3_BUCKET not set; document uploads are disabled")
	}

	if cfg.GeminiAPIKey != "" {
		extractor, err := gemini.NewExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("initialize document extractor: %w", err)
		}
		integrations.Extractor = extractor
		logger.Info("Document extraction enabled", slog.String("model", cfg.GeminiModel))
	} else {
		logger.Warn("GEMINI_API_KEY not set; document extraction is disabled")
	}

	app.services = services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), integrations)
	return app, nil
}

// Close releases everything in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
