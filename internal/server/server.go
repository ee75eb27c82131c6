// Package server assembles the HTTP API from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/art2music-api/internal/api"
	"github.com/Conceptual-Machines/art2music-api/internal/config"
	"github.com/Conceptual-Machines/art2music-api/internal/database"
	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/metrics"
	"github.com/Conceptual-Machines/art2music-api/internal/services"
	"github.com/Conceptual-Machines/art2music-api/internal/storage"
	"github.com/Conceptual-Machines/art2music-api/internal/tracksearch"
)

const (
	SentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
	readHeaderTimeout  = 10 * time.Second
)

// InitSentry configures error tracking when a DSN is set. The returned
// function flushes buffered events.
func InitSentry(cfg *config.Config, release string) func() {
	if cfg.SentryDSN == "" {
		logger.Warn("Sentry not configured (SENTRY_DSN not set)", nil)
		return func() {}
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "art2music-api@" + release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            !cfg.IsProduction(),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			// Filter out sensitive data
			if event.Request != nil {
				event.Request.Headers = FilterSensitiveHeaders(event.Request.Headers)
			}
			return event
		},
	}); err != nil {
		logger.Warn("Failed to initialize Sentry", logger.Fields{"error": err.Error()})
		return func() {}
	}

	logger.Info("Sentry initialized", logger.Fields{"environment": cfg.Environment, "release": release})
	return func() { sentry.Flush(SentryFlushTimeout) }
}

// FilterSensitiveHeaders redacts credentials before events leave the process.
func FilterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}

// NewStore picks S3 when a bucket is configured and local disk otherwise.
// It returns nil when neither is configured.
func NewStore(cfg *config.Config) (storage.Store, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.PublicAudioBaseURL)
	}
	if cfg.AudioDir == "" {
		return nil, nil
	}
	baseURL := cfg.PublicAudioBaseURL
	if baseURL == "" {
		baseURL = api.LocalAudioPath
	}
	return storage.NewLocalStore(cfg.AudioDir, baseURL)
}

// Build connects the optional backends and returns the router.
func Build(ctx context.Context, cfg *config.Config, version string) (*gin.Engine, error) {
	var db *gorm.DB
	opts := []services.Option{
		services.WithSampleRate(cfg.SampleRate),
		services.WithDefaultDuration(cfg.CompositionSeconds),
	}

	if cfg.DatabaseURL != "" {
		conn, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(conn); err != nil {
			return nil, err
		}
		db = conn
		opts = append(opts, services.WithRepository(services.NewGormRepository(db)))
	} else {
		logger.Warn("Database not configured, compositions will not be persisted", nil)
	}

	store, err := NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure audio storage: %w", err)
	}
	if store != nil {
		opts = append(opts, services.WithStore(store))
	}

	opts = append(opts, services.WithSearcher(tracksearch.NewClient(ctx, tracksearch.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
	})))

	cw, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		return nil, err
	}
	opts = append(opts, services.WithMetrics(metrics.Multi(metrics.NewSentryMetrics(), cw)))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	return api.SetupRouter(db, cfg, services.NewCompositionService(opts...), version, cw), nil
}

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	router, err := Build(ctx, cfg, version)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", logger.Fields{"port": cfg.Port, "version": version})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		sentry.CaptureException(err)
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
