package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/adapters/mongo"
	"github.com/satriahrh/voxtag/adapters/storage"
	"github.com/satriahrh/voxtag/adapters/stt"
	"github.com/satriahrh/voxtag/domain/repositories"
	"github.com/satriahrh/voxtag/internal/api"
	"github.com/satriahrh/voxtag/internal/auth"
	"github.com/satriahrh/voxtag/internal/config"
	"github.com/satriahrh/voxtag/internal/session"
	"github.com/satriahrh/voxtag/internal/telemetry"
	"github.com/satriahrh/voxtag/internal/websocket"
	"github.com/satriahrh/voxtag/usecase"
)

const maxUploadSize = "64M"

func NewServeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, deps.Config, deps.Logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	blobs, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	var metrics *telemetry.Metrics
	var metricsHandler http.Handler
	if cfg.Telemetry.MetricsEnabled {
		provider, err := telemetry.NewProvider()
		if err != nil {
			return err
		}
		defer provider.Shutdown(context.Background())
		metrics = provider.Metrics
		metricsHandler = provider.Handler()
	}

	recognizer, err := stt.New(cfg.Transcription, logger)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	gateway := usecase.NewTranscriptionGateway(recognizer, cfg.Transcription.TempDir, cfg.Transcription.Timeout(), metrics, logger)
	recordings := usecase.NewRecordingService(gateway, hub, cfg.Transcription.Async, logger)
	combiner := usecase.NewCombiner(blobs, usecase.CombinerConfig{
		MaxSegments: cfg.Combine.MaxSegments,
		MaxDuration: cfg.Combine.MaxDuration(),
	}, metrics, logger)

	sessions := session.NewManager(blobs, cfg.Session.IdleTimeout(), metrics, logger)
	sessions.OnClose(hub.CloseSession)
	sessions.Start(cfg.Session.CleanupInterval())
	defer sessions.Stop()

	if cfg.Transcription.EffectiveAPIKey() == "" {
		logger.Warn("No transcription API key configured; clients must send X-Transcription-Key")
	}

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(maxUploadSize))

	api.InitRoutes(e, api.Dependencies{
		Sessions:   sessions,
		Recordings: recordings,
		Combiner:   combiner,
		Issuer:     auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		Hub:        hub,
		APIKey:     cfg.Transcription.EffectiveAPIKey(),
		Metrics:    metricsHandler,
		Logger:     logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.HTTP.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("Server started",
		zap.String("address", cfg.HTTP.Address()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("transcription", cfg.Transcription.Backend))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := recordings.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Pending transcriptions abandoned", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}

// openStorage returns the configured blob store and a function releasing it
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.BlobStorage, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryStorage(), func() {}, nil
	case "mongo":
		client, err := mongo.NewClient(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}, logger)
		if err != nil {
			return nil, nil, err
		}
		release := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("Failed to close MongoDB client", zap.Error(err))
			}
		}
		return mongo.NewBlobStorage(client.Database, logger), release, nil
	default:
		fs, err := storage.NewFileStorage(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}
