package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RaghavGalappanavar/Deployment/config"
	"github.com/RaghavGalappanavar/Deployment/handler"
	"github.com/RaghavGalappanavar/Deployment/pkg/logger"
	"github.com/RaghavGalappanavar/Deployment/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully",
		"store", cfg.Store.Driver,
		"storage", cfg.Storage.Driver,
		"events", cfg.Events.Driver,
		"cors_origins", cfg.CORS.AllowedOrigins,
	)

	ctx := context.Background()

	repo, closeRepo, err := newRepository(&cfg.Store)
	if err != nil {
		slog.Error("failed to initialize contract store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	artifacts, err := newArtifactStore(ctx, &cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize artifact storage", "error", err)
		os.Exit(1)
	}

	publisher, err := newPublisher(ctx, &cfg.Events)
	if err != nil {
		slog.Error("failed to initialize event publisher", "error", err)
		os.Exit(1)
	}

	contractSvc := service.NewContractService(repo, artifacts, service.NewPDFRenderer(), publisher,
		service.WithPublishTimeout(time.Duration(cfg.Events.PublishTimeoutSeconds)*time.Second),
	)

	docsHandler, err := handler.NewDocsHandler()
	if err != nil {
		slog.Error("failed to load API docs", "error", err)
		os.Exit(1)
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router, err := handler.NewRouter(cfg, handler.NewContractHandler(contractSvc, artifacts), docsHandler)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight contract events finish before closing the publisher
	contractSvc.Wait()
	if err := publisher.Close(); err != nil {
		slog.Warn("failed to close event publisher", "error", err)
	}

	slog.Info("server exited gracefully")
}

func newRepository(cfg *config.StoreConfig) (service.ContractRepository, func(), error) {
	switch cfg.Driver {
	case "memory":
		return service.NewContractStore(), func() {}, nil
	case "sqlite", "postgres":
		db, err := service.OpenDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := service.NewGormContractStore(db)
		return store, func() { closeQuietly("contract store", store) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func newArtifactStore(ctx context.Context, cfg *config.StorageConfig) (service.ArtifactStore, error) {
	switch cfg.Driver {
	case "local":
		return service.NewLocalArtifactStore(cfg.LocalDir)
	case "minio":
		store, err := service.NewMinioArtifactStore(&cfg.Minio)
		if err != nil {
			return nil, err
		}
		// Ensure bucket exists
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func newPublisher(ctx context.Context, cfg *config.EventsConfig) (service.EventPublisher, error) {
	switch cfg.Driver {
	case "log":
		return service.LogPublisher{}, nil
	case "redis":
		p, err := service.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			// Events are best effort; keep serving and let publishes log failures
			slog.Warn("redis not reachable at startup", "addr", cfg.Redis.Addr, "error", err)
		}
		return p, nil
	case "kafka":
		return service.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close "+name, "error", err)
	}
}
