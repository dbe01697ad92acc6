package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/andrewpaige1/brickstat-api/catalog"
	"github.com/andrewpaige1/brickstat-api/config"
	"github.com/andrewpaige1/brickstat-api/handlers"
	"github.com/andrewpaige1/brickstat-api/logger"
	"github.com/andrewpaige1/brickstat-api/middleware"
	"github.com/andrewpaige1/brickstat-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogPath)
	defer zlog.Sync()

	// Initialize database connection
	db, err := config.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		zlog.Fatal("Failed to migrate database", zap.Error(err))
	}

	sets := catalog.New(catalog.Options{
		BaseURL: cfg.RebrickableBaseURL,
		APIKey:  cfg.RebrickableAPIKey,
		Timeout: cfg.CatalogTimeout,
		RPS:     cfg.CatalogRPS,
		Burst:   cfg.CatalogBurst,
	}, zlog)

	h := handlers.New(store.New(db, zlog), sets, zlog)
	mux := http.NewServeMux()
	h.Register(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Accept", "Origin", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	srv := &http.Server{
		Addr: "0.0.0.0:" + cfg.Port,
		Handler: middleware.Chain(corsHandler,
			middleware.RequestID,
			middleware.Logging(zlog),
			middleware.Recover(zlog),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zlog.Error("Failed to get SQL database", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		zlog.Error("Failed to close database", zap.Error(err))
	}
}
