package main

import (
	"agent-market/internal/api"
	"agent-market/internal/app"
	"agent-market/internal/config"
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/internal/repository/memory"
	"agent-market/internal/repository/postgres"
	"agent-market/internal/telemetry"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (db.Database, error) {
	if cfg.Driver == "memory" {
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	return postgres.NewPostgresDB(ctx, cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	shutdownTracing, err := telemetry.Init(ctx, appConfig.Telemetry)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Log.WithError(err).Warn("Error flushing traces")
		}
	}()

	database, err := openDatabase(ctx, appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	container := app.NewConfig(database, appConfig)
	if err := container.Seed(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Failed to seed database")
	}

	server := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      api.NewRouter(container),
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Log.Info("Shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.Log.WithFields(logrus.Fields{
		"port":      appConfig.Server.Port,
		"db_driver": appConfig.Database.Driver,
		"llm":       appConfig.LLM.APIKey != "",
	}).Info("Server starting")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("Server failed")
	}
	logger.Log.Info("Server stopped")
}
