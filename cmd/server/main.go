// @title           Frugal AI Hub API
// @version         1.0.0
// @description     Ingestion, vetting and Frugal Score ranking for resource-efficient AI tools.
// @BasePath        /
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ZanzyTHEbar/frugal-ai-hub/docs"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/app"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/config"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(getEnvOrDefault("CONFIG_PATH", ""), ".env", ".env.local")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := monitoring.NewLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger.Logger)
	gin.SetMode(cfg.Server.Mode)

	if cfg.Registries.GitHubToken == "" {
		slog.Warn("GITHUB_TOKEN not set, GitHub ingestion is limited to 60 requests per hour")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		slog.Error("Failed to initialise application", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "database", application.DB.Driver(), "redis", application.Redis.IsEnabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		application.Close()
		os.Exit(1)
	}
	application.Close()

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
