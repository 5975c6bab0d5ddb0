// Package main is the entry point for the Hourglass server. It loads
// configuration, builds the calendar preset library, wires the timekeeper
// service, and starts the HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelworks/hourglass/internal/api"
	"github.com/kestrelworks/hourglass/internal/config"
	"github.com/kestrelworks/hourglass/internal/presets"
	"github.com/kestrelworks/hourglass/internal/timekeeper"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Configure structured logging based on environment.
	setupLogging(cfg)

	slog.Info("starting Hourglass",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
	)

	// --- Calendar Presets ---
	lib, err := presets.NewLibrary()
	if err != nil {
		slog.Error("failed to load built-in presets", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.PresetDir != "" {
		if err := lib.LoadDir(cfg.PresetDir); err != nil {
			slog.Error("failed to load preset directory",
				slog.String("dir", cfg.PresetDir),
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}
	slog.Info("calendar presets loaded", slog.Int("count", len(lib.Names())))

	// --- Timekeeper Service ---
	repo := timekeeper.NewMemoryRepository()
	svc := timekeeper.NewService(repo, lib, slog.Default())

	advancer := timekeeper.NewAutoAdvancer(svc, slog.Default())
	advancer.Start()
	defer advancer.Stop()

	// --- HTTP Server ---
	server := api.New(cfg, svc, advancer, lib.Names())
	server.RegisterRoutes()

	// --- Graceful Shutdown ---
	// Listen for interrupt/term signals to drain connections cleanly.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := server.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// setupLogging configures the global slog logger based on the environment.
// Development uses text format for readability. Production uses JSON for
// structured log aggregation.
func setupLogging(cfg *config.Config) {
	level := parseLevel(cfg.LogLevel)

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
