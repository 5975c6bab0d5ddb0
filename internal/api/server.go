// Package api is the HTTP surface of Hourglass: a small JSON API in front
// of the timekeeper service, meant for VTT modules and other external tools
// that need to read or advance campaign game time.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kestrelworks/hourglass/internal/apperror"
	"github.com/kestrelworks/hourglass/internal/config"
	"github.com/kestrelworks/hourglass/internal/middleware"
	"github.com/kestrelworks/hourglass/internal/timekeeper"
)

// Server holds the Echo instance and the dependencies handlers need.
// Created once at startup in main.go.
type Server struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	handler *Handler
}

// New creates a Server and configures the Echo instance with global
// middleware and error handling.
func New(cfg *config.Config, svc timekeeper.Service, advancer *timekeeper.AutoAdvancer, presetNames []string) *Server {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Config:  cfg,
		Echo:    e,
		handler: NewHandler(svc, advancer, presetNames),
	}

	// Behind a reverse proxy, resolve the real client IP for logging and
	// rate limiting.
	if len(cfg.TrustedProxies) > 0 {
		middleware.TrustedProxies(e, cfg.TrustedProxies)
	}

	// Panic recovery must be outermost to catch panics from all other
	// middleware, logging next so every request is recorded.
	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORS(cfg.CORSOrigins))
	}

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = s.errorHandler

	return s
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to JSON responses and hides internal detail from clients.
func (s *Server) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := apperror.SafeCode(err)
	message := apperror.SafeMessage(err)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		// Log internal errors with the underlying cause.
		if appErr.Internal != nil || apperror.IsInvariant(err) {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		// Echo's built-in HTTP errors (e.g., 404 from the router).
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
	default:
		// Truly unexpected error -- log it.
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	c.JSON(code, map[string]string{
		"error":   http.StatusText(code),
		"message": message,
	})
}

// Start begins listening for HTTP requests on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.Config.Port)
	slog.Info("starting Hourglass server",
		slog.String("addr", addr),
		slog.String("env", s.Config.Env),
	)
	return s.Echo.Start(addr)
}
