package api

import (
	"time"

	"github.com/kestrelworks/hourglass/internal/middleware"
)

// RegisterRoutes sets up all API routes. Everything under /api/v1 requires
// the configured API key; /health stays open for load balancers.
func (s *Server) RegisterRoutes() {
	h := s.handler

	s.Echo.GET("/health", h.Health)

	v1 := s.Echo.Group("/api/v1",
		middleware.RateLimit(240, time.Minute),
		middleware.RequireAPIKey(s.Config.APIKeyHash),
	)

	v1.POST("/clocks", h.CreateClock)
	v1.GET("/clocks", h.ListClocks)
	v1.GET("/clocks/:id", h.GetClock)
	v1.DELETE("/clocks/:id", h.DeleteClock)

	v1.PUT("/clocks/:id/day", h.SetDay)
	v1.PUT("/clocks/:id/time", h.SetTime)
	v1.POST("/clocks/:id/advance", h.Advance)

	v1.POST("/clocks/:id/autoadvance", h.EnableAutoAdvance)
	v1.DELETE("/clocks/:id/autoadvance", h.DisableAutoAdvance)

	v1.GET("/presets", h.ListPresets)
	v1.POST("/definitions/import", h.ImportDefinition)
}
