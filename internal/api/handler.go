package api

import (
	"io"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"github.com/kestrelworks/hourglass/internal/apperror"
	"github.com/kestrelworks/hourglass/internal/presets"
	"github.com/kestrelworks/hourglass/internal/timekeeper"
)

// Handler processes HTTP requests for the clock API.
type Handler struct {
	svc         timekeeper.Service
	advancer    *timekeeper.AutoAdvancer
	presetNames []string

	mu        sync.Mutex
	schedules map[string]cron.EntryID
}

// NewHandler creates a new clock API handler.
func NewHandler(svc timekeeper.Service, advancer *timekeeper.AutoAdvancer, presetNames []string) *Handler {
	return &Handler{
		svc:         svc,
		advancer:    advancer,
		presetNames: presetNames,
		schedules:   make(map[string]cron.EntryID),
	}
}

// createClockRequest is the JSON body for clock creation.
type createClockRequest struct {
	Name       string              `json:"name"`
	Preset     string              `json:"preset"`
	Definition *presets.Definition `json:"definition,omitempty"`
	StartYear  int                 `json:"start_year"`
	Day        int                 `json:"day"`
	Time       int                 `json:"time"`
}

// CreateClock creates a new game clock.
// POST /api/v1/clocks
func (h *Handler) CreateClock(c echo.Context) error {
	var req createClockRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	snap, err := h.svc.CreateClock(c.Request().Context(), timekeeper.CreateClockInput{
		Name:       req.Name,
		Preset:     req.Preset,
		Definition: req.Definition,
		StartYear:  req.StartYear,
		Day:        req.Day,
		Time:       req.Time,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

// ListClocks returns all clocks.
// GET /api/v1/clocks
func (h *Handler) ListClocks(c echo.Context) error {
	snaps, err := h.svc.ListClocks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snaps)
}

// GetClock returns a clock's current position.
// GET /api/v1/clocks/:id
func (h *Handler) GetClock(c echo.Context) error {
	snap, err := h.svc.GetClock(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// DeleteClock removes a clock and any auto-advance schedule it has.
// DELETE /api/v1/clocks/:id
func (h *Handler) DeleteClock(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.DeleteClock(c.Request().Context(), id); err != nil {
		return err
	}
	h.unschedule(id)
	return c.NoContent(http.StatusNoContent)
}

// SetDay moves a clock to an absolute day offset.
// PUT /api/v1/clocks/:id/day
func (h *Handler) SetDay(c echo.Context) error {
	var req struct {
		Day int `json:"day"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	snap, err := h.svc.SetDay(c.Request().Context(), c.Param("id"), req.Day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// SetTime sets a clock's time of day in seconds.
// PUT /api/v1/clocks/:id/time
func (h *Handler) SetTime(c echo.Context) error {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	snap, err := h.svc.SetTime(c.Request().Context(), c.Param("id"), req.Seconds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Advance applies a relative day/time adjustment to a clock.
// POST /api/v1/clocks/:id/advance
func (h *Handler) Advance(c echo.Context) error {
	var req timekeeper.AdvanceInput
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	snap, err := h.svc.Advance(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// autoAdvanceRequest is the JSON body for enabling real-time advancement.
type autoAdvanceRequest struct {
	Cron        string `json:"cron"`
	GameSeconds int    `json:"game_seconds"`
}

// EnableAutoAdvance schedules a clock for real-time advancement. An
// existing schedule for the clock is replaced.
// POST /api/v1/clocks/:id/autoadvance
func (h *Handler) EnableAutoAdvance(c echo.Context) error {
	id := c.Param("id")
	var req autoAdvanceRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	// Verify the clock exists before scheduling against it.
	if _, err := h.svc.GetClock(c.Request().Context(), id); err != nil {
		return err
	}

	// Schedule and swap under one lock so concurrent enables for the same
	// clock cannot leave a replaced cron entry running.
	h.mu.Lock()
	entry, err := h.advancer.Schedule(id, req.Cron, req.GameSeconds)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	if old, ok := h.schedules[id]; ok {
		h.advancer.Unschedule(old)
	}
	h.schedules[id] = entry
	h.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]any{
		"clock":        id,
		"cron":         req.Cron,
		"game_seconds": req.GameSeconds,
	})
}

// DisableAutoAdvance removes a clock's auto-advance schedule.
// DELETE /api/v1/clocks/:id/autoadvance
func (h *Handler) DisableAutoAdvance(c echo.Context) error {
	if !h.unschedule(c.Param("id")) {
		return apperror.NewNotFound("clock has no auto-advance schedule")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) unschedule(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.schedules[id]
	if ok {
		h.advancer.Unschedule(entry)
		delete(h.schedules, id)
	}
	return ok
}

// ListPresets returns the names of the available calendar presets.
// GET /api/v1/presets
func (h *Handler) ListPresets(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"presets": h.presetNames})
}

// ImportDefinition parses an uploaded calendar definition (native YAML/JSON
// or a Simple Calendar export) and returns it in native form, so a client
// can preview the conversion before creating a clock from it.
// POST /api/v1/definitions/import
func (h *Handler) ImportDefinition(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return apperror.NewBadRequest("could not read request body")
	}

	def, format, err := presets.DetectAndParse(body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"format":     format,
		"definition": def,
	})
}

// Health is the unauthenticated liveness endpoint.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
