package timekeeper

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/kestrelworks/hourglass/internal/apperror"
	"github.com/kestrelworks/hourglass/internal/calendar"
	"github.com/kestrelworks/hourglass/internal/presets"
)

// Service defines business logic for game clocks.
type Service interface {
	CreateClock(ctx context.Context, input CreateClockInput) (*Snapshot, error)
	GetClock(ctx context.Context, id string) (*Snapshot, error)
	ListClocks(ctx context.Context) ([]Snapshot, error)
	DeleteClock(ctx context.Context, id string) error

	SetDay(ctx context.Context, id string, day int) (*Snapshot, error)
	SetTime(ctx context.Context, id string, seconds int) (*Snapshot, error)
	Advance(ctx context.Context, id string, input AdvanceInput) (*Snapshot, error)
}

// CreateClockInput is the validated input for creating a clock. Exactly one
// of Preset and Definition selects the calendar structure; leaving both
// empty falls back to the Gregorian preset.
type CreateClockInput struct {
	Name       string
	Preset     string
	Definition *presets.Definition
	StartYear  int
	Day        int
	Time       int
}

// AdvanceInput describes a relative adjustment. Days and Seconds apply
// directly; Amount/Unit is converted through the clock's metrics table
// ("3 rounds", "2 hours") and added to Seconds.
type AdvanceInput struct {
	Days    int    `json:"days"`
	Seconds int    `json:"seconds"`
	Amount  int    `json:"amount"`
	Unit    string `json:"unit"`
}

// service is the default Service implementation.
type service struct {
	repo Repository
	lib  *presets.Library
	log  *slog.Logger
}

// NewService creates a Service backed by the given repository and preset
// library.
func NewService(repo Repository, lib *presets.Library, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, lib: lib, log: logger}
}

// CreateClock builds the calendar engine for the requested structure and
// registers a new clock. An out-of-range starting day rolls over exactly
// as it would during play.
func (s *service) CreateClock(ctx context.Context, input CreateClockInput) (*Snapshot, error) {
	if input.Preset != "" && input.Definition != nil {
		return nil, apperror.NewValidation("preset and definition are mutually exclusive")
	}

	def := input.Definition
	if def == nil {
		name := input.Preset
		if name == "" {
			name = "gregorian"
		}
		var err error
		if def, err = s.lib.Get(name); err != nil {
			return nil, err
		}
	} else if err := def.Validate(); err != nil {
		return nil, err
	}

	cal, err := calendar.New(calendar.Options{
		StartYear:       input.StartYear,
		PopulateExtents: def.Generator(),
		Logger:          s.log,
		CurrentDay:      input.Day,
		CurrentTime:     input.Time,
	})
	if err != nil {
		return nil, err
	}

	name := input.Name
	if name == "" {
		name = "Campaign Clock"
	}
	clock := &Clock{
		ID:       uuid.NewString(),
		Name:     name,
		Calendar: def.Name,
		cal:      cal,
	}
	if err := s.repo.Create(ctx, clock); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("create clock: %w", err))
	}

	s.log.Info("clock created",
		slog.String("id", clock.ID),
		slog.String("calendar", clock.Calendar),
		slog.Int("start_year", cal.StartYear()),
	)
	snap := clock.Snapshot()
	return &snap, nil
}

// GetClock returns a clock's current position.
func (s *service) GetClock(ctx context.Context, id string) (*Snapshot, error) {
	clock, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := clock.Snapshot()
	return &snap, nil
}

// ListClocks returns all clocks, sorted by name for stable output.
func (s *service) ListClocks(ctx context.Context) ([]Snapshot, error) {
	clocks, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("list clocks: %w", err))
	}
	snaps := make([]Snapshot, 0, len(clocks))
	for _, c := range clocks {
		snaps = append(snaps, c.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps, nil
}

// DeleteClock removes a clock.
func (s *service) DeleteClock(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetDay moves a clock to an absolute day offset.
func (s *service) SetDay(ctx context.Context, id string, day int) (*Snapshot, error) {
	clock, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := clock.SetDay(day)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SetTime sets a clock's time of day.
func (s *service) SetTime(ctx context.Context, id string, seconds int) (*Snapshot, error) {
	clock, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := clock.SetTime(seconds)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Advance applies a relative adjustment, converting Amount/Unit through the
// clock's metrics table first.
func (s *service) Advance(ctx context.Context, id string, input AdvanceInput) (*Snapshot, error) {
	clock, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	seconds := input.Seconds
	if input.Amount != 0 {
		if input.Unit == "" {
			return nil, apperror.NewValidation("amount requires a unit")
		}
		per, ok := clock.UnitSeconds(input.Unit)
		if !ok {
			return nil, apperror.NewValidation(fmt.Sprintf("unknown time unit %q", input.Unit))
		}
		seconds += input.Amount * per
	}

	snap, err := clock.Advance(input.Days, seconds)
	if err != nil {
		return nil, err
	}
	s.log.Debug("clock advanced",
		slog.String("id", id),
		slog.Int("days", input.Days),
		slog.Int("seconds", seconds),
	)
	return &snap, nil
}

// get fetches a clock or returns a not-found error.
func (s *service) get(ctx context.Context, id string) (*Clock, error) {
	clock, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("get clock: %w", err))
	}
	if clock == nil {
		return nil, apperror.NewNotFound("clock not found")
	}
	return clock, nil
}
