package timekeeper

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/kestrelworks/hourglass/internal/apperror"
)

// AutoAdvancer runs clocks against real time: on a cron schedule it pushes
// a fixed number of game seconds onto a clock, so game time can flow at a
// configurable ratio of wall-clock time between sessions.
type AutoAdvancer struct {
	svc  Service
	cron *cron.Cron
	log  *slog.Logger
}

// NewAutoAdvancer creates a stopped AutoAdvancer.
func NewAutoAdvancer(svc Service, logger *slog.Logger) *AutoAdvancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoAdvancer{
		svc:  svc,
		cron: cron.New(),
		log:  logger,
	}
}

// Schedule registers a clock for automatic advancement. spec is a standard
// five-field cron expression; gameSeconds is applied on every firing. A
// failed advance is logged and the schedule keeps running — a later firing
// may succeed once the underlying problem (usually a broken custom
// definition for a not-yet-visited year) is fixed.
func (a *AutoAdvancer) Schedule(clockID, spec string, gameSeconds int) (cron.EntryID, error) {
	if gameSeconds == 0 {
		return 0, apperror.NewValidation("auto-advance requires a non-zero number of game seconds")
	}
	id, err := a.cron.AddFunc(spec, func() {
		snap, err := a.svc.Advance(context.Background(), clockID, AdvanceInput{Seconds: gameSeconds})
		if err != nil {
			a.log.Error("auto-advance failed",
				slog.String("clock", clockID),
				slog.Any("error", err),
			)
			return
		}
		a.log.Debug("auto-advanced clock",
			slog.String("clock", clockID),
			slog.Int("year", snap.Year),
			slog.Int("day", snap.Day),
			slog.Int("time", snap.Time),
		)
	})
	if err != nil {
		return 0, apperror.NewValidation("invalid cron expression: " + spec)
	}
	return id, nil
}

// Unschedule removes a previously registered schedule.
func (a *AutoAdvancer) Unschedule(id cron.EntryID) {
	a.cron.Remove(id)
}

// Start begins firing schedules in their own goroutine.
func (a *AutoAdvancer) Start() {
	a.cron.Start()
}

// Stop halts the scheduler and waits for any running job to finish.
func (a *AutoAdvancer) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}
