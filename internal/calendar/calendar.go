// Package calendar implements game-time arithmetic over a user-defined
// year structure. A year is an ordered sequence of named, variable-length
// extents produced lazily by a caller-supplied generator, so the shape of
// a year may differ from its neighbors (leap years, inserted festival
// periods). The Calendar tracks a current position — year, day of year,
// time of day — and normalizes it across extent and year boundaries as it
// is advanced or rewound, including multi-year rollovers in either
// direction.
//
// A Calendar is intended for single-owner, single-threaded use. Every
// operation is a pure in-memory computation; callers needing concurrent
// access must serialize externally.
package calendar

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kestrelworks/hourglass/internal/apperror"
	"github.com/kestrelworks/hourglass/internal/search"
)

// Options configures a new Calendar.
type Options struct {
	// StartYear is the year the initial position falls within. Required in
	// the sense that the zero value is a perfectly valid year number.
	StartYear int

	// PopulateExtents produces each year's extent list on demand. Required.
	PopulateExtents Generator

	// Metrics overrides the unit table. Defaults to DefaultMetrics().
	Metrics Metrics

	// Logger receives engine diagnostics. Defaults to a silent logger.
	Logger *slog.Logger

	// CurrentDay is the initial day offset relative to StartYear. It may be
	// out of range, in which case it rolls into neighboring years during
	// construction. Defaults to 0.
	CurrentDay int

	// CurrentTime is the initial time of day in seconds. Defaults to 0.
	CurrentTime int
}

// Calendar is the stateful game-time engine. The four position fields are
// kept mutually consistent at all times: totalDays always equals the
// resolved length of startYear, currentDay is always within [0, totalDays)
// and currentTime within [0, metrics day length). Updates compute the whole
// new position into locals and commit only after validation, so a failure
// leaves the previous consistent state intact.
type Calendar struct {
	populate Generator
	metrics  Metrics
	log      *slog.Logger

	startYear   int
	currentDay  int
	currentTime int
	totalDays   int

	cache extentCache
}

// New builds a Calendar, resolves the starting year's extents immediately,
// and applies the initial day and time through the normal setters so an
// out-of-range initial day rolls over correctly.
func New(opts Options) (*Calendar, error) {
	if opts.PopulateExtents == nil {
		return nil, apperror.NewValidation("an extent generator is required")
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = DefaultMetrics()
	}
	if err := metrics.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Calendar{
		populate:  opts.PopulateExtents,
		metrics:   metrics,
		log:       logger,
		startYear: opts.StartYear,
		cache:     newExtentCache(),
	}

	total, err := c.YearLength(opts.StartYear)
	if err != nil {
		return nil, err
	}
	c.totalDays = total
	c.log.Info("calendar initialized",
		slog.Int("start_year", opts.StartYear),
		slog.Int("total_days", total),
	)

	if err := c.SetCurrentDay(opts.CurrentDay); err != nil {
		return nil, err
	}
	c.SetCurrentTime(opts.CurrentTime)
	return c, nil
}

// NewGregorian builds a Calendar on the default Gregorian generator and
// unit table.
func NewGregorian(startYear int) (*Calendar, error) {
	return New(Options{StartYear: startYear, PopulateExtents: Gregorian})
}

// StartYear returns the year the current position falls within.
func (c *Calendar) StartYear() int { return c.startYear }

// CurrentDay returns the current day offset within the current year.
func (c *Calendar) CurrentDay() int { return c.currentDay }

// CurrentTime returns the current time of day in seconds.
func (c *Calendar) CurrentTime() int { return c.currentTime }

// TotalDays returns the length in days of the current year.
func (c *Calendar) TotalDays() int { return c.totalDays }

// Metrics returns the calendar's unit table. Callers must not mutate it.
func (c *Calendar) Metrics() Metrics { return c.metrics }

// resolve invokes the generator for a year, validates its output, positions
// each extent at the running sum of the preceding lengths, and fills both
// cache views. Resolving an already-cached year is an engine defect and
// fails loudly rather than silently regenerating.
func (c *Calendar) resolve(year int) error {
	if c.cache.populated(year) {
		return apperror.NewInvariant(fmt.Sprintf("extents for year %d resolved twice", year))
	}

	extents := c.populate(year)
	if len(extents) == 0 {
		return apperror.NewValidation(fmt.Sprintf("extent generator produced no extents for year %d", year))
	}

	resolved := make([]ResolvedExtent, len(extents))
	start := 0
	for i, e := range extents {
		if e.Name == "" {
			return apperror.NewValidation(fmt.Sprintf("extent %d of year %d has no name", i, year))
		}
		if e.Length <= 0 {
			return apperror.NewValidation(fmt.Sprintf("extent %d (%q) of year %d: length must be positive", i, e.Name, year))
		}
		resolved[i] = ResolvedExtent{Extent: e, Year: year, StartDay: start}
		start += e.Length
	}

	if err := c.cache.insert(year, resolved); err != nil {
		return err
	}
	c.log.Debug("resolved year",
		slog.Int("year", year),
		slog.Int("extents", len(resolved)),
		slog.Int("days", start),
	)
	return nil
}

// YearLength returns the total day count of a year, resolving its extents
// first if this is the first time the year is touched.
func (c *Calendar) YearLength(year int) (int, error) {
	if !c.cache.populated(year) {
		if err := c.resolve(year); err != nil {
			return 0, err
		}
	}
	exts := c.cache.year(year)
	last := exts[len(exts)-1]
	return last.EndDay(), nil
}

// SetCurrentDay moves the position to day n, where n is expressed relative
// to the current year's numbering and may be negative or beyond the year's
// end. The position rolls across as many year boundaries as the offset
// spans: rolling backward adds each previous year's full length until the
// offset is non-negative, rolling forward subtracts each departed year's
// full length until the offset fits the year it lands in. A single call
// can never need both directions; if it does, the engine's own arithmetic
// is broken and an invariant violation is returned with the state
// untouched.
func (c *Calendar) SetCurrentDay(n int) error {
	thisYear := c.startYear
	total, err := c.YearLength(thisYear)
	if err != nil {
		return err
	}

	rolledBack := false
	for n < 0 {
		thisYear--
		total, err = c.YearLength(thisYear)
		if err != nil {
			return err
		}
		n += total
		rolledBack = true
	}
	for n >= total {
		if rolledBack {
			return apperror.NewInvariant("day normalization rolled both backward and forward in one call")
		}
		// Subtract the departed year's length before moving on, so the
		// residual stays within [0, next year's length) even when the
		// years differ in length.
		n -= total
		thisYear++
		total, err = c.YearLength(thisYear)
		if err != nil {
			return err
		}
	}

	c.currentDay = n
	c.startYear = thisYear
	c.totalDays = total
	return nil
}

// SetCurrentTime sets the time of day to n seconds, normalized into
// [0, day length). The day and year are untouched.
func (c *Calendar) SetCurrentTime(n int) {
	day := c.metrics.Day()
	for n < 0 {
		n += day
	}
	c.currentTime = n % day
}

// AdjustDay moves the position by a relative number of days, positive or
// negative, reusing the full rollover logic of SetCurrentDay.
func (c *Calendar) AdjustDay(n int) error {
	return c.SetCurrentDay(c.currentDay + n)
}

// AdjustTime moves the position by a relative number of seconds of any
// magnitude. The day rolls by however many whole days the delta spans
// (floor division, so negative deltas rewind correctly) and the residual
// becomes the new time of day. A single call can cross multiple day and
// year boundaries.
func (c *Calendar) AdjustTime(n int) error {
	newTime := c.currentTime + n
	if err := c.SetCurrentDay(c.currentDay + floorDiv(newTime, c.metrics.Day())); err != nil {
		return err
	}
	c.SetCurrentTime(newTime)
	return nil
}

// Extents returns a year's resolved extents in calendar order, resolving
// the year on first access. Callers must not mutate the returned slice.
func (c *Calendar) Extents(year int) ([]ResolvedExtent, error) {
	if !c.cache.populated(year) {
		if err := c.resolve(year); err != nil {
			return nil, err
		}
	}
	return c.cache.year(year), nil
}

// ExtentAt returns the extent containing the given day of the given year.
func (c *Calendar) ExtentAt(year, day int) (ResolvedExtent, error) {
	exts, err := c.Extents(year)
	if err != nil {
		return ResolvedExtent{}, err
	}
	if last := exts[len(exts)-1]; day < 0 || day >= last.EndDay() {
		return ResolvedExtent{}, apperror.NewBadRequest(fmt.Sprintf("day %d out of range for year %d", day, year))
	}

	// An exact hit on a StartDay is the extent itself; otherwise the
	// negated insertion index points one past the owning extent. Index 0
	// is always a hit here since the first extent starts at day 0.
	i := search.Find(exts, func(e ResolvedExtent) int { return day - e.StartDay })
	if i < 0 {
		i = -i - 1
	}
	return exts[i], nil
}

// CurrentExtent returns the extent containing the current position.
func (c *Calendar) CurrentExtent() (ResolvedExtent, error) {
	return c.ExtentAt(c.startYear, c.currentDay)
}

// ExtentByName returns the named extent's occurrence in the given year,
// resolving the year on first access.
func (c *Calendar) ExtentByName(name string, year int) (ResolvedExtent, error) {
	if !c.cache.populated(year) {
		if err := c.resolve(year); err != nil {
			return ResolvedExtent{}, err
		}
	}
	e, ok := c.cache.named(name, year)
	if !ok {
		return ResolvedExtent{}, apperror.NewNotFound(fmt.Sprintf("year %d has no extent named %q", year, name))
	}
	return e, nil
}

// floorDiv returns a/b rounded toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
