// Package timekeeper manages the running game clocks of campaigns. Each
// clock owns a calendar engine instance built from a preset or an inline
// definition. The engine itself is single-owner; the clock serializes all
// access behind a mutex so API handlers can share it freely. Clocks live
// in memory only — positions are part of the live session, not stored data.
package timekeeper

import (
	"sync"

	"github.com/kestrelworks/hourglass/internal/calendar"
)

// Clock is a named, lockable calendar engine.
type Clock struct {
	ID       string
	Name     string
	Calendar string // definition name, for display

	mu  sync.Mutex
	cal *calendar.Calendar
}

// Snapshot is the externally visible state of a clock.
type Snapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Calendar    string `json:"calendar"`
	Year        int    `json:"year"`
	Day         int    `json:"day"`
	Time        int    `json:"time"`
	TotalDays   int    `json:"total_days"`
	Extent      string `json:"extent"`
	DayOfExtent int    `json:"day_of_extent"`
}

// Snapshot captures the clock's position. The extent fields resolve lazily
// like everything else, but the current year is always cached so this
// cannot fail once the clock exists.
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Clock) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:        c.ID,
		Name:      c.Name,
		Calendar:  c.Calendar,
		Year:      c.cal.StartYear(),
		Day:       c.cal.CurrentDay(),
		Time:      c.cal.CurrentTime(),
		TotalDays: c.cal.TotalDays(),
	}
	if e, err := c.cal.CurrentExtent(); err == nil {
		s.Extent = e.Name
		s.DayOfExtent = s.Day - e.StartDay
	}
	return s
}

// SetDay moves the clock to an absolute day offset, rolling years as needed.
func (c *Clock) SetDay(n int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.cal.SetCurrentDay(n); err != nil {
		return Snapshot{}, err
	}
	return c.snapshotLocked(), nil
}

// SetTime sets the clock's time of day in seconds.
func (c *Clock) SetTime(n int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cal.SetCurrentTime(n)
	return c.snapshotLocked(), nil
}

// Advance moves the clock by a relative number of days and seconds in one
// locked step. Either may be negative.
func (c *Clock) Advance(days, seconds int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if days != 0 {
		if err := c.cal.AdjustDay(days); err != nil {
			return Snapshot{}, err
		}
	}
	if seconds != 0 {
		if err := c.cal.AdjustTime(seconds); err != nil {
			return Snapshot{}, err
		}
	}
	return c.snapshotLocked(), nil
}

// UnitSeconds resolves a unit name against the clock's metrics table.
func (c *Clock) UnitSeconds(unit string) (int, bool) {
	return c.cal.Metrics().Seconds(unit)
}
