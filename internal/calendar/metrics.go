package calendar

import (
	"fmt"

	"github.com/kestrelworks/hourglass/internal/apperror"
)

// Metrics maps time-unit names to their length in seconds. A table must at
// least define "day"; all time-of-day normalization reduces modulo that
// entry. Tables conventionally carry a plural alias for every unit so
// callers can say "3 rounds" as naturally as "1 round".
type Metrics map[string]int

// DefaultMetrics returns the standard table: real-world seconds, minutes
// and hours plus the six-second combat round ("turn" is an alias kept for
// older rule systems that use the term interchangeably).
func DefaultMetrics() Metrics {
	return Metrics{
		"second": 1, "seconds": 1,
		"turn": 6, "turns": 6,
		"round": 6, "rounds": 6,
		"minute": 60, "minutes": 60,
		"hour": 3600, "hours": 3600,
		"day": 86400, "days": 86400,
	}
}

// Day returns the number of seconds in a day.
func (m Metrics) Day() int {
	return m["day"]
}

// Seconds looks up a unit by name and reports whether it is defined.
func (m Metrics) Seconds(unit string) (int, bool) {
	n, ok := m[unit]
	return n, ok
}

// Validate checks the table's runtime contract: a "day" entry must exist
// and every unit must have a positive length.
func (m Metrics) Validate() error {
	if _, ok := m["day"]; !ok {
		return apperror.NewValidation(`metrics table must define a "day" unit`)
	}
	for unit, secs := range m {
		if secs <= 0 {
			return apperror.NewValidation(fmt.Sprintf("metrics unit %q: seconds must be positive", unit))
		}
	}
	return nil
}
