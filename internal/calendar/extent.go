package calendar

import (
	"fmt"

	"github.com/kestrelworks/hourglass/internal/apperror"
)

// Extent is a named span of consecutive days within a year, e.g. a month or
// an inserted festival period. Extents are supplied by a Generator and are
// immutable once produced for a given year.
type Extent struct {
	Name   string `json:"name"`
	Length int    `json:"length"` // days, must be positive
}

// ResolvedExtent is an Extent annotated with its owning year and its
// absolute start-day offset within that year. A year's resolved extents
// are always ordered by StartDay ascending.
type ResolvedExtent struct {
	Extent
	Year     int `json:"year"`
	StartDay int `json:"start_day"`
}

// EndDay returns the first day after this extent (StartDay + Length).
func (e ResolvedExtent) EndDay() int {
	return e.StartDay + e.Length
}

// Generator maps a year number to that year's ordered extent list. It must
// be deterministic and side-effect-free; the engine calls it at most once
// per distinct year and memoizes the result for the Calendar's lifetime,
// so an impure generator only ever has its first result observed.
type Generator func(year int) []Extent

// extentCache holds resolved extents for every year queried so far, as two
// views over the same records: by year in calendar order, and by extent
// name per year. Both views are always filled together for a year, never
// partially, and a populated year is never regenerated or mutated.
type extentCache struct {
	byYear map[int][]ResolvedExtent
	byName map[string]map[int]ResolvedExtent
}

func newExtentCache() extentCache {
	return extentCache{
		byYear: make(map[int][]ResolvedExtent),
		byName: make(map[string]map[int]ResolvedExtent),
	}
}

// populated reports whether year has been resolved already.
func (ec *extentCache) populated(year int) bool {
	_, ok := ec.byYear[year]
	return ok
}

// insert stores a year's resolved extents in both views. Inserting a year
// twice is an engine defect.
func (ec *extentCache) insert(year int, exts []ResolvedExtent) error {
	if ec.populated(year) {
		return apperror.NewInvariant(fmt.Sprintf("extent cache for year %d populated twice", year))
	}
	ec.byYear[year] = exts
	for _, e := range exts {
		byYear, ok := ec.byName[e.Name]
		if !ok {
			byYear = make(map[int]ResolvedExtent)
			ec.byName[e.Name] = byYear
		}
		byYear[year] = e
	}
	return nil
}

// year returns the resolved extents for a populated year in calendar order.
// Callers must not mutate the returned slice.
func (ec *extentCache) year(year int) []ResolvedExtent {
	return ec.byYear[year]
}

// named looks up the occurrence of the named extent in the given year.
func (ec *extentCache) named(name string, year int) (ResolvedExtent, bool) {
	e, ok := ec.byName[name][year]
	return e, ok
}
