// Package presets turns declarative calendar definitions into extent
// generators for the engine. A definition lists a year's months and an
// optional leap rule; the compiled generator reshapes the year whenever the
// rule fires. Definitions describe calendar *structure* only — the running
// position of a clock is never written anywhere.
package presets

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/hourglass/internal/apperror"
	"github.com/kestrelworks/hourglass/internal/calendar"
)

// MonthDef is one named span in a definition. LeapDays is added to Days in
// years where the leap rule fires, and may be negative as long as the
// resulting length stays positive.
type MonthDef struct {
	Name     string `yaml:"name" json:"name"`
	Days     int    `yaml:"days" json:"days"`
	LeapDays int    `yaml:"leap_days,omitempty" json:"leap_days,omitempty"`
}

// LeapRule decides which years get their months' LeapDays. The zero value
// means no leap years at all.
type LeapRule struct {
	// Gregorian selects the standard 4/100/400 rule; Every and Offset are
	// ignored when set.
	Gregorian bool `yaml:"gregorian,omitempty" json:"gregorian,omitempty"`

	// Every fires the rule when (year-Offset) is divisible by it.
	Every  int `yaml:"every,omitempty" json:"every,omitempty"`
	Offset int `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// IsLeapYear reports whether the rule fires for a year.
func (r LeapRule) IsLeapYear(year int) bool {
	if r.Gregorian {
		return calendar.IsGregorianLeapYear(year)
	}
	if r.Every <= 0 {
		return false
	}
	return (year-r.Offset)%r.Every == 0
}

// Definition is a complete declarative calendar.
type Definition struct {
	Name   string     `yaml:"name" json:"name"`
	Months []MonthDef `yaml:"months" json:"months"`
	Leap   LeapRule   `yaml:"leap,omitempty" json:"leap,omitempty"`
}

// Parse reads a YAML (or JSON — YAML is a superset) definition and
// validates it.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, apperror.NewValidation(fmt.Sprintf("malformed calendar definition: %v", err))
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition's structural contract.
func (d *Definition) Validate() error {
	if len(d.Months) == 0 {
		return apperror.NewValidation("calendar definition must have at least one month")
	}
	for i, m := range d.Months {
		if m.Name == "" {
			return apperror.NewValidation(fmt.Sprintf("month %d: name is required", i+1))
		}
		if m.Days < 1 {
			return apperror.NewValidation(fmt.Sprintf("month %q: days must be positive", m.Name))
		}
		if m.Days+m.LeapDays < 1 {
			return apperror.NewValidation(fmt.Sprintf("month %q: leap_days would make the month empty", m.Name))
		}
	}
	return nil
}

// Generator compiles the definition into an extent generator for the
// engine. The returned function is pure: each call builds a fresh slice.
func (d *Definition) Generator() calendar.Generator {
	months := make([]MonthDef, len(d.Months))
	copy(months, d.Months)
	rule := d.Leap

	return func(year int) []calendar.Extent {
		leap := rule.IsLeapYear(year)
		exts := make([]calendar.Extent, len(months))
		for i, m := range months {
			days := m.Days
			if leap {
				days += m.LeapDays
			}
			exts[i] = calendar.Extent{Name: m.Name, Length: days}
		}
		return exts
	}
}

//go:embed defs/*.yaml
var builtinFS embed.FS

// Library is a named collection of definitions: the built-in presets plus
// any loaded from disk. Presets are keyed by file name without extension
// (e.g. "gregorian", "harptos"); a loaded file shadows a built-in of the
// same name.
type Library struct {
	defs map[string]*Definition
}

// NewLibrary builds a Library containing the presets shipped with the
// server.
func NewLibrary() (*Library, error) {
	lib := &Library{defs: make(map[string]*Definition)}

	entries, err := builtinFS.ReadDir("defs")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := builtinFS.ReadFile("defs/" + e.Name())
		if err != nil {
			return nil, err
		}
		def, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("built-in preset %s: %w", e.Name(), err)
		}
		lib.defs[presetKey(e.Name())] = def
	}
	return lib, nil
}

// LoadDir adds every *.yaml definition in dir to the library.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read preset dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read preset %s: %w", e.Name(), err)
		}
		def, err := Parse(data)
		if err != nil {
			return fmt.Errorf("preset %s: %w", e.Name(), err)
		}
		l.defs[presetKey(e.Name())] = def
	}
	return nil
}

// Get returns the named preset.
func (l *Library) Get(name string) (*Definition, error) {
	def, ok := l.defs[name]
	if !ok {
		return nil, apperror.NewNotFound(fmt.Sprintf("no calendar preset %q", name))
	}
	return def, nil
}

// Names lists the available presets, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.defs))
	for name := range l.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func presetKey(filename string) string {
	return strings.TrimSuffix(filename, ".yaml")
}
