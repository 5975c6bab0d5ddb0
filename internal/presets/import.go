// Import of calendar definitions from external tools. Two formats are
// recognized:
//
//   - Native: a Definition serialized as JSON or YAML, identified by a
//     top-level "months" list whose entries carry "days".
//   - Simple Calendar (Foundry VTT): identified by a top-level "calendar"
//     key. Months use name/numberOfDays/numberOfLeapYearDays; the leap rule
//     is "gregorian", "customMod" (with customMod), or "none".
//
// Only structure is imported. Current-date fields in the source are
// ignored; a clock's position lives exclusively in the engine.
package presets

import (
	"encoding/json"

	"github.com/kestrelworks/hourglass/internal/apperror"
)

// ImportFormat identifies which definition format was detected.
type ImportFormat string

const (
	FormatNative         ImportFormat = "native"
	FormatSimpleCalendar ImportFormat = "simple-calendar"
	FormatUnknown        ImportFormat = "unknown"
)

// DetectAndParse auto-detects the format of raw bytes and parses them into
// a Definition.
func DetectAndParse(data []byte) (*Definition, ImportFormat, error) {
	switch detectFormat(data) {
	case FormatSimpleCalendar:
		def, err := parseSimpleCalendar(data)
		return def, FormatSimpleCalendar, err
	case FormatNative:
		def, err := Parse(data)
		return def, FormatNative, err
	default:
		return nil, FormatUnknown, apperror.NewValidation("unrecognized calendar format: expected a native definition or Simple Calendar JSON")
	}
}

// detectFormat inspects top-level keys to determine the source format.
// Non-JSON input falls through to the native parser, which accepts YAML.
func detectFormat(data []byte) ImportFormat {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return FormatNative
	}
	if _, ok := raw["calendar"]; ok {
		return FormatSimpleCalendar
	}
	if _, ok := raw["months"]; ok {
		return FormatNative
	}
	return FormatUnknown
}

// simpleCalendarFile mirrors the subset of a Simple Calendar export that
// maps onto a Definition.
type simpleCalendarFile struct {
	Calendar struct {
		Name   string `json:"name"`
		Months []struct {
			Name                 string `json:"name"`
			NumberOfDays         int    `json:"numberOfDays"`
			NumberOfLeapYearDays int    `json:"numberOfLeapYearDays"`
		} `json:"months"`
		LeapYear struct {
			Rule      string `json:"rule"` // "none", "gregorian", "customMod"
			CustomMod int    `json:"customMod"`
		} `json:"leapYear"`
	} `json:"calendar"`
}

func parseSimpleCalendar(data []byte) (*Definition, error) {
	var file simpleCalendarFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperror.NewValidation("malformed Simple Calendar export: " + err.Error())
	}

	def := &Definition{Name: file.Calendar.Name}
	for _, m := range file.Calendar.Months {
		// numberOfLeapYearDays is the month's total leap-year length;
		// exports leave it 0 for months the leap rule doesn't touch.
		leapDays := 0
		if m.NumberOfLeapYearDays > 0 {
			leapDays = m.NumberOfLeapYearDays - m.NumberOfDays
		}
		def.Months = append(def.Months, MonthDef{
			Name:     m.Name,
			Days:     m.NumberOfDays,
			LeapDays: leapDays,
		})
	}

	switch file.Calendar.LeapYear.Rule {
	case "gregorian":
		def.Leap = LeapRule{Gregorian: true}
	case "customMod":
		def.Leap = LeapRule{Every: file.Calendar.LeapYear.CustomMod}
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}
