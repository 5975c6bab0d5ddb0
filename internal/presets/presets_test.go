package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelworks/hourglass/internal/calendar"
)

func TestParseDefinition(t *testing.T) {
	src := `
name: Quartered Year
months:
  - name: Q1
    days: 91
  - name: Q2
    days: 91
  - name: Q3
    days: 91
  - name: Q4
    days: 92
    leap_days: 1
leap:
  every: 5
  offset: 2
`
	def, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Name != "Quartered Year" || len(def.Months) != 4 {
		t.Fatalf("parsed %q with %d months", def.Name, len(def.Months))
	}

	gen := def.Generator()
	normal := gen(3)
	leap := gen(7) // (7-2) % 5 == 0

	if got := totalDays(normal); got != 365 {
		t.Errorf("normal year has %d days, want 365", got)
	}
	if got := totalDays(leap); got != 366 {
		t.Errorf("leap year has %d days, want 366", got)
	}
	if leap[3].Length != 93 {
		t.Errorf("Q4 in a leap year has %d days, want 93", leap[3].Length)
	}
}

func TestParseRejectsBadDefinitions(t *testing.T) {
	bad := []string{
		`name: empty`,
		`months: [{name: "", days: 30}]`,
		`months: [{name: M, days: 0}]`,
		`months: [{name: M, days: 1, leap_days: -1}]`,
		`{{not yaml`,
	}
	for _, src := range bad {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse accepted %q", src)
		}
	}
}

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib
}

func TestBuiltins(t *testing.T) {
	lib := newTestLibrary(t)

	names := lib.Names()
	if len(names) < 2 {
		t.Fatalf("Names = %v, want at least gregorian and harptos", names)
	}

	greg, err := lib.Get("gregorian")
	if err != nil {
		t.Fatalf("Get(gregorian): %v", err)
	}
	gen := greg.Generator()
	if got := totalDays(gen(2023)); got != 365 {
		t.Errorf("gregorian 2023 has %d days, want 365", got)
	}
	if got := totalDays(gen(2024)); got != 366 {
		t.Errorf("gregorian 2024 has %d days, want 366", got)
	}
	if got := totalDays(gen(1900)); got != 365 {
		t.Errorf("gregorian 1900 has %d days, want 365", got)
	}

	harptos, err := lib.Get("harptos")
	if err != nil {
		t.Fatalf("Get(harptos): %v", err)
	}
	hgen := harptos.Generator()
	if got := totalDays(hgen(1491)); got != 365 {
		t.Errorf("harptos 1491 has %d days, want 365", got)
	}
	if got := totalDays(hgen(1492)); got != 366 {
		t.Errorf("harptos 1492 (Shieldmeet) has %d days, want 366", got)
	}

	if _, err := lib.Get("klingon"); err == nil {
		t.Error("Get found a preset that does not ship")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	src := "name: Tenday\nmonths:\n  - name: Only\n    days: 10\n"
	if err := os.WriteFile(filepath.Join(dir, "tenday.yaml"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	// Non-YAML files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}

	lib := newTestLibrary(t)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	def, err := lib.Get("tenday")
	if err != nil {
		t.Fatalf("Get(tenday): %v", err)
	}
	if def.Months[0].Days != 10 {
		t.Errorf("months = %+v", def.Months)
	}

	if err := lib.LoadDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("LoadDir accepted a missing directory")
	}
}

// The compiled generator must satisfy the engine's boundary contract.
func TestGeneratorDrivesEngine(t *testing.T) {
	def, err := newTestLibrary(t).Get("harptos")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	c, err := calendar.New(calendar.Options{
		StartYear:       1491,
		PopulateExtents: def.Generator(),
		CurrentDay:      30,
	})
	if err != nil {
		t.Fatalf("calendar.New: %v", err)
	}

	e, err := c.CurrentExtent()
	if err != nil {
		t.Fatalf("CurrentExtent: %v", err)
	}
	if e.Name != "Midwinter" {
		t.Errorf("day 30 of Harptos is %q, want Midwinter", e.Name)
	}
}

func TestDetectAndParseSimpleCalendar(t *testing.T) {
	src := `{
		"calendar": {
			"name": "Exandrian",
			"months": [
				{"name": "Horisal", "numberOfDays": 29, "numberOfLeapYearDays": 29},
				{"name": "Misuthar", "numberOfDays": 30, "numberOfLeapYearDays": 31}
			],
			"leapYear": {"rule": "customMod", "customMod": 4}
		}
	}`

	def, format, err := DetectAndParse([]byte(src))
	if err != nil {
		t.Fatalf("DetectAndParse: %v", err)
	}
	if format != FormatSimpleCalendar {
		t.Errorf("format = %q, want %q", format, FormatSimpleCalendar)
	}
	if def.Name != "Exandrian" || len(def.Months) != 2 {
		t.Fatalf("parsed %q with %d months", def.Name, len(def.Months))
	}
	if def.Months[1].LeapDays != 1 {
		t.Errorf("Misuthar leap_days = %d, want 1", def.Months[1].LeapDays)
	}
	if def.Leap.Every != 4 {
		t.Errorf("leap rule every = %d, want 4", def.Leap.Every)
	}
}

func TestDetectAndParseNative(t *testing.T) {
	src := `{"name": "Flat", "months": [{"name": "Only", "days": 10}]}`

	def, format, err := DetectAndParse([]byte(src))
	if err != nil {
		t.Fatalf("DetectAndParse: %v", err)
	}
	if format != FormatNative {
		t.Errorf("format = %q, want %q", format, FormatNative)
	}
	if def.Months[0].Days != 10 {
		t.Errorf("months = %+v", def.Months)
	}
}

func TestDetectAndParseUnknown(t *testing.T) {
	if _, format, err := DetectAndParse([]byte(`{"weekdays": []}`)); err == nil || format != FormatUnknown {
		t.Errorf("DetectAndParse = (%q, %v), want unknown format error", format, err)
	}
}

func totalDays(exts []calendar.Extent) int {
	total := 0
	for _, e := range exts {
		total += e.Length
	}
	return total
}
