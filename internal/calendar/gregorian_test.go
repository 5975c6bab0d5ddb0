package calendar

import "testing"

func TestGregorianLeapRule(t *testing.T) {
	tests := []struct {
		year int
		leap bool
	}{
		{2023, false},
		{2024, true},
		{1900, false},
		{2000, true},
		{2100, false},
		{0, true},
		{-4, true},
	}
	for _, tt := range tests {
		if got := IsGregorianLeapYear(tt.year); got != tt.leap {
			t.Errorf("IsGregorianLeapYear(%d) = %v, want %v", tt.year, got, tt.leap)
		}
	}
}

func TestGregorianYearShape(t *testing.T) {
	months := Gregorian(2023)
	if len(months) != 12 {
		t.Fatalf("got %d months, want 12", len(months))
	}
	if months[1].Name != "February" || months[1].Length != 28 {
		t.Errorf("month 1 = %+v, want February with 28 days", months[1])
	}

	leap := Gregorian(2024)
	if leap[1].Length != 29 {
		t.Errorf("February 2024 has %d days, want 29", leap[1].Length)
	}

	// The generator must not leak the leap day into later calls.
	again := Gregorian(2023)
	if again[1].Length != 28 {
		t.Errorf("February 2023 has %d days after generating 2024, want 28", again[1].Length)
	}
}

func TestGregorianYearLengths(t *testing.T) {
	c := mustNew(t, Options{StartYear: 2023, PopulateExtents: Gregorian})

	for year, want := range map[int]int{2023: 365, 2024: 366, 1900: 365, 2000: 366} {
		got, err := c.YearLength(year)
		if err != nil {
			t.Fatalf("YearLength(%d): %v", year, err)
		}
		if got != want {
			t.Errorf("YearLength(%d) = %d, want %d", year, got, want)
		}
	}
}
