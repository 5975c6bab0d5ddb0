package calendar

// gregorianMonths is the standard 12-month layout with February at its
// non-leap length.
var gregorianMonths = [12]Extent{
	{Name: "January", Length: 31},
	{Name: "February", Length: 28},
	{Name: "March", Length: 31},
	{Name: "April", Length: 30},
	{Name: "May", Length: 31},
	{Name: "June", Length: 30},
	{Name: "July", Length: 31},
	{Name: "August", Length: 31},
	{Name: "September", Length: 30},
	{Name: "October", Length: 31},
	{Name: "November", Length: 30},
	{Name: "December", Length: 31},
}

// Gregorian is the default extent generator: the 12 Gregorian months, with
// February gaining a day in leap years.
func Gregorian(year int) []Extent {
	months := make([]Extent, len(gregorianMonths))
	copy(months[:], gregorianMonths[:])
	if IsGregorianLeapYear(year) {
		months[1].Length++
	}
	return months
}

// IsGregorianLeapYear implements the standard leap rule: every 4th year,
// except centuries not divisible by 400.
func IsGregorianLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
