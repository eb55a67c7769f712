package payroll

// Pure ISO-8601 week arithmetic over calendar dates. Weeks start Monday and
// week 1 is the week containing the year's first Thursday. Implemented from
// the calendar directly so bucketing never depends on time-zone or locale
// behavior of a platform date API.

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var daysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// ordinalDay returns the 1-based day of year for the given calendar date.
func ordinalDay(year, month, day int) int {
	ordinal := daysBeforeMonth[month-1] + day
	if month > 2 && isLeapYear(year) {
		ordinal++
	}
	return ordinal
}

// isoWeekday returns the ISO weekday (Monday=1 .. Sunday=7) for a date,
// using the standard Gregorian day-of-week congruence.
func isoWeekday(year, month, day int) int {
	// Shift Jan/Feb to months 13/14 of the previous year (Zeller).
	y, m := year, month
	if m < 3 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + 13*(m+1)/5 + k + k/4 + j/4 + 5*j) % 7
	// h: 0=Saturday .. 6=Friday; map to ISO 1=Monday .. 7=Sunday.
	wd := ((h + 5) % 7) + 1
	return wd
}

// isoWeeksInYear returns 52 or 53 per the ISO calendar.
func isoWeeksInYear(year int) int {
	p := func(y int) int {
		return (y + y/4 - y/100 + y/400) % 7
	}
	if p(year) == 4 || p(year-1) == 3 {
		return 53
	}
	return 52
}

// ISOWeek returns the ISO-8601 week-numbering year and week for a calendar
// date. Dates in the first days of January may belong to the previous ISO
// year, and late-December dates to the next.
func ISOWeek(year, month, day int) (isoYear, week int) {
	ordinal := ordinalDay(year, month, day)
	weekday := isoWeekday(year, month, day)
	week = (ordinal - weekday + 10) / 7
	switch {
	case week < 1:
		return year - 1, isoWeeksInYear(year - 1)
	case week > isoWeeksInYear(year):
		return year + 1, 1
	default:
		return year, week
	}
}
