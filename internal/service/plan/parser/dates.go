package parser

import "time"

// dateOnly truncates t to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weekStart returns the first day of week n (1-based).
func weekStart(planStart time.Time, n int) time.Time {
	if n < 1 {
		n = 1
	}
	return dateOnly(planStart).AddDate(0, 0, (n-1)*7)
}

// dayOffset is the number of days from start to the next dow (1=Sunday..7=Saturday),
// zero when start already falls on dow.
func dayOffset(dow int, start time.Time) int {
	return ((dow - 1) - int(start.Weekday()) + 7) % 7
}

// dayOfWeek converts a date to 1=Sunday..7=Saturday.
func dayOfWeek(t time.Time) int {
	return int(t.Weekday()) + 1
}
