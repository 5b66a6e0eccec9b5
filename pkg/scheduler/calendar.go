package scheduler

import "time"

const (
	// PJPDateLayout renders dates as dd-mm-yyyy
	PJPDateLayout = "02-01-2006"
	// FloaterDateLayout is the reference locale's short date (M/D/YYYY)
	FloaterDateLayout = "1/2/2006"
)

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthDays returns every date of the month at midnight UTC
func monthDays(year int, month time.Month) []time.Time {
	n := DaysIn(year, month)
	days := make([]time.Time, n)
	for d := 1; d <= n; d++ {
		days[d-1] = time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	}
	return days
}
