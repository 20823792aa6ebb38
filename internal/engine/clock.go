package engine

import "time"

// RunDateLayout is the calendar-date format of a run's logical date.
const RunDateLayout = "2006-01-02"

// Clock supplies wall-clock time to a pass. The run date is derived from it
// once per pass, never per row.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// RunDate returns the UTC calendar date of t, e.g. "2024-05-03".
func RunDate(t time.Time) string {
	return t.UTC().Format(RunDateLayout)
}
