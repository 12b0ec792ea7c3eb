// Package calendar decides whether the equity market is open at a given instant.
package calendar

import "time"

const (
	DefaultOpenHour    = 8
	DefaultCloseHour   = 15
	DefaultOffsetHours = -5
)

// Calendar is a fixed weekday trading window in a fixed-offset region.
//
// The regional hour is computed as the UTC hour plus OffsetHours without
// wrapping into the previous or next day and without daylight-saving
// adjustment, so the window drifts by an hour for part of the year.
type Calendar struct {
	OpenHour    int
	CloseHour   int
	OffsetHours int
}

// New creates a calendar with the default trading window.
func New() Calendar {
	return Calendar{
		OpenHour:    DefaultOpenHour,
		CloseHour:   DefaultCloseHour,
		OffsetHours: DefaultOffsetHours,
	}
}

// IsOpen reports whether orders may be placed at now.
func (c Calendar) IsOpen(now time.Time) bool {
	utc := now.UTC()
	switch utc.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	hour := utc.Hour() + c.OffsetHours
	return hour >= c.OpenHour && hour < c.CloseHour
}
