package analytics

import (
	"time"
)

// defaultWindowDays is the trailing span used when no explicit range is set.
const defaultWindowDays = 30

// DateWindow is an inclusive [From, To] day range. Bucketing works on UTC
// calendar days regardless of the timestamps' original zones.
type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DefaultWindow returns the trailing 30-day window ending at now.
func DefaultWindow(now time.Time) DateWindow {
	to := dayStart(now)
	return DateWindow{From: to.AddDate(0, 0, -(defaultWindowDays - 1)), To: to}
}

// Days reports how many calendar days the window spans, inclusive.
func (w DateWindow) Days() int {
	from := dayStart(w.From)
	to := dayStart(w.To)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// Valid reports whether the window is ordered.
func (w DateWindow) Valid() bool {
	return !dayStart(w.To).Before(dayStart(w.From))
}

func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func dayLabel(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
