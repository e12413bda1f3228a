package aggregate

import "time"

// Window is a half-open [Start, End) range of instants.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Predicate adapts the window to CountStatuses.
func (w Window) Predicate() func(time.Time) bool {
	return w.Contains
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today covers the local calendar day of now.
func Today(now time.Time) Window {
	start := startOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ThisWeek covers Sunday through Saturday of now's week.
func ThisWeek(now time.Time) Window {
	start := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

func ThisMonth(now time.Time) Window {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

func ThisYear(now time.Time) Window {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(1, 0, 0)}
}

// WindowFor returns the active window of a period. Unknown periods use the month.
func WindowFor(p Period, now time.Time) Window {
	switch p {
	case PeriodDaily:
		return Today(now)
	case PeriodWeekly:
		return ThisWeek(now)
	case PeriodYearly:
		return ThisYear(now)
	default:
		return ThisMonth(now)
	}
}
