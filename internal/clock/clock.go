package clock

import "time"

// Clock supplies the current instant. Aggregations take one instead of calling
// time.Now so that "today" and "this month" are reproducible.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock, optionally pinned to a shop location.
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location != nil {
		return time.Now().In(s.Location)
	}
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Location returns the location of the clock's current instant.
func Location(c Clock) *time.Location {
	if c == nil {
		return time.Local
	}
	return c.Now().Location()
}
