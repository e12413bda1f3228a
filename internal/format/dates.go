package format

import "time"

const (
	DateLayout     = "Jan 2, 2006"
	DateTimeLayout = "Jan 2, 2006 3:04 PM"
	// Placeholder shown for absent dates.
	Missing = "—"
)

// Date renders t in loc; a nil loc keeps t's own location.
func Date(t time.Time, loc *time.Location) string {
	return render(t, loc, DateLayout)
}

func DateTime(t time.Time, loc *time.Location) string {
	return render(t, loc, DateTimeLayout)
}

// DatePtr handles optional instants such as completion dates.
func DatePtr(t *time.Time, loc *time.Location) string {
	if t == nil {
		return Missing
	}
	return Date(*t, loc)
}

func render(t time.Time, loc *time.Location, layout string) string {
	if t.IsZero() {
		return Missing
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(layout)
}
