package aggregate

import (
	"time"

	"autoshop/internal/clock"
)

var pht = time.FixedZone("PHT", 8*60*60)

// testNow is Wednesday 14 Oct 2026, 10:30 shop time.
var testNow = time.Date(2026, time.October, 14, 10, 30, 0, 0, pht)

func testClock() clock.Clock {
	return clock.Fixed{At: testNow}
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2026, month, day, hour, 0, 0, 0, pht)
}
