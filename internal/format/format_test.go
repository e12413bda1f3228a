package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₱0.00"},
		{5, "₱5.00"},
		{999.999, "₱1,000.00"},
		{1234.5, "₱1,234.50"},
		{1234567.891, "₱1,234,567.89"},
		{-2500, "-₱2,500.00"},
		{math.NaN(), "₱0.00"},
		{-0.001, "₱0.00"},
		{-0.004, "₱0.00"},
		{math.Copysign(0, -1), "₱0.00"},
		{-0.01, "-₱0.01"},
		{-1234.5, "-₱1,234.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in))
	}
	assert.Equal(t, "$12.00", CurrencyWith("$", 12))
}

func TestDates(t *testing.T) {
	pht := time.FixedZone("PHT", 8*60*60)
	ts := time.Date(2026, time.October, 13, 23, 5, 0, 0, time.UTC)

	assert.Equal(t, "Oct 14, 2026", Date(ts, pht))
	assert.Equal(t, "Oct 13, 2026", Date(ts, nil))
	assert.Equal(t, "Oct 14, 2026 7:05 AM", DateTime(ts, pht))
	assert.Equal(t, Missing, Date(time.Time{}, pht))
	assert.Equal(t, Missing, DatePtr(nil, pht))
	assert.Equal(t, "Oct 14, 2026", DatePtr(&ts, pht))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+63 917 123 4567", Phone("0917 123 4567", "PH"))
	assert.Equal(t, "+639171234567", PhoneE164("09171234567", ""))
	assert.Equal(t, "call me", Phone(" call me ", "PH"))
	assert.Equal(t, "", Phone("", "PH"))
	assert.Equal(t, "", PhoneE164("12", "PH"))
}
