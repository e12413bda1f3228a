package format

import (
	"math"
	"strconv"
	"strings"
)

// DefaultCurrencySymbol is the peso sign used across the dashboard.
const DefaultCurrencySymbol = "₱"

// Currency renders amount with two decimals and thousands separators, e.g. ₱1,234.50.
func Currency(amount float64) string {
	return CurrencyWith(DefaultCurrencySymbol, amount)
}

func CurrencyWith(symbol string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	// sign is decided after rounding so -0.001 prints as zero
	fixed := strconv.FormatFloat(math.Abs(amount), 'f', 2, 64)
	sign := ""
	if amount < 0 && strings.Trim(fixed, "0.") != "" {
		sign = "-"
	}

	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + symbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
