package aggregate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"autoshop/internal/models"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod validates user input. An empty value selects monthly.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case "":
		return PeriodMonthly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, raw)
	}
}

// PricedRecord is anything with an amount and an instant.
type PricedRecord struct {
	Amount float64
	At     time.Time
}

func TransactionRecords(txs []models.Transaction) []PricedRecord {
	out := make([]PricedRecord, 0, len(txs))
	for _, tx := range txs {
		out = append(out, PricedRecord{Amount: tx.TotalPrice, At: tx.CreatedAt})
	}
	return out
}

// BucketTotals sums amounts per slot of the period containing now:
// hours of today, Sun..Sat of this week, days of this month or months of this
// year. Every slot is present, empty ones at zero. Records outside the window
// are dropped. Slots follow the local calendar of now.
func BucketTotals(records []PricedRecord, period Period, now time.Time) []models.Bucket {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
	default:
		period = PeriodMonthly
	}

	win := WindowFor(period, now)
	buckets := emptyBuckets(period, win)
	loc := now.Location()

	for _, r := range records {
		if !win.Contains(r.At) {
			continue
		}
		idx := bucketIndex(period, r.At.In(loc))
		if idx < 0 || idx >= len(buckets) {
			continue
		}
		buckets[idx].Amount += r.Amount
	}
	return buckets
}

// BucketCount is the number of slots BucketTotals returns for period at now.
func BucketCount(period Period, now time.Time) int {
	switch period {
	case PeriodDaily:
		return 24
	case PeriodWeekly:
		return 7
	case PeriodYearly:
		return 12
	default:
		return daysIn(now)
	}
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func emptyBuckets(period Period, win Window) []models.Bucket {
	n := BucketCount(period, win.Start)
	buckets := make([]models.Bucket, n)
	for i := range buckets {
		buckets[i].Label = bucketLabel(period, i)
	}
	return buckets
}

func bucketLabel(period Period, i int) string {
	switch period {
	case PeriodDaily:
		return fmt.Sprintf("%02d:00", i)
	case PeriodWeekly:
		return time.Weekday(i).String()[:3]
	case PeriodYearly:
		return time.Month(i + 1).String()[:3]
	default:
		return strconv.Itoa(i + 1)
	}
}

func bucketIndex(period Period, at time.Time) int {
	switch period {
	case PeriodDaily:
		return at.Hour()
	case PeriodWeekly:
		return int(at.Weekday())
	case PeriodYearly:
		return int(at.Month()) - 1
	default:
		return at.Day() - 1
	}
}
