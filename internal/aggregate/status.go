package aggregate

import (
	"time"

	"autoshop/internal/models"
)

// CountStatuses counts bookings per canonical status. A nil pred counts the
// whole slice; otherwise only bookings whose date satisfies pred. Bookings are
// counted once per entry, duplicates with different ids included.
func CountStatuses(bookings []models.Booking, pred func(time.Time) bool) models.StatusCounts {
	counts := make(models.StatusCounts, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		counts[s] = 0
	}

	for i := range bookings {
		if pred != nil && !pred(bookings[i].Date) {
			continue
		}
		counts[models.ParseStatus(string(bookings[i].Status))]++
	}
	return counts
}
