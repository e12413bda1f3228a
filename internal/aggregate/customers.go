package aggregate

import (
	"sort"
	"strings"

	"autoshop/internal/models"
)

// ClassifyCustomers splits customers active inside win into new and returning.
// Lifetime counts cover the whole slice, not just the window: a customer is new
// when their only booking falls inside win, returning when they have more than
// one booking and at least one inside win. Bookings without a customer id are
// ignored. Both lists are sorted.
func ClassifyCustomers(bookings []models.Booking, win Window) models.CustomerSplit {
	lifetime := make(map[string]int)
	active := make(map[string]bool)

	for i := range bookings {
		id := strings.TrimSpace(bookings[i].CustomerID)
		if id == "" {
			continue
		}
		lifetime[id]++
		if win.Contains(bookings[i].Date) {
			active[id] = true
		}
	}

	split := models.CustomerSplit{New: []string{}, Returning: []string{}}
	for id := range active {
		if lifetime[id] == 1 {
			split.New = append(split.New, id)
		} else {
			split.Returning = append(split.Returning, id)
		}
	}
	sort.Strings(split.New)
	sort.Strings(split.Returning)
	return split
}
