package models

import "time"

// TransactionDraft is the transaction-entry form as the cashier left it.
type TransactionDraft struct {
	DraftID       string      `json:"draft_id"`
	BookingID     string      `json:"booking_id"`
	CustomerID    string      `json:"customer_id,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Lines         []DraftLine `json:"lines"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type DraftLine struct {
	Label    string  `json:"label"`
	Mechanic string  `json:"mechanic,omitempty"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Discount float64 `json:"discount"`
}

// LineTotal returns price*quantity minus discount, never below zero.
func (l DraftLine) LineTotal() float64 {
	total := l.Price*l.Quantity - l.Discount
	if total < 0 {
		return 0
	}
	return total
}

// Total sums all line totals of the draft.
func (d *TransactionDraft) Total() float64 {
	if d == nil {
		return 0
	}
	var sum float64
	for _, l := range d.Lines {
		sum += l.LineTotal()
	}
	return sum
}

// StatusCounts maps every canonical status to the number of bookings in it.
type StatusCounts map[Status]int

// Total returns the number of bookings counted.
func (c StatusCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Bucket is one chart slot.
type Bucket struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type CustomerSplit struct {
	New       []string `json:"new"`
	Returning []string `json:"returning"`
}

type DashboardSummary struct {
	GeneratedAt    time.Time     `json:"generated_at"`
	StatusTotal    StatusCounts  `json:"status_total"`
	StatusToday    StatusCounts  `json:"status_today"`
	StatusMonth    StatusCounts  `json:"status_month"`
	Customers      CustomerSplit `json:"customers"`
	NewCount       int           `json:"new_count"`
	ReturningCount int           `json:"returning_count"`
	RecentBookings []Booking     `json:"recent_bookings"`
}

type SalesReport struct {
	Period      string    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
	Buckets     []Bucket  `json:"buckets"`
	Total       float64   `json:"total"`
	Count       int       `json:"count"`
}

// DirectoryQuery is a customer or employee list request. Sort is "name" or
// "created_at", prefixed with "-" for descending.
type DirectoryQuery struct {
	Search   string `json:"search,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}
