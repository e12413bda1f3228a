package models

import "time"

type Booking struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id,omitempty"`
	Date        time.Time  `json:"date"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CarModel    string     `json:"car_model"`
	Status      Status     `json:"status"`
	Services    []Service  `json:"services"`
}

// Service is one line of work on a booking. Price, Quantity, Discount and Total
// are only filled for services copied from a transaction.
type Service struct {
	Label    string  `json:"label"`
	Mechanic string  `json:"mechanic"`
	Status   Status  `json:"status"`
	Price    float64 `json:"price,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	Discount float64 `json:"discount,omitempty"`
	Total    float64 `json:"total,omitempty"`
}

type Transaction struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	CustomerID    string    `json:"customer_id,omitempty"`
	Reference     string    `json:"reference"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    float64   `json:"total_price"`
	Services      []Service `json:"services"`
	CreatedAt     time.Time `json:"created_at"`
}

// RawRecord is a document exactly as the store returned it.
type RawRecord map[string]any

// Document is the stored shape of a transaction. Keys match what the
// dashboard reads back, so a saved transaction normalizes to itself.
func (t *Transaction) Document() RawRecord {
	services := make([]any, 0, len(t.Services))
	for _, s := range t.Services {
		services = append(services, map[string]any{
			"service":  s.Label,
			"mechanic": s.Mechanic,
			"status":   string(s.Status),
			"price":    s.Price,
			"quantity": s.Quantity,
			"discount": s.Discount,
			"total":    s.Total,
		})
	}
	return RawRecord{
		"id":              t.ID,
		"bookingId":       t.BookingID,
		"customerId":      t.CustomerID,
		"referenceNumber": t.Reference,
		"paymentMethod":   t.PaymentMethod,
		"totalPrice":      t.TotalPrice,
		"services":        services,
		"createdAt":       t.CreatedAt,
	}
}
