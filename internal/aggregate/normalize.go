package aggregate

import (
	"time"

	"autoshop/internal/clock"
	"autoshop/internal/models"
)

// Field aliases seen in stored documents, in lookup order.
var (
	idKeys          = []string{"id", "_id", "bookingId", "booking_id"}
	customerKeys    = []string{"customerId", "customer_id", "userId", "user_id", "uid"}
	bookingDateKeys = []string{"date", "reservationDate", "reservation_date", "bookingDate", "createdAt", "created_at"}
	completedKeys   = []string{"completedAt", "completed_at", "completionDate", "dateCompleted"}
	carModelKeys    = []string{"carModel", "car_model", "car", "vehicle"}
	servicesKeys    = []string{"services", "service"}
	statusKeys      = []string{"status", "bookingStatus"}

	serviceLabelKeys    = []string{"service", "name", "label", "title"}
	serviceMechanicKeys = []string{"mechanic", "mechanicName", "mechanic_name", "assignedTo", "assigned_to"}

	txBookingKeys   = []string{"bookingId", "booking_id"}
	txReferenceKeys = []string{"referenceNumber", "reference_number", "reference", "refNo"}
	txPaymentKeys   = []string{"paymentMethod", "payment_method", "payment"}
	txTotalKeys     = []string{"totalPrice", "total_price", "total", "amount"}
	txCreatedKeys   = []string{"createdAt", "created_at", "date", "timestamp"}

	firstNameKeys = []string{"firstName", "first_name", "fname"}
	lastNameKeys  = []string{"lastName", "last_name", "lname"}
	emailKeys     = []string{"email", "emailAddress"}
	phoneKeys     = []string{"phone", "phoneNumber", "phone_number", "contact", "contactNumber"}
	addressKeys   = []string{"address"}
	roleKeys      = []string{"role", "position"}
)

// Normalizer turns loosely shaped documents into canonical models. Every
// malformed field degrades to a default; nothing here returns an error.
//
//	field        missing / unusable      value
//	date         clock.Now()             instant
//	completedAt  nil when absent         instant, clock.Now() when unparseable
//	status       PENDING                 uppercased canonical status
//	services     empty list              string -> {label, Unassigned, CONFIRMED}
//	mechanic     Unassigned              trimmed string
//	numbers      0                       float64
type Normalizer struct {
	clock clock.Clock
}

func NewNormalizer(c clock.Clock) *Normalizer {
	if c == nil {
		c = clock.System{}
	}
	return &Normalizer{clock: c}
}

// Instant coerces v or falls back to the current instant.
func (n *Normalizer) Instant(v any) time.Time {
	now := n.clock.Now()
	if t, ok := ToInstant(v, now.Location()); ok {
		return t
	}
	return now
}

func (n *Normalizer) NormalizeBooking(raw models.RawRecord) models.Booking {
	m := map[string]any(raw)

	booking := models.Booking{
		ID:         n.stringField(m, idKeys...),
		CustomerID: n.stringField(m, customerKeys...),
		CarModel:   n.stringField(m, carModelKeys...),
		Status:     models.ParseStatus(n.stringField(m, statusKeys...)),
		Services:   n.services(m),
	}

	dateRaw, _ := firstValue(m, bookingDateKeys...)
	booking.Date = n.Instant(dateRaw)

	if completedRaw, ok := firstValue(m, completedKeys...); ok {
		completed := n.Instant(completedRaw)
		booking.CompletedAt = &completed
	}

	return booking
}

func (n *Normalizer) NormalizeBookings(raws []models.RawRecord) []models.Booking {
	out := make([]models.Booking, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.NormalizeBooking(raw))
	}
	return out
}

func (n *Normalizer) NormalizeTransaction(raw models.RawRecord) models.Transaction {
	m := map[string]any(raw)

	tx := models.Transaction{
		ID:            n.stringField(m, idKeys[:2]...),
		BookingID:     n.stringField(m, txBookingKeys...),
		CustomerID:    n.stringField(m, customerKeys...),
		Reference:     n.stringField(m, txReferenceKeys...),
		PaymentMethod: n.stringField(m, txPaymentKeys...),
		Services:      n.services(m),
	}

	createdRaw, _ := firstValue(m, txCreatedKeys...)
	tx.CreatedAt = n.Instant(createdRaw)

	// An explicit total wins, zero included; lines are summed only without one.
	total, ok := 0.0, false
	if totalRaw, found := firstValue(m, txTotalKeys...); found {
		total, ok = asNumber(totalRaw)
	}
	if !ok {
		for _, s := range tx.Services {
			total += s.Total
		}
	}
	tx.TotalPrice = total

	return tx
}

func (n *Normalizer) NormalizeTransactions(raws []models.RawRecord) []models.Transaction {
	out := make([]models.Transaction, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.NormalizeTransaction(raw))
	}
	return out
}

func (n *Normalizer) NormalizeCustomer(raw models.RawRecord) models.Customer {
	m := map[string]any(raw)
	createdRaw, _ := firstValue(m, "createdAt", "created_at")
	return models.Customer{
		ID:        n.stringField(m, "id", "_id", "uid", "accountId"),
		FirstName: n.stringField(m, firstNameKeys...),
		LastName:  n.stringField(m, lastNameKeys...),
		Email:     n.stringField(m, emailKeys...),
		Phone:     n.stringField(m, phoneKeys...),
		Address:   n.stringField(m, addressKeys...),
		CreatedAt: n.Instant(createdRaw),
	}
}

func (n *Normalizer) NormalizeEmployee(raw models.RawRecord) models.Employee {
	m := map[string]any(raw)
	createdRaw, _ := firstValue(m, "createdAt", "created_at")
	return models.Employee{
		ID:        n.stringField(m, "id", "_id", "uid", "accountId"),
		FirstName: n.stringField(m, firstNameKeys...),
		LastName:  n.stringField(m, lastNameKeys...),
		Email:     n.stringField(m, emailKeys...),
		Phone:     n.stringField(m, phoneKeys...),
		Role:      n.stringField(m, roleKeys...),
		CreatedAt: n.Instant(createdRaw),
	}
}

func (n *Normalizer) stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func (n *Normalizer) services(m map[string]any) []models.Service {
	raw, ok := firstValue(m, servicesKeys...)
	if !ok {
		return []models.Service{}
	}

	// A lone string or object is a one-element list.
	entries, ok := asSlice(raw)
	if !ok {
		entries = []any{raw}
	}

	out := make([]models.Service, 0, len(entries))
	for _, entry := range entries {
		if svc, ok := n.service(entry); ok {
			out = append(out, svc)
		}
	}
	return out
}

func (n *Normalizer) service(entry any) (models.Service, bool) {
	if s, ok := entry.(string); ok {
		if s == "" {
			return models.Service{}, false
		}
		return models.Service{
			Label:    s,
			Mechanic: models.UnassignedMechanic,
			Status:   models.StatusConfirmed,
		}, true
	}

	m, ok := asMap(entry)
	if !ok {
		return models.Service{}, false
	}

	svc := models.Service{
		Label:    n.stringField(m, serviceLabelKeys...),
		Mechanic: n.stringField(m, serviceMechanicKeys...),
		Status:   models.StatusConfirmed,
		Price:    numberOr(m["price"], 0),
		Quantity: numberOr(m["quantity"], 0),
		Discount: numberOr(m["discount"], 0),
		Total:    numberOr(m["total"], 0),
	}
	if svc.Mechanic == "" {
		svc.Mechanic = models.UnassignedMechanic
	}
	if st := n.stringField(m, "status"); st != "" {
		svc.Status = models.ParseStatus(st)
	}
	// Stored zeros are kept; defaults apply only to missing keys.
	if _, ok := firstValue(m, "quantity"); !ok && svc.Price != 0 {
		svc.Quantity = 1
	}
	if _, ok := firstValue(m, "total"); !ok && svc.Price != 0 {
		svc.Total = models.DraftLine{Price: svc.Price, Quantity: svc.Quantity, Discount: svc.Discount}.LineTotal()
	}
	return svc, true
}
