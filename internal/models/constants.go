package models

import "strings"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRepairing Status = "REPAIRING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses is the display order used by dashboards and exports.
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusRepairing,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus maps a raw status of any casing onto the canonical vocabulary.
// Empty or unknown values become PENDING.
func ParseStatus(raw string) Status {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusRepairing, StatusCompleted, StatusCancelled:
		return s
	case "CANCELED":
		return StatusCancelled
	default:
		return StatusPending
	}
}

const (
	CollectionBookings     = "bookings"
	CollectionTransactions = "transactions"
	CollectionCustomers    = "customers"
	CollectionEmployees    = "employees"
)

const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentGCash        = "gcash"
	PaymentBankTransfer = "bank_transfer"
)

var PaymentMethods = []string{PaymentCash, PaymentCard, PaymentGCash, PaymentBankTransfer}

func IsValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

const (
	ParseModeMarkdown = "Markdown"

	// UnassignedMechanic is shown for services nobody has picked up yet.
	UnassignedMechanic = "Unassigned"

	// DefaultDraftTTL время жизни черновика транзакции в секундах
	DefaultDraftTTL = 7 * 24 * 60 * 60

	// DefaultPageSize размер страницы списков клиентов и сотрудников
	DefaultPageSize = 10

	// MaxPageSize верхняя граница размера страницы
	MaxPageSize = 100

	// RecentBookingsLimit количество последних заявок на дашборде
	RecentBookingsLimit = 5
)
