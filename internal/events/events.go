package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventTransactionCreated = "transaction_created"
	EventReportGenerated    = "report_generated"
	EventBackupCompleted    = "backup_completed"
)

// TransactionEventPayload describes the minimal transaction snapshot for event consumers.
type TransactionEventPayload struct {
	TransactionID string    `json:"transaction_id"`
	BookingID     string    `json:"booking_id"`
	CustomerID    string    `json:"customer_id,omitempty"`
	Reference     string    `json:"reference"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    float64   `json:"total_price"`
	ServiceCount  int       `json:"service_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReportEventPayload is published after the scheduled report ran.
type ReportEventPayload struct {
	Period      string    `json:"period"`
	Total       float64   `json:"total"`
	File        string    `json:"file,omitempty"`
	SheetSynced bool      `json:"sheet_synced"`
	Notified    bool      `json:"notified"`
	GeneratedAt time.Time `json:"generated_at"`
}

type BackupEventPayload struct {
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors are logged when logger is set.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && b.logger != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
