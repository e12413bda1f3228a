package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"autoshop/internal/clock"
	"autoshop/internal/domain"
	"autoshop/internal/events"
	"autoshop/internal/metrics"
	"autoshop/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrInvalidDraft  = errors.New("invalid draft")
)

type TransactionService struct {
	drafts   domain.DraftRepository
	store    domain.TransactionStore
	eventBus domain.EventPublisher
	clock    clock.Clock
	logger   *zerolog.Logger
}

func NewTransactionService(
	drafts domain.DraftRepository,
	store domain.TransactionStore,
	eventBus domain.EventPublisher,
	clk clock.Clock,
	logger *zerolog.Logger,
) *TransactionService {
	if clk == nil {
		clk = clock.System{}
	}
	return &TransactionService{
		drafts:   drafts,
		store:    store,
		eventBus: eventBus,
		clock:    clk,
		logger:   logger,
	}
}

// SaveDraft stores the form as the cashier left it. Drafts are not validated
// beyond having an id; validation happens on Submit.
func (s *TransactionService) SaveDraft(ctx context.Context, draft *models.TransactionDraft) error {
	if draft == nil || strings.TrimSpace(draft.DraftID) == "" {
		return fmt.Errorf("%w: draft id is required", ErrInvalidDraft)
	}
	draft.UpdatedAt = s.clock.Now()
	if err := s.drafts.SetDraft(ctx, draft); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draft.DraftID).Msg("failed to save draft")
		return err
	}
	return nil
}

func (s *TransactionService) GetDraft(ctx context.Context, draftID string) (*models.TransactionDraft, error) {
	draft, err := s.drafts.GetDraft(ctx, draftID)
	if err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to get draft")
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (s *TransactionService) ClearDraft(ctx context.Context, draftID string) error {
	return s.drafts.ClearDraft(ctx, draftID)
}

// Submit turns a saved draft into an immutable transaction.
func (s *TransactionService) Submit(ctx context.Context, draftID string) (*models.Transaction, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tx := buildTransaction(draft, now)

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to store transaction")
		return nil, fmt.Errorf("store transaction: %w", err)
	}

	metrics.IncTransaction(tx.PaymentMethod, tx.TotalPrice)
	s.publishEvent(tx)

	if err := s.drafts.ClearDraft(ctx, draftID); err != nil {
		s.logger.Warn().Err(err).Str("draft_id", draftID).Msg("failed to clear submitted draft")
	}

	s.logger.Info().
		Str("transaction_id", tx.ID).
		Str("reference", tx.Reference).
		Float64("total", tx.TotalPrice).
		Msg("transaction created")
	return tx, nil
}

// ValidateDraft checks that a draft can be submitted.
func ValidateDraft(d *models.TransactionDraft) error {
	if strings.TrimSpace(d.BookingID) == "" {
		return fmt.Errorf("%w: booking id is required", ErrInvalidDraft)
	}
	if !models.IsValidPaymentMethod(normalizeMethod(d.PaymentMethod)) {
		return fmt.Errorf("%w: unsupported payment method %q", ErrInvalidDraft, d.PaymentMethod)
	}
	if len(d.Lines) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidDraft)
	}
	for i, line := range d.Lines {
		if strings.TrimSpace(line.Label) == "" {
			return fmt.Errorf("%w: line %d has no service", ErrInvalidDraft, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d needs a positive quantity", ErrInvalidDraft, i+1)
		}
		for _, v := range []float64{line.Price, line.Quantity, line.Discount} {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: line %d has a negative or invalid amount", ErrInvalidDraft, i+1)
			}
		}
	}
	return nil
}

func normalizeMethod(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func buildTransaction(d *models.TransactionDraft, now time.Time) *models.Transaction {
	services := make([]models.Service, 0, len(d.Lines))
	var total float64
	for _, line := range d.Lines {
		mechanic := strings.TrimSpace(line.Mechanic)
		if mechanic == "" {
			mechanic = models.UnassignedMechanic
		}
		lineTotal := line.LineTotal()
		services = append(services, models.Service{
			Label:    strings.TrimSpace(line.Label),
			Mechanic: mechanic,
			Status:   models.StatusCompleted,
			Price:    line.Price,
			Quantity: line.Quantity,
			Discount: line.Discount,
			Total:    lineTotal,
		})
		total += lineTotal
	}

	id := uuid.NewString()
	return &models.Transaction{
		ID:            id,
		BookingID:     strings.TrimSpace(d.BookingID),
		CustomerID:    strings.TrimSpace(d.CustomerID),
		Reference:     referenceNumber(now, uuid.New()),
		PaymentMethod: normalizeMethod(d.PaymentMethod),
		TotalPrice:    total,
		Services:      services,
		CreatedAt:     now,
	}
}

// referenceNumber formats TX-YYYYMMDD-XXXXXX from the shop date and random bits.
func referenceNumber(now time.Time, random uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(random.String(), "-", ""))[:6]
	return fmt.Sprintf("TX-%s-%s", now.Format("20060102"), suffix)
}

func (s *TransactionService) publishEvent(tx *models.Transaction) {
	if s.eventBus == nil {
		return
	}
	payload := events.TransactionEventPayload{
		TransactionID: tx.ID,
		BookingID:     tx.BookingID,
		CustomerID:    tx.CustomerID,
		Reference:     tx.Reference,
		PaymentMethod: tx.PaymentMethod,
		TotalPrice:    tx.TotalPrice,
		ServiceCount:  len(tx.Services),
		CreatedAt:     tx.CreatedAt,
	}
	if err := s.eventBus.PublishJSON(events.EventTransactionCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("failed to publish event")
	}
}
