package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"autoshop/internal/aggregate"
	"autoshop/internal/domain"
	"autoshop/internal/events"
	"autoshop/internal/models"
	"autoshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validDraft(id string) *models.TransactionDraft {
	return &models.TransactionDraft{
		DraftID:       id,
		BookingID:     "b1",
		CustomerID:    "c1",
		PaymentMethod: " GCash ",
		Lines: []models.DraftLine{
			{Label: "Brake pads", Mechanic: "Jo", Price: 1200, Quantity: 2, Discount: 100},
			{Label: "Inspection", Price: 300, Quantity: 1, Discount: 500},
		},
	}
}

func TestTransactionService_Drafts(t *testing.T) {
	ctx := context.Background()
	drafts := repository.NewMemoryDraftRepository(0)
	svc := NewTransactionService(drafts, new(mockStore), nil, testClock(), testLogger())

	_, err := svc.GetDraft(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	draft := validDraft("d1")
	require.NoError(t, svc.SaveDraft(ctx, draft))

	got, err := svc.GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.BookingID)
	assert.Equal(t, testNow, got.UpdatedAt)

	require.NoError(t, svc.ClearDraft(ctx, "d1"))
	_, err = svc.GetDraft(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	assert.ErrorIs(t, svc.SaveDraft(ctx, &models.TransactionDraft{DraftID: "  "}), ErrInvalidDraft)
	assert.ErrorIs(t, svc.SaveDraft(ctx, nil), ErrInvalidDraft)
}

func TestTransactionService_Submit(t *testing.T) {
	ctx := context.Background()
	drafts := repository.NewMemoryDraftRepository(0)
	store := new(mockStore)
	bus := new(mockBus)
	svc := NewTransactionService(drafts, store, bus, testClock(), testLogger())

	require.NoError(t, drafts.SetDraft(ctx, validDraft("d1")))

	store.On("InsertTransaction", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil).Once()
	bus.On("PublishJSON", events.EventTransactionCreated, mock.MatchedBy(func(p events.TransactionEventPayload) bool {
		return p.BookingID == "b1" && p.TotalPrice == 2300 && p.ServiceCount == 2
	})).Return(nil).Once()

	tx, err := svc.Submit(ctx, "d1")
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Regexp(t, regexp.MustCompile(`^TX-20261014-[0-9A-F]{6}$`), tx.Reference)
	assert.Equal(t, models.PaymentGCash, tx.PaymentMethod)
	assert.Equal(t, 2300.0, tx.TotalPrice)
	assert.Equal(t, testNow, tx.CreatedAt)
	require.Len(t, tx.Services, 2)
	assert.Equal(t, 2300.0, tx.Services[0].Total)
	assert.Equal(t, 0.0, tx.Services[1].Total)
	assert.Equal(t, models.UnassignedMechanic, tx.Services[1].Mechanic)
	assert.Equal(t, models.StatusCompleted, tx.Services[0].Status)

	// submitted drafts are gone
	_, err = svc.GetDraft(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestTransactionService_SubmitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingDraft", func(t *testing.T) {
		svc := NewTransactionService(repository.NewMemoryDraftRepository(0), new(mockStore), nil, testClock(), testLogger())
		_, err := svc.Submit(ctx, "nope")
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})

	t.Run("Invalid", func(t *testing.T) {
		drafts := repository.NewMemoryDraftRepository(0)
		store := new(mockStore)
		svc := NewTransactionService(drafts, store, nil, testClock(), testLogger())

		d := validDraft("bad")
		d.PaymentMethod = "barter"
		require.NoError(t, drafts.SetDraft(ctx, d))

		_, err := svc.Submit(ctx, "bad")
		assert.ErrorIs(t, err, ErrInvalidDraft)
		store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)

		// the draft survives a failed submit
		_, err = svc.GetDraft(ctx, "bad")
		assert.NoError(t, err)
	})

	t.Run("StoreConflict", func(t *testing.T) {
		drafts := repository.NewMemoryDraftRepository(0)
		store := new(mockStore)
		svc := NewTransactionService(drafts, store, nil, testClock(), testLogger())
		require.NoError(t, drafts.SetDraft(ctx, validDraft("d2")))

		store.On("InsertTransaction", ctx, mock.Anything).Return(domain.ErrTransactionExists).Once()

		_, err := svc.Submit(ctx, "d2")
		assert.ErrorIs(t, err, domain.ErrTransactionExists)

		_, err = svc.GetDraft(ctx, "d2")
		assert.NoError(t, err)
	})

	t.Run("PublishFailureIsNotFatal", func(t *testing.T) {
		drafts := repository.NewMemoryDraftRepository(0)
		store := new(mockStore)
		bus := new(mockBus)
		svc := NewTransactionService(drafts, store, bus, testClock(), testLogger())
		require.NoError(t, drafts.SetDraft(ctx, validDraft("d3")))

		store.On("InsertTransaction", ctx, mock.Anything).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("bus down")).Once()

		_, err := svc.Submit(ctx, "d3")
		assert.NoError(t, err)
	})
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *models.TransactionDraft)
	}{
		{"NoBooking", func(d *models.TransactionDraft) { d.BookingID = "" }},
		{"NoPayment", func(d *models.TransactionDraft) { d.PaymentMethod = "" }},
		{"NoLines", func(d *models.TransactionDraft) { d.Lines = nil }},
		{"EmptyLabel", func(d *models.TransactionDraft) { d.Lines[0].Label = " " }},
		{"NegativePrice", func(d *models.TransactionDraft) { d.Lines[0].Price = -1 }},
		{"NegativeQuantity", func(d *models.TransactionDraft) { d.Lines[1].Quantity = -2 }},
		{"ZeroQuantity", func(d *models.TransactionDraft) { d.Lines[0].Quantity = 0 }},
		{"NegativeDiscount", func(d *models.TransactionDraft) { d.Lines[1].Discount = -5 }},
	}

	assert.NoError(t, ValidateDraft(validDraft("ok")))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft("x")
			tt.modify(d)
			assert.ErrorIs(t, ValidateDraft(d), ErrInvalidDraft)
		})
	}
}

func TestSubmittedTransactionReadsBack(t *testing.T) {
	n := aggregate.NewNormalizer(testClock())

	tests := []struct {
		name  string
		lines []models.DraftLine
	}{
		{"Priced", validDraft("x").Lines},
		{"FullyDiscounted", []models.DraftLine{{Label: "Goodwill check", Price: 500, Quantity: 1, Discount: 500}}},
		{"FreeLine", []models.DraftLine{{Label: "Car wash", Price: 0, Quantity: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft("x")
			d.Lines = tt.lines
			require.NoError(t, ValidateDraft(d))

			tx := buildTransaction(d, testNow)
			got := n.NormalizeTransaction(tx.Document())

			assert.Equal(t, tx.ID, got.ID)
			assert.Equal(t, tx.TotalPrice, got.TotalPrice)
			assert.Equal(t, tx.Reference, got.Reference)
			assert.True(t, tx.CreatedAt.Equal(got.CreatedAt))
			require.Len(t, got.Services, len(tx.Services))
			for i := range tx.Services {
				assert.Equal(t, tx.Services[i], got.Services[i])
			}
		})
	}
}
