package repository

import (
	"context"
	"testing"
	"time"

	"autoshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDraftRepository(t *testing.T) {
	repo := NewMemoryDraftRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		draft := &models.TransactionDraft{
			DraftID:   "d1",
			BookingID: "b1",
			Lines:     []models.DraftLine{{Label: "Oil", Price: 100, Quantity: 1}},
		}
		require.NoError(t, repo.SetDraft(ctx, draft))

		// later edits to the caller's copy are not stored
		draft.Lines[0].Price = 999

		got, err := repo.GetDraft(ctx, "d1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "b1", got.BookingID)
		assert.Equal(t, 100.0, got.Lines[0].Price)
	})

	t.Run("Missing", func(t *testing.T) {
		got, err := repo.GetDraft(ctx, "nope")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, repo.SetDraft(ctx, &models.TransactionDraft{DraftID: "d2"}))
		require.NoError(t, repo.ClearDraft(ctx, "d2"))
		got, err := repo.GetDraft(ctx, "d2")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EmptyID", func(t *testing.T) {
		assert.Error(t, repo.SetDraft(ctx, &models.TransactionDraft{}))
		assert.Error(t, repo.SetDraft(ctx, nil))
	})
}

func TestMemoryDraftRepository_Expiry(t *testing.T) {
	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)
	repo := NewMemoryDraftRepository(time.Minute)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.SetDraft(ctx, &models.TransactionDraft{DraftID: "d1"}))

	now = now.Add(30 * time.Second)
	got, err := repo.GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(time.Minute)
	got, err = repo.GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
