package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"autoshop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetDraft(ctx context.Context, draftID string) (*models.TransactionDraft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionDraft), args.Error(1)
}

func (m *mockRepo) SetDraft(ctx context.Context, draft *models.TransactionDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *mockRepo) ClearDraft(ctx context.Context, draftID string) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func TestFailoverDraftRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverDraftRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		draft := &models.TransactionDraft{DraftID: "d1"}
		primary.On("GetDraft", ctx, "d1").Return(draft, nil).Once()

		got, err := repo.GetDraft(ctx, "d1")
		assert.NoError(t, err)
		assert.Equal(t, draft, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		draft := &models.TransactionDraft{DraftID: "d2"}
		primary.On("GetDraft", ctx, "d2").Return(nil, errors.New("fail")).Once()
		fallback.On("GetDraft", ctx, "d2").Return(draft, nil).Once()

		got, err := repo.GetDraft(ctx, "d2")
		assert.NoError(t, err)
		assert.Equal(t, draft, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()
		fallback.On("GetDraft", ctx, "d22").Return(nil, nil).Once()

		got, err := repo.GetDraft(ctx, "d22")
		assert.NoError(t, err)
		assert.Nil(t, got)
		primary.AssertNotCalled(t, "GetDraft", ctx, "d22")
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		draft := &models.TransactionDraft{DraftID: "d3"}
		primary.On("GetDraft", ctx, "d3").Return(draft, nil).Once()

		got, err := repo.GetDraft(ctx, "d3")
		assert.NoError(t, err)
		assert.Equal(t, draft, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetDraft", ctx, "d33").Return(nil, errors.New("still fail")).Once()
		fallback.On("GetDraft", ctx, "d33").Return(nil, nil).Once()

		_, err := repo.GetDraft(ctx, "d33")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetDraftSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		draft := &models.TransactionDraft{DraftID: "d4"}
		primary.On("SetDraft", ctx, draft).Return(nil).Once()

		assert.NoError(t, repo.SetDraft(ctx, draft))
		primary.AssertExpectations(t)
	})

	t.Run("SetDraftFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		draft := &models.TransactionDraft{DraftID: "d5"}
		primary.On("SetDraft", ctx, draft).Return(errors.New("fail")).Once()
		fallback.On("SetDraft", ctx, draft).Return(nil).Once()

		assert.NoError(t, repo.SetDraft(ctx, draft))
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearDraftClearsBoth", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearDraft", ctx, "d6").Return(nil).Once()
		fallback.On("ClearDraft", ctx, "d6").Return(nil).Once()

		assert.NoError(t, repo.ClearDraft(ctx, "d6"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearDraftFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearDraft", ctx, "d7").Return(errors.New("fail")).Once()
		fallback.On("ClearDraft", ctx, "d7").Return(nil).Once()

		assert.NoError(t, repo.ClearDraft(ctx, "d7"))
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

func TestFailoverDraftRepository_WithMemoryFallback(t *testing.T) {
	primary := new(mockRepo)
	fallback := NewMemoryDraftRepository(time.Hour)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverDraftRepository(primary, fallback, &logger)
	ctx := context.Background()

	draft := &models.TransactionDraft{DraftID: "m1", BookingID: "b1"}
	primary.On("SetDraft", ctx, draft).Return(errors.New("connection refused")).Once()

	assert.NoError(t, repo.SetDraft(ctx, draft))

	got, err := repo.GetDraft(ctx, "m1")
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, "b1", got.BookingID)
	}
	primary.AssertExpectations(t)
}
