package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"autoshop/internal/domain"
	"autoshop/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the primary stays bypassed after a failure.
const recoveryInterval = time.Minute

// FailoverDraftRepository serves drafts from primary and switches to fallback
// while primary is failing.
type FailoverDraftRepository struct {
	primary  domain.DraftRepository
	fallback domain.DraftRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// shouldRetry reports whether the primary is down long enough to try again.
func (r *FailoverDraftRepository) shouldRetry() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) <= recoveryInterval {
		return false
	}
	r.lastCheck = time.Now()
	return true
}

func (r *FailoverDraftRepository) usePrimary() bool {
	return !r.isDown.Load() || r.shouldRetry()
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, draftID string) (*models.TransactionDraft, error) {
	if r.usePrimary() {
		draft, err := r.primary.GetDraft(ctx, draftID)
		if err == nil {
			r.recovered()
			return draft, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetDraft(ctx, draftID)
}

func (r *FailoverDraftRepository) SetDraft(ctx context.Context, draft *models.TransactionDraft) error {
	if r.usePrimary() {
		err := r.primary.SetDraft(ctx, draft)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetDraft(ctx, draft)
}

func (r *FailoverDraftRepository) ClearDraft(ctx context.Context, draftID string) error {
	if r.usePrimary() {
		err := r.primary.ClearDraft(ctx, draftID)
		if err == nil {
			r.recovered()
			// the fallback may hold a copy written during an outage
			_ = r.fallback.ClearDraft(ctx, draftID)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearDraft(ctx, draftID)
}

func (r *FailoverDraftRepository) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary draft repository recovered")
	}
}
