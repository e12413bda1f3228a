package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"autoshop/internal/models"
)

var errEmptyDraftID = errors.New("draft id is required")

type memoryEntry struct {
	draft     *models.TransactionDraft
	expiresAt time.Time
}

// MemoryDraftRepository keeps drafts in process memory. Entries expire after
// ttl; a zero ttl keeps them until cleared.
type MemoryDraftRepository struct {
	drafts sync.Map
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, draftID string) (*models.TransactionDraft, error) {
	val, ok := r.drafts.Load(draftID)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.drafts.Delete(draftID)
		return nil, nil
	}
	return copyDraft(entry.draft), nil
}

func (r *MemoryDraftRepository) SetDraft(ctx context.Context, draft *models.TransactionDraft) error {
	if draft == nil || draft.DraftID == "" {
		return errEmptyDraftID
	}
	entry := memoryEntry{draft: copyDraft(draft)}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.drafts.Store(draft.DraftID, entry)
	return nil
}

func (r *MemoryDraftRepository) ClearDraft(ctx context.Context, draftID string) error {
	r.drafts.Delete(draftID)
	return nil
}

// copyDraft keeps callers from mutating stored lines.
func copyDraft(d *models.TransactionDraft) *models.TransactionDraft {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Lines = append([]models.DraftLine(nil), d.Lines...)
	return &cp
}
