package worker

import (
	"context"
	"fmt"

	"autoshop/internal/clock"
	"autoshop/internal/domain"
	"autoshop/internal/events"

	"github.com/rs/zerolog"
)

// BackupJob snapshots the document store and prunes old snapshots.
type BackupJob struct {
	store         domain.Backupper
	dir           string
	retentionDays int
	eventBus      domain.EventPublisher
	clock         clock.Clock
	logger        *zerolog.Logger
}

func NewBackupJob(store domain.Backupper, dir string, retentionDays int, eventBus domain.EventPublisher, clk clock.Clock, logger *zerolog.Logger) *BackupJob {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BackupJob{
		store:         store,
		dir:           dir,
		retentionDays: retentionDays,
		eventBus:      eventBus,
		clock:         clk,
		logger:        logger,
	}
}

func (j *BackupJob) Run(ctx context.Context) error {
	now := j.clock.Now()

	path, err := j.store.Backup(ctx, j.dir, now)
	if err != nil {
		j.logger.Error().Err(err).Str("dir", j.dir).Msg("backup failed")
		return fmt.Errorf("backup: %w", err)
	}

	removed := 0
	if j.retentionDays > 0 {
		removed, err = j.store.PruneBackups(j.dir, j.retentionDays, now)
		if err != nil {
			// the snapshot itself succeeded
			j.logger.Warn().Err(err).Str("dir", j.dir).Msg("failed to prune old backups")
		}
	}

	j.logger.Info().Str("path", path).Int("removed", removed).Msg("backup created")

	if j.eventBus != nil {
		if err := j.eventBus.PublishJSON(events.EventBackupCompleted, events.BackupEventPayload{Path: path, Removed: removed}); err != nil {
			j.logger.Error().Err(err).Msg("failed to publish backup event")
		}
	}
	return nil
}
