package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const backupPrefix = "backup_"

// Backup writes a consistent copy of the store into dir using VACUUM INTO.
// It returns the path of the new file.
func (db *DB) Backup(ctx context.Context, dir string, now time.Time) (string, error) {
	if isMemory(db.path) {
		return "", fmt.Errorf("in-memory database cannot be backed up")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(dir, fmt.Sprintf("%s%s.db", backupPrefix, now.Format("20060102_150405")))
	db.logger.Info().Str("path", backupPath).Msg("performing database backup using VACUUM INTO")

	// VACUUM INTO refuses to overwrite
	_ = os.Remove(backupPath)
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	db.logger.Info().Str("path", backupPath).Msg("backup completed")
	return backupPath, nil
}

// PruneBackups deletes backups in dir older than retentionDays and returns how
// many were removed. Non-positive retention keeps everything.
func (db *DB) PruneBackups(dir string, retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupPrefix) {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			db.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
				db.logger.Warn().Err(err).Str("file", file.Name()).Msg("failed to delete backup")
				continue
			}
			removed++
		}
	}
	return removed, nil
}
