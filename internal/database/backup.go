package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup writes a consistent snapshot of the database into backupDir using
// VACUUM INTO and returns the snapshot path.
func (db *DB) Backup(ctx context.Context, backupDir string) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("royalpalace_%s.db", time.Now().Format("20060102_150405"))
	target := filepath.Join(backupDir, name)

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		return "", fmt.Errorf("failed to vacuum into backup: %w", err)
	}

	db.logger.Info().Str("path", target).Msg("database backup created")
	return target, nil
}

// CleanupOldBackups keeps the newest `keep` snapshots and removes the rest.
func (db *DB) CleanupOldBackups(backupDir string, keep int) error {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "royalpalace_") && strings.HasSuffix(entry.Name(), ".db") {
			backups = append(backups, entry.Name())
		}
	}
	if len(backups) <= keep {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-keep] {
		path := filepath.Join(backupDir, name)
		if err := os.Remove(path); err != nil {
			db.logger.Warn().Err(err).Str("path", path).Msg("failed to remove old backup")
			continue
		}
		db.logger.Debug().Str("path", path).Msg("old backup removed")
	}
	return nil
}
