package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SaveCapability records the authorized export folder, replacing any
// previously saved one.
func (s *Store) SaveCapability(ctx context.Context, folderPath string) error {
	folderPath = strings.TrimSpace(folderPath)
	if folderPath == "" {
		return errors.New("folder path cannot be empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.execWithRetry(
		ctx,
		`INSERT INTO capability (id, folder_path, saved_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET folder_path = excluded.folder_path, saved_at = excluded.saved_at`,
		folderPath,
		now,
	)
}

// LoadCapability returns the saved export folder, or the empty string when
// none is stored.
func (s *Store) LoadCapability(ctx context.Context) (string, error) {
	ctx = ensureContext(ctx)
	var folderPath string
	err := s.db.QueryRowContext(ctx, "SELECT folder_path FROM capability WHERE id = 1").Scan(&folderPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load capability: %w", err)
	}
	return folderPath, nil
}

// ClearCapability forgets the saved export folder.
func (s *Store) ClearCapability(ctx context.Context) error {
	return s.execWithRetry(ctx, "DELETE FROM capability WHERE id = 1")
}
