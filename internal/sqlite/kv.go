package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/feltline/feltline/internal/repository"
)

// KVStore implements repository.KVStore for SQLite
type KVStore struct {
	db *DB
}

// NewKVStore creates a new KVStore
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value for a key, or repository.ErrNotFound
func (s *KVStore) Get(ctx context.Context, userID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE user_id = ? AND key = ?`,
		userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

// Set writes a key, replacing any existing value
func (s *KVStore) Set(ctx context.Context, userID, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (user_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, userID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key; removing an absent key is not an error
func (s *KVStore) Remove(ctx context.Context, userID, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE user_id = ? AND key = ?`,
		userID, key,
	); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// RemoveAll wipes every key in the user's scope
func (s *KVStore) RemoveAll(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE user_id = ?`,
		userID,
	); err != nil {
		return fmt.Errorf("failed to remove user keys: %w", err)
	}
	return nil
}

// Flush checkpoints the WAL so prior writes are in the main database file
func (s *KVStore) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}
