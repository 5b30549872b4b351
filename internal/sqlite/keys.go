package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/feltline/feltline/internal/repository"
)

// KeyRepository implements repository.KeyRepository for SQLite
type KeyRepository struct {
	db *DB
}

// NewKeyRepository creates a new KeyRepository
func NewKeyRepository(db *DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// ResolveUser maps a key hash to its user ID
func (r *KeyRepository) ResolveUser(ctx context.Context, keyHash string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM api_keys WHERE key_hash = ?`,
		keyHash,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	return userID, nil
}

// Insert stores a new API key hash for a user
func (r *KeyRepository) Insert(ctx context.Context, keyHash, userID, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, user_id, description) VALUES (?, ?, ?)`,
		keyHash, userID, nullString(description),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to insert api key: %w", err)
	}
	return nil
}
