package repository

import (
	"context"

	"github.com/feltline/feltline/internal/domain/history"
)

// KVStore is a crash-safe, string-keyed byte store scoped per user. The
// live engine persists its clock and activity-log snapshots through it.
type KVStore interface {
	// Get returns the stored value, or ErrNotFound when the key is absent.
	Get(ctx context.Context, userID, key string) ([]byte, error)
	Set(ctx context.Context, userID, key string, value []byte) error
	// Remove deletes a key; removing an absent key is not an error.
	Remove(ctx context.Context, userID, key string) error
	// RemoveAll wipes every key in the user's scope.
	RemoveAll(ctx context.Context, userID string) error
	// Flush forces buffered writes to durable storage.
	Flush(ctx context.Context) error
}

// HistoryRepository manages finalized session record persistence.
type HistoryRepository interface {
	Create(ctx context.Context, userID string, rec *history.Record) error
	// List returns the user's records ordered by start time descending.
	List(ctx context.Context, userID string) ([]history.Record, error)
	Delete(ctx context.Context, userID, id string) error
}

// KeyRepository manages API key lookups for authentication.
type KeyRepository interface {
	// ResolveUser maps a key hash to a user ID, or ErrNotFound.
	ResolveUser(ctx context.Context, keyHash string) (string, error)
	Insert(ctx context.Context, keyHash, userID, description string) error
}
