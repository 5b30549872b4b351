package live

import (
	"context"

	"github.com/feltline/feltline/internal/domain/history"
)

// KVStore is the durable per-user byte store the engine persists into.
type KVStore interface {
	Get(ctx context.Context, userID, key string) ([]byte, error)
	Set(ctx context.Context, userID, key string, value []byte) error
	Remove(ctx context.Context, userID, key string) error
	RemoveAll(ctx context.Context, userID string) error
	Flush(ctx context.Context) error
}

// HistoryWriter receives finalized session records.
type HistoryWriter interface {
	Write(ctx context.Context, userID string, rec *history.Record) (string, error)
}
