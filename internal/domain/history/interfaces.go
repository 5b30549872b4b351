package history

import "context"

// Repository provides persistence for finalized session records.
type Repository interface {
	Create(ctx context.Context, userID string, rec *Record) error
	List(ctx context.Context, userID string) ([]Record, error)
	Delete(ctx context.Context, userID, id string) error
}
