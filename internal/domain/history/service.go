package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Service handles finalized session records.
type Service struct {
	records Repository
	logger  *slog.Logger
}

// NewService creates a history service.
func NewService(records Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// Write stores a finalized record and returns its ID. Missing ID and
// creation timestamp are filled in; profit is derived when absent.
func (s *Service) Write(ctx context.Context, userID string, rec *Record) (string, error) {
	if userID == "" || rec == nil {
		return "", ErrInvalidInput
	}
	if rec.StartTime.IsZero() || rec.EndTime.Before(rec.StartTime) {
		return "", ErrInvalidInput
	}
	if rec.BuyIn < 0 || rec.Cashout < 0 {
		return "", ErrInvalidInput
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Profit == 0 {
		rec.Profit = rec.Cashout - rec.BuyIn
	}
	rec.UserID = userID

	if err := s.records.Create(ctx, userID, rec); err != nil {
		return "", fmt.Errorf("creating session record: %w", err)
	}
	return rec.ID, nil
}

// List returns the user's records ordered by start time descending.
func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	recs, err := s.records.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing session records: %w", err)
	}
	return recs, nil
}

// dupKey is the composite identity used by the duplicate sweep: two
// records with the same buy-in, cashout, and start minute are the same
// session submitted twice.
type dupKey struct {
	buyIn       int64
	cashout     int64
	startMinute int64
}

// SweepDuplicates removes duplicate records, keeping the earliest
// created member of each group. It returns the number deleted. Runs
// after bulk imports to absorb accidental re-submission.
func (s *Service) SweepDuplicates(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrInvalidInput
	}

	recs, err := s.records.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("listing session records: %w", err)
	}

	groups := make(map[dupKey][]Record)
	for _, rec := range recs {
		key := dupKey{
			buyIn:       rec.BuyIn,
			cashout:     rec.Cashout,
			startMinute: rec.StartTime.Truncate(time.Minute).Unix(),
		}
		groups[key] = append(groups[key], rec)
	}

	deleted := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID < group[j].ID
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		for _, rec := range group[1:] {
			if err := s.records.Delete(ctx, userID, rec.ID); err != nil {
				return deleted, fmt.Errorf("deleting duplicate record %s: %w", rec.ID, err)
			}
			deleted++
		}
	}

	if deleted > 0 {
		s.logger.Info("duplicate sweep removed records", "user", userID, "deleted", deleted)
	}
	return deleted, nil
}
