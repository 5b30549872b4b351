package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/repository"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, start time.Time) *history.Record {
	return &history.Record{
		ID:            id,
		UserID:        "u1",
		LiveSessionID: "live-" + id,
		GameName:      "NL Hold'em",
		Stakes:        "2/5",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		HoursPlayed:   2,
		BuyIn:         50000,
		Cashout:       72000,
		Profit:        22000,
		CreatedAt:     start.Add(2 * time.Hour),
	}
}

func TestHistoryRepository_CreateList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHistoryRepository(db)

	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, "u1", testRecord("r1", base)))
	require.NoError(t, repo.Create(ctx, "u1", testRecord("r2", base.Add(24*time.Hour))))
	require.NoError(t, repo.Create(ctx, "u2", testRecord("other", base)))

	records, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Most recent start first.
	require.Equal(t, "r2", records[0].ID)
	require.Equal(t, "r1", records[1].ID)
	require.Equal(t, int64(22000), records[0].Profit)
	require.Equal(t, "live-r1", records[1].LiveSessionID)
}

func TestHistoryRepository_TournamentName(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHistoryRepository(db)

	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	rec := testRecord("t1", base)
	rec.IsTournament = true
	rec.TournamentName = "Sunday Deepstack"
	require.NoError(t, repo.Create(ctx, "u1", rec))

	records, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.True(t, records[0].IsTournament)
	require.Equal(t, "Sunday Deepstack", records[0].TournamentName)
}

func TestHistoryRepository_DuplicateID(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHistoryRepository(db)

	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, "u1", testRecord("r1", base)))
	require.ErrorIs(t, repo.Create(ctx, "u1", testRecord("r1", base)), repository.ErrDuplicate)
}

func TestHistoryRepository_Delete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHistoryRepository(db)

	base := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, "u1", testRecord("r1", base)))

	require.NoError(t, repo.Delete(ctx, "u1", "r1"))
	records, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, records)

	require.ErrorIs(t, repo.Delete(ctx, "u1", "r1"), repository.ErrNotFound)
}
