package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRecord() *history.Record {
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	return &history.Record{
		LiveSessionID: "live1",
		GameName:      "NL Hold'em",
		Stakes:        "2/5",
		StartTime:     start,
		EndTime:       start.Add(90 * time.Minute),
		HoursPlayed:   1.5,
		BuyIn:         50000,
		Cashout:       80000,
	}
}

func TestHistoryService_Write(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.HistoryRepository{}
	repo.On("Create", ctx, "u1", mock.Anything).Return(nil)

	svc := history.NewService(repo, nil)
	rec := validRecord()
	id, err := svc.Write(ctx, "u1", rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, id, rec.ID)
	require.Equal(t, "u1", rec.UserID)
	require.Equal(t, int64(30000), rec.Profit)
	require.False(t, rec.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestHistoryService_Write_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := history.NewService(&mocks.HistoryRepository{}, nil)

	_, err := svc.Write(ctx, "", validRecord())
	require.ErrorIs(t, err, history.ErrInvalidInput)

	_, err = svc.Write(ctx, "u1", nil)
	require.ErrorIs(t, err, history.ErrInvalidInput)

	rec := validRecord()
	rec.EndTime = rec.StartTime.Add(-time.Minute)
	_, err = svc.Write(ctx, "u1", rec)
	require.ErrorIs(t, err, history.ErrInvalidInput)

	rec = validRecord()
	rec.BuyIn = -1
	_, err = svc.Write(ctx, "u1", rec)
	require.ErrorIs(t, err, history.ErrInvalidInput)
}

func TestHistoryService_SweepDuplicates(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	created := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	dup := func(id string, createdOffset time.Duration, startOffset time.Duration) history.Record {
		return history.Record{
			ID:        id,
			BuyIn:     50000,
			Cashout:   80000,
			StartTime: start.Add(startOffset),
			CreatedAt: created.Add(createdOffset),
		}
	}

	repo := &mocks.HistoryRepository{}
	repo.On("List", ctx, "u1").Return([]history.Record{
		// Three copies of the same session; start times differ by
		// seconds but land in the same minute.
		dup("keep", 0, 0),
		dup("dup-a", time.Minute, 10*time.Second),
		dup("dup-b", 2*time.Minute, 30*time.Second),
		// Different start minute: not a duplicate.
		{ID: "other", BuyIn: 50000, Cashout: 80000, StartTime: start.Add(5 * time.Minute), CreatedAt: created},
	}, nil)
	repo.On("Delete", ctx, "u1", "dup-a").Return(nil)
	repo.On("Delete", ctx, "u1", "dup-b").Return(nil)

	svc := history.NewService(repo, nil)
	deleted, err := svc.SweepDuplicates(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, deleted)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Delete", ctx, "u1", "keep")
	repo.AssertNotCalled(t, "Delete", ctx, "u1", "other")
}

func TestHistoryService_SweepNoDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.HistoryRepository{}
	repo.On("List", ctx, "u1").Return([]history.Record{
		{ID: "a", BuyIn: 1, Cashout: 2, StartTime: time.Now()},
	}, nil)

	svc := history.NewService(repo, nil)
	deleted, err := svc.SweepDuplicates(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, deleted)
}
