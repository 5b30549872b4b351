package live_test

import (
	"testing"
	"time"

	"github.com/feltline/feltline/internal/domain/live"
	"github.com/stretchr/testify/require"
)

func TestActivityLog_DerivedViews(t *testing.T) {
	log := live.NewActivityLog("s1")

	require.Equal(t, int64(50000), log.CurrentChipAmount(50000))
	require.Equal(t, int64(0), log.CurrentProfit(50000))

	log.AppendChipUpdate(live.ChipUpdate{ID: "c1", Amount: 62000, Timestamp: time.Now()})
	log.AppendChipUpdate(live.ChipUpdate{ID: "c2", Amount: 45000, Timestamp: time.Now()})

	require.Equal(t, int64(45000), log.CurrentChipAmount(50000))
	require.Equal(t, int64(-5000), log.CurrentProfit(50000))
}

func TestActivityLog_EditNote(t *testing.T) {
	log := live.NewActivityLog("s1")
	index := log.AppendNote("villain in seat 3 is loose")
	require.Equal(t, 0, index)

	require.NoError(t, log.EditNote(index, "villain in seat 3 tightened up"))
	require.Equal(t, "villain in seat 3 tightened up", log.Notes[0])

	require.ErrorIs(t, log.EditNote(5, "x"), live.ErrNoSuchNote)
	require.ErrorIs(t, log.EditNote(-1, "x"), live.ErrNoSuchNote)
}

func TestActivityLog_MarkPosted(t *testing.T) {
	log := live.NewActivityLog("s1")
	log.AppendChipUpdate(live.ChipUpdate{ID: "c1", Amount: 100})

	require.NoError(t, log.MarkChipUpdatePosted("c1"))
	require.True(t, log.ChipUpdates[0].PostedToFeed)

	require.ErrorIs(t, log.MarkChipUpdatePosted("missing"), live.ErrNoSuchChipUpdate)
}

func TestActivityLog_CloneIsIndependent(t *testing.T) {
	log := live.NewActivityLog("s1")
	log.AppendNote("original")
	log.Close(100)

	clone := log.Clone()
	clone.Notes[0] = "mutated"
	*clone.FinalCashout = 999

	require.Equal(t, "original", log.Notes[0])
	require.Equal(t, int64(100), *log.FinalCashout)
}
