package live_test

import (
	"testing"
	"time"

	"github.com/feltline/feltline/internal/domain/live"
	"github.com/stretchr/testify/require"
)

var testRules = live.Rules{
	MaxDuration:  24 * time.Hour,
	AbandonAfter: 12 * time.Hour,
}

func validState(now time.Time) *live.Session {
	return &live.Session{
		ID:         "s1",
		GameName:   "NL Hold'em",
		Stakes:     "1/2",
		BuyIn:      50000,
		StartTime:  now.Add(-time.Hour),
		Elapsed:    time.Hour,
		Phase:      live.PhaseActive,
		PhaseSince: now.Add(-time.Minute),
	}
}

func TestClassify_NoSnapshot(t *testing.T) {
	now := time.Now().UTC()
	require.Equal(t, live.VerdictFresh, live.Classify(nil, nil, now, testRules))
}

func TestClassify_Restorable(t *testing.T) {
	now := time.Now().UTC()

	active := validState(now)
	require.Equal(t, live.VerdictRestorable, live.Classify(active, nil, now, testRules))

	paused := validState(now)
	paused.Phase = live.PhasePaused
	require.Equal(t, live.VerdictRestorable, live.Classify(paused, nil, now, testRules))
}

func TestClassify_Ended(t *testing.T) {
	now := time.Now().UTC()
	state := validState(now)
	state.Phase = live.PhaseEnded
	require.Equal(t, live.VerdictEnded, live.Classify(state, nil, now, testRules))
}

func TestClassify_Corrupted(t *testing.T) {
	now := time.Now().UTC()

	cases := map[string]func(*live.Session){
		"negative buy-in":          func(s *live.Session) { s.BuyIn = -1 },
		"negative elapsed":         func(s *live.Session) { s.Elapsed = -time.Second },
		"zero start time":          func(s *live.Session) { s.StartTime = time.Time{} },
		"future start time":        func(s *live.Session) { s.StartTime = now.Add(time.Hour) },
		"elapsed beyond ceiling":   func(s *live.Session) { s.Elapsed = testRules.MaxDuration + time.Second },
		"active without timestamp": func(s *live.Session) { s.PhaseSince = time.Time{} },
		"active with zero buy-in":  func(s *live.Session) { s.BuyIn = 0 },
		"unknown phase":            func(s *live.Session) { s.Phase = live.Phase("suspended") },
	}

	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			state := validState(now)
			corrupt(state)
			verdict := live.Classify(state, nil, now, testRules)
			require.Equal(t, live.VerdictCorrupted, verdict)
			require.True(t, verdict.ShouldClear())
		})
	}
}

func TestClassify_TerminalMarkerInLog(t *testing.T) {
	now := time.Now().UTC()
	state := validState(now)
	log := live.NewActivityLog(state.ID)
	log.Close(80000)
	require.Equal(t, live.VerdictEnded, live.Classify(state, log, now, testRules))
}

func TestClassify_AbandonmentBoundary(t *testing.T) {
	now := time.Now().UTC()

	// Exactly at the window: abandoned.
	state := validState(now)
	state.StartTime = now.Add(-23 * time.Hour)
	state.PhaseSince = now.Add(-testRules.AbandonAfter)
	require.Equal(t, live.VerdictAbandoned, live.Classify(state, nil, now, testRules))

	// Strictly inside the window: restorable.
	state.PhaseSince = now.Add(-testRules.AbandonAfter + time.Second)
	require.Equal(t, live.VerdictRestorable, live.Classify(state, nil, now, testRules))
}

func TestClassify_Indeterminate(t *testing.T) {
	now := time.Now().UTC()

	// Paused with no pause timestamp: nothing to anchor a resume on.
	state := validState(now)
	state.Phase = live.PhasePaused
	state.PhaseSince = time.Time{}
	state.StartTime = now.Add(-time.Minute)
	require.Equal(t, live.VerdictIndeterminate, live.Classify(state, nil, now, testRules))

	// Paused with zero buy-in.
	state = validState(now)
	state.Phase = live.PhasePaused
	state.BuyIn = 0
	require.Equal(t, live.VerdictIndeterminate, live.Classify(state, nil, now, testRules))
}
