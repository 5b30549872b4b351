package live

import "time"

// Verdict classifies a persisted live-session snapshot on cold start.
type Verdict string

const (
	// VerdictFresh means no snapshot exists; start from empty state.
	VerdictFresh Verdict = "fresh"
	// VerdictRestorable means the snapshot passed every check and the
	// clock may resume.
	VerdictRestorable Verdict = "restorable"
	// VerdictEnded means the session already finished; the leftover
	// snapshot must be wiped, never resumed.
	VerdictEnded Verdict = "ended"
	// VerdictCorrupted means the snapshot violates an invariant.
	VerdictCorrupted Verdict = "corrupted"
	// VerdictAbandoned means the session sat untouched past the
	// abandonment window.
	VerdictAbandoned Verdict = "abandoned"
	// VerdictIndeterminate means no rule matched; ambiguity resolves
	// toward clearing, never toward keeping a possibly-wrong clock.
	VerdictIndeterminate Verdict = "indeterminate"
)

// ShouldClear reports whether the verdict demands a scorched-earth clear.
func (v Verdict) ShouldClear() bool {
	return v != VerdictFresh && v != VerdictRestorable
}

// Rules bounds how old and how long a persisted session may be.
// AbandonAfter is at most MaxDuration.
type Rules struct {
	// MaxDuration is the absolute ceiling on a single session's elapsed
	// running time.
	MaxDuration time.Duration
	// AbandonAfter is the maximum gap since last activity before a
	// session is discarded instead of resumed.
	AbandonAfter time.Duration
}

// Classify inspects a persisted session snapshot and decides whether it
// may be resumed. It is a pure function of its inputs. The bias is
// deliberate: a silently-wrong running clock is worse than making the
// user restart a session, so every ambiguous case clears.
func Classify(state *Session, log *ActivityLog, now time.Time, rules Rules) Verdict {
	if state == nil {
		return VerdictFresh
	}

	switch state.Phase {
	case PhaseActive, PhasePaused:
	case PhaseEnded:
		return VerdictEnded
	default:
		return VerdictCorrupted
	}

	if state.BuyIn < 0 || state.Elapsed < 0 {
		return VerdictCorrupted
	}
	if state.StartTime.IsZero() || state.StartTime.After(now) {
		return VerdictCorrupted
	}
	if state.Elapsed > rules.MaxDuration {
		return VerdictCorrupted
	}
	if state.Phase == PhaseActive && state.PhaseSince.IsZero() {
		return VerdictCorrupted
	}
	if state.Phase == PhaseActive && state.BuyIn == 0 {
		return VerdictCorrupted
	}

	// A terminal marker in the log while the clock claims still-live
	// means the end landed but the clock flag didn't.
	if log != nil && log.Closed() {
		return VerdictEnded
	}

	if now.Sub(state.LastActivity()) >= rules.AbandonAfter {
		return VerdictAbandoned
	}

	if state.BuyIn > 0 && (state.Phase == PhaseActive || !state.PhaseSince.IsZero()) {
		return VerdictRestorable
	}

	return VerdictIndeterminate
}
