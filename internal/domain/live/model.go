package live

import "time"

// Phase identifies where a live session is in its lifecycle. Exactly one
// phase holds at a time; a session that has reached PhaseEnded is inert
// and must never run again.
type Phase string

const (
	PhaseActive Phase = "active"
	PhasePaused Phase = "paused"
	PhaseEnded  Phase = "ended"
)

// TournamentDetails carries tournament metadata. It has no effect on the
// clock state machine.
type TournamentDetails struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	BaseBuyIn int64  `json:"base_buy_in,omitempty"`
}

// Session is the clock and financial metadata for one in-progress
// session. Monetary amounts are in cents. At most one instance exists
// per user at a time.
type Session struct {
	ID           string             `json:"id"`
	GameName     string             `json:"game_name"`
	Stakes       string             `json:"stakes"`
	BuyIn        int64              `json:"buy_in"`
	IsTournament bool               `json:"is_tournament"`
	Tournament   *TournamentDetails `json:"tournament,omitempty"`
	StartTime    time.Time          `json:"start_time"`
	// Elapsed is the accumulated running duration. It grows only while
	// active and is frozen across pauses.
	Elapsed time.Duration `json:"elapsed"`
	Phase   Phase         `json:"phase"`
	// PhaseSince is the instant the current phase began: the moment the
	// clock was last known running while active, the pause instant while
	// paused, the end instant once ended.
	PhaseSince time.Time `json:"phase_since"`
}

// Active reports whether the clock is currently running.
func (s *Session) Active() bool {
	return s.Phase == PhaseActive
}

// Ended reports whether the session has reached its terminal phase.
func (s *Session) Ended() bool {
	return s.Phase == PhaseEnded
}

// LastActivity returns the most recent instant the session is known to
// have been touched.
func (s *Session) LastActivity() time.Time {
	if s.PhaseSince.After(s.StartTime) {
		return s.PhaseSince
	}
	return s.StartTime
}
