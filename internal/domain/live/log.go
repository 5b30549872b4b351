package live

import "time"

// ChipUpdate is a point-in-time snapshot of the player's stack.
type ChipUpdate struct {
	ID           string    `json:"id"`
	Amount       int64     `json:"amount"`
	Note         string    `json:"note,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	PostedToFeed bool      `json:"posted_to_feed"`
}

// HandHistory is a free-form note describing a single hand.
type HandHistory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityLog is the append-only activity record owned by exactly one
// live session. Entries are never removed or reordered mid-session;
// chip updates may be flagged as posted and notes edited in place.
type ActivityLog struct {
	SessionID     string        `json:"session_id"`
	ChipUpdates   []ChipUpdate  `json:"chip_updates"`
	HandHistories []HandHistory `json:"hand_histories"`
	Notes         []string      `json:"notes"`
	// FinalCashout is the terminal marker written when the session ends.
	// A persisted log carrying it while the clock still claims to be
	// live means the session ended but the clock flag never landed.
	FinalCashout *int64 `json:"final_cashout,omitempty"`
}

// NewActivityLog creates an empty log keyed to its owning session.
func NewActivityLog(sessionID string) *ActivityLog {
	return &ActivityLog{SessionID: sessionID}
}

// AppendChipUpdate appends a stack snapshot.
func (l *ActivityLog) AppendChipUpdate(u ChipUpdate) {
	l.ChipUpdates = append(l.ChipUpdates, u)
}

// AppendHandHistory appends a hand history entry.
func (l *ActivityLog) AppendHandHistory(h HandHistory) {
	l.HandHistories = append(l.HandHistories, h)
}

// AppendNote appends a free-text note and returns its index.
func (l *ActivityLog) AppendNote(text string) int {
	l.Notes = append(l.Notes, text)
	return len(l.Notes) - 1
}

// EditNote replaces the note at index in place.
func (l *ActivityLog) EditNote(index int, text string) error {
	if index < 0 || index >= len(l.Notes) {
		return ErrNoSuchNote
	}
	l.Notes[index] = text
	return nil
}

// MarkChipUpdatePosted flags a chip update as posted to the feed.
func (l *ActivityLog) MarkChipUpdatePosted(id string) error {
	for i := range l.ChipUpdates {
		if l.ChipUpdates[i].ID == id {
			l.ChipUpdates[i].PostedToFeed = true
			return nil
		}
	}
	return ErrNoSuchChipUpdate
}

// Close writes the terminal cashout marker.
func (l *ActivityLog) Close(cashout int64) {
	l.FinalCashout = &cashout
}

// Closed reports whether the terminal marker is present.
func (l *ActivityLog) Closed() bool {
	return l.FinalCashout != nil
}

// CurrentChipAmount is the latest known stack: the last chip update's
// amount, or the buy-in when no updates exist.
func (l *ActivityLog) CurrentChipAmount(buyIn int64) int64 {
	if len(l.ChipUpdates) == 0 {
		return buyIn
	}
	return l.ChipUpdates[len(l.ChipUpdates)-1].Amount
}

// CurrentProfit is the running profit against the buy-in.
func (l *ActivityLog) CurrentProfit(buyIn int64) int64 {
	return l.CurrentChipAmount(buyIn) - buyIn
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (l *ActivityLog) Clone() *ActivityLog {
	out := &ActivityLog{SessionID: l.SessionID}
	out.ChipUpdates = append([]ChipUpdate(nil), l.ChipUpdates...)
	out.HandHistories = append([]HandHistory(nil), l.HandHistories...)
	out.Notes = append([]string(nil), l.Notes...)
	if l.FinalCashout != nil {
		cashout := *l.FinalCashout
		out.FinalCashout = &cashout
	}
	return out
}
