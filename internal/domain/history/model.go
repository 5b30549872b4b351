package history

import "time"

// Record is an immutable finalized session. Monetary amounts are in cents.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	LiveSessionID  string    `json:"live_session_id"`
	GameName       string    `json:"game_name"`
	Stakes         string    `json:"stakes"`
	IsTournament   bool      `json:"is_tournament"`
	TournamentName string    `json:"tournament_name,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	HoursPlayed    float64   `json:"hours_played"`
	BuyIn          int64     `json:"buy_in"`
	Cashout        int64     `json:"cashout"`
	Profit         int64     `json:"profit"`
	CreatedAt      time.Time `json:"created_at"`
}
