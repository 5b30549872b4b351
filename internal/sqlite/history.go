package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/feltline/feltline/internal/repository"
)

// HistoryRepository implements repository.HistoryRepository for SQLite
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a finalized session record
func (r *HistoryRepository) Create(ctx context.Context, userID string, rec *history.Record) error {
	query := `
		INSERT INTO session_records (
			id, user_id, live_session_id, game_name, stakes,
			is_tournament, tournament_name, start_time, end_time,
			hours_played, buy_in, cashout, profit, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		userID,
		rec.LiveSessionID,
		rec.GameName,
		rec.Stakes,
		rec.IsTournament,
		nullString(rec.TournamentName),
		rec.StartTime,
		rec.EndTime,
		rec.HoursPlayed,
		rec.BuyIn,
		rec.Cashout,
		rec.Profit,
		rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create session record: %w", err)
	}
	return nil
}

// List returns the user's records ordered by start time descending
func (r *HistoryRepository) List(ctx context.Context, userID string) ([]history.Record, error) {
	query := `
		SELECT
			id, user_id, live_session_id, game_name, stakes,
			is_tournament, tournament_name, start_time, end_time,
			hours_played, buy_in, cashout, profit, created_at
		FROM session_records
		WHERE user_id = ?
		ORDER BY start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var rec history.Record
		var tournamentName sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.LiveSessionID,
			&rec.GameName,
			&rec.Stakes,
			&rec.IsTournament,
			&tournamentName,
			&rec.StartTime,
			&rec.EndTime,
			&rec.HoursPlayed,
			&rec.BuyIn,
			&rec.Cashout,
			&rec.Profit,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session record: %w", err)
		}
		if tournamentName.Valid {
			rec.TournamentName = tournamentName.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session records: %w", err)
	}

	return records, nil
}

// Delete removes a record by ID
func (r *HistoryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM session_records WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
