package db

import (
	"fmt"
	"time"
)

type RoundRecord struct {
	ID          string
	SessionCode string
	Round       int
	Score       int
	Hits        int
	Misses      int
	EndReason   string
	StartedAt   time.Time
	EndedAt     time.Time
}

func (d *DB) RecordRound(r RoundRecord) error {
	_, err := d.Exec(`
		INSERT INTO rounds (id, session_code, round_number, score, hits, misses, end_reason, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.SessionCode, r.Round, r.Score, r.Hits, r.Misses, r.EndReason, r.StartedAt.UTC(), r.EndedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording round: %w", err)
	}
	return nil
}

func (d *DB) CountRounds(sessionCode string) (int, error) {
	var n int
	err := d.QueryRow(`SELECT COUNT(*) FROM rounds WHERE session_code = ?`, sessionCode).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting rounds: %w", err)
	}
	return n, nil
}
