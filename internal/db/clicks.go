package db

import (
	"fmt"
	"time"
)

type ClickEvent struct {
	RoundID     string
	SessionCode string
	CellID      int
	Hit         bool
	ReactionMs  int
	ClickedAt   time.Time
}

const insertClick = `
	INSERT INTO click_events (round_id, session_code, cell_id, hit, reaction_ms, clicked_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

func (d *DB) RecordClick(ev ClickEvent) error {
	_, err := d.Exec(insertClick, ev.RoundID, ev.SessionCode, ev.CellID, ev.Hit, ev.ReactionMs, ev.ClickedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording click: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordClicks(events []ClickEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(d.rebind(insertClick))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.RoundID, ev.SessionCode, ev.CellID, ev.Hit, ev.ReactionMs, ev.ClickedAt.UTC()); err != nil {
			return fmt.Errorf("recording click in batch: %w", err)
		}
	}

	return tx.Commit()
}

func (d *DB) CountClicks(roundID string) (int, error) {
	var n int
	err := d.QueryRow(`SELECT COUNT(*) FROM click_events WHERE round_id = ?`, roundID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting clicks: %w", err)
	}
	return n, nil
}
