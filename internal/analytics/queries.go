package analytics

import (
	"fmt"

	"whackamole/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// Summary aggregates every recorded round.
func (q *Queries) Summary() (*Summary, error) {
	return q.summary("")
}

// SessionSummary aggregates the rounds of one session.
func (q *Queries) SessionSummary(code string) (*Summary, error) {
	return q.summary(code)
}

func (q *Queries) summary(code string) (*Summary, error) {
	s := &Summary{SessionCode: code, EndReasons: make(map[string]int)}

	where := ""
	var args []any
	if code != "" {
		where = " AND session_code = ?"
		args = append(args, code)
	}

	err := q.DB.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(hits), 0),
			COALESCE(SUM(misses), 0),
			COALESCE(AVG(score), 0.0)
		FROM rounds
		WHERE 1 = 1`+where, args...).Scan(&s.Rounds, &s.Hits, &s.Misses, &s.AvgScore)
	if err != nil {
		return nil, fmt.Errorf("getting round totals: %w", err)
	}

	clickArgs := append([]any{true}, args...)
	err = q.DB.QueryRow(`
		SELECT
			COALESCE(AVG(reaction_ms), 0.0),
			COALESCE(MIN(reaction_ms), 0)
		FROM click_events
		WHERE hit = ?`+where, clickArgs...).Scan(&s.AvgReactionMs, &s.BestReactionMs)
	if err != nil {
		return nil, fmt.Errorf("getting reaction stats: %w", err)
	}

	if clicks := s.Hits + s.Misses; clicks > 0 {
		s.HitRate = float64(s.Hits) / float64(clicks) * 100
	}

	rows, err := q.DB.Query(`
		SELECT end_reason, COUNT(*)
		FROM rounds
		WHERE 1 = 1`+where+`
		GROUP BY end_reason
		ORDER BY end_reason`, args...)
	if err != nil {
		return nil, fmt.Errorf("getting end reasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, err
		}
		s.EndReasons[reason] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading end reasons: %w", err)
	}

	return s, nil
}
