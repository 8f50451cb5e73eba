package analytics

import "time"

// RoundStats summarizes one finished round from the controller's point of view.
type RoundStats struct {
	Score          int
	Hits           int
	Misses         int
	AvgReactionMs  float64
	BestReactionMs int
	TimedOut       bool // ended by the countdown rather than by lives
	Duration       time.Duration
}

// Summary aggregates recorded rounds, either across all sessions or for one.
type Summary struct {
	SessionCode    string         `json:"sessionCode,omitempty"`
	Rounds         int            `json:"rounds"`
	Hits           int            `json:"hits"`
	Misses         int            `json:"misses"`
	HitRate        float64        `json:"hitRate"` // percent of clicks that hit
	AvgScore       float64        `json:"avgScore"`
	AvgReactionMs  float64        `json:"avgReactionMs"`
	BestReactionMs int            `json:"bestReactionMs"`
	EndReasons     map[string]int `json:"endReasons"`
}
