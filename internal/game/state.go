package game

import (
	"fmt"

	"whackamole/internal/analytics"
)

// State is a copy of the controller's game state.
type State struct {
	Score         int `json:"score"`
	Lives         int `json:"lives"`
	TimeRemaining int `json:"timeRemaining"`
	ActiveTarget  int `json:"activeTarget"` // targets.None when no cell is marked
	BestScore     int `json:"bestScore"`
	Round         int `json:"round"`
}

type Outcome string

const (
	OutcomeNone      = Outcome("")
	OutcomeHit       = Outcome("hit")
	OutcomeMiss      = Outcome("miss")
	OutcomeRoundOver = Outcome("round_over") // a miss with no lives left
)

type EndReason string

const (
	ReasonTimeUp     = EndReason("time_up")
	ReasonOutOfLives = EndReason("out_of_lives")
)

// RoundResult is handed to the Notifier when a round ends.
type RoundResult struct {
	Round   int
	Score   int
	Best    int  // best score after this round
	NewBest bool // Score beat the previous best
	Reason  EndReason
	Stats   analytics.RoundStats
	Badges  []analytics.Badge
}

// Message is the human readable round-end notice.
func (r RoundResult) Message() string {
	if r.NewBest {
		return fmt.Sprintf("Game Over!\nYour score: %d.\nCongratulations! The new best score is yours!", r.Score)
	}
	return fmt.Sprintf("Game Over!\nYour score: %d.\nCurrent best: %d", r.Score, r.Best)
}
