package game

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"whackamole/internal/analytics"
	"whackamole/internal/events"
	"whackamole/internal/targets"
)

var (
	ErrNotRunning     = errors.New("game loop is not running")
	ErrAlreadyRunning = errors.New("game loop already started")
)

// Controller is the game loop controller: it owns the board and the game
// state and mutates them from a single goroutine (see Run). The exported
// step methods (Rotate, Countdown, PointerDown, EndRound) are what the loop
// calls on each timer tick or input; call them directly only while the loop
// is not running.
type Controller struct {
	cfg   Config
	deps  Deps
	board *targets.Board
	state State
	round roundTracker

	// restartCountdown asks the loop to re-arm the countdown ticker after a
	// round transition.
	restartCountdown bool

	inbox   chan any
	started atomic.Bool
	done    chan struct{}
}

type roundTracker struct {
	id          string
	startedAt   time.Time
	activatedAt time.Time
	hits        int
	misses      int
	reactionMs  []int
}

func New(cfg Config, deps Deps) *Controller {
	cfg = cfg.normalized()
	deps = deps.withDefaults()
	c := &Controller{
		cfg:   cfg,
		deps:  deps,
		board: targets.NewBoard(cfg.Cells),
		inbox: make(chan any, 16),
		done:  make(chan struct{}),
	}
	c.state = State{
		Lives:         cfg.StartLives,
		TimeRemaining: cfg.RoundSeconds,
		ActiveTarget:  targets.None,
		Round:         1,
	}
	c.round = newRound(deps.Now())
	return c
}

func newRound(now time.Time) roundTracker {
	return roundTracker{id: uuid.New().String(), startedAt: now}
}

func (c *Controller) Config() Config {
	return c.cfg
}

// State returns a copy of the game state. While the loop is running use
// Snapshot instead.
func (c *Controller) State() State {
	return c.state
}

// Cells lists the board with the active flag set on the enemy cell.
func (c *Controller) Cells() []targets.Target {
	return c.board.List()
}

// RoundID identifies the round currently being played.
func (c *Controller) RoundID() string {
	return c.round.id
}

// render pushes every displayed value to the view.
func (c *Controller) render() {
	c.deps.View.ShowTimer(c.state.TimeRemaining)
	c.deps.View.ShowScore(c.state.Score)
	c.deps.View.ShowLives(c.state.Lives)
	c.deps.View.ShowActive(c.state.ActiveTarget)
}

// Rotate moves the enemy mark to a randomly drawn cell and returns its id.
func (c *Controller) Rotate() int {
	c.board.Clear()
	id := c.board.Pick(c.deps.Rand, c.cfg.LegacyQuirks)
	if err := c.board.Activate(id); err != nil {
		// Pick only yields ids on the board.
		log.Error().Err(err).Int("cell", id).Msg("rotation picked an invalid cell")
		c.state.ActiveTarget = targets.None
		c.deps.View.ShowActive(targets.None)
		return targets.None
	}
	c.state.ActiveTarget = id
	c.round.activatedAt = c.deps.Now()
	c.deps.View.ShowActive(id)
	return id
}

// Countdown runs one countdown tick. It reports true when the tick expired
// the round, in which case the round-end transition has already run.
func (c *Controller) Countdown() bool {
	c.state.TimeRemaining--
	c.deps.View.ShowTimer(c.state.TimeRemaining)
	if !c.expired() {
		return false
	}
	c.EndRound(ReasonTimeUp)
	return true
}

func (c *Controller) expired() bool {
	if c.cfg.LegacyQuirks {
		return c.state.TimeRemaining < 0
	}
	return c.state.TimeRemaining <= 0
}

// PointerDown resolves a press on cell id as a hit or a miss.
func (c *Controller) PointerDown(id int) (Outcome, error) {
	if !c.board.Has(id) {
		return OutcomeNone, fmt.Errorf("pointer down on cell %d: %w", id, targets.ErrNoSuchCell)
	}
	if active := c.state.ActiveTarget; active != targets.None && id == active {
		c.hit(id)
		return OutcomeHit, nil
	}
	if c.loseLife(id) {
		return OutcomeRoundOver, nil
	}
	return OutcomeMiss, nil
}

func (c *Controller) hit(id int) {
	now := c.deps.Now()
	reaction := int(now.Sub(c.round.activatedAt).Milliseconds())
	if reaction < 0 {
		reaction = 0
	}

	c.state.Score++
	c.deps.View.ShowScore(c.state.Score)

	c.board.Clear()
	c.state.ActiveTarget = targets.None
	c.deps.View.ShowActive(targets.None)

	c.round.hits++
	c.round.reactionMs = append(c.round.reactionMs, reaction)
	c.publishClick(id, true, reaction, now)

	if err := c.deps.Sound.PlayHit(); err != nil {
		log.Debug().Err(err).Msg("hit sound failed")
	}
}

// loseLife handles a miss and reports whether it ended the round.
func (c *Controller) loseLife(id int) bool {
	c.round.misses++
	c.publishClick(id, false, 0, c.deps.Now())

	if c.state.Lives == 0 {
		c.EndRound(ReasonOutOfLives)
		return true
	}
	c.state.Lives--
	c.deps.View.ShowLives(c.state.Lives)
	return false
}

// EndRound runs the round-end transition: update the best score, notify,
// reset score, lives and timer, and restart the countdown.
func (c *Controller) EndRound(reason EndReason) RoundResult {
	now := c.deps.Now()

	result := RoundResult{
		Round:  c.state.Round,
		Score:  c.state.Score,
		Reason: reason,
	}
	if c.state.Score > c.state.BestScore {
		c.state.BestScore = c.state.Score
		result.NewBest = true
	}
	result.Best = c.state.BestScore
	result.Stats = c.round.stats(c.state.Score, reason == ReasonTimeUp, now)
	result.Badges = analytics.EvaluateRoundBadges(result.Stats)

	log.Debug().
		Int("round", result.Round).
		Int("score", result.Score).
		Int("best", result.Best).
		Str("reason", string(reason)).
		Msg("round over")

	c.deps.Notifier.Notify(result)
	if c.deps.Events != nil {
		c.deps.Events.PublishRound(events.RoundEvent{
			RoundID:   c.round.id,
			Round:     result.Round,
			Score:     result.Score,
			Hits:      c.round.hits,
			Misses:    c.round.misses,
			Reason:    string(reason),
			NewBest:   result.NewBest,
			StartedAt: c.round.startedAt,
			EndedAt:   now,
		})
	}

	c.state.Score = 0
	c.state.Lives = c.cfg.StartLives
	c.state.TimeRemaining = c.cfg.RoundSeconds
	c.state.Round++
	c.deps.View.ShowScore(c.state.Score)
	c.deps.View.ShowLives(c.state.Lives)
	c.deps.View.ShowTimer(c.state.TimeRemaining)

	activatedAt := c.round.activatedAt
	c.round = newRound(now)
	c.round.activatedAt = activatedAt
	c.restartCountdown = true
	return result
}

func (c *Controller) publishClick(id int, hit bool, reactionMs int, at time.Time) {
	if c.deps.Events == nil {
		return
	}
	c.deps.Events.PublishClick(events.ClickEvent{
		RoundID:    c.round.id,
		CellID:     id,
		Hit:        hit,
		ReactionMs: reactionMs,
		At:         at,
	})
}

func (r roundTracker) stats(score int, timedOut bool, now time.Time) analytics.RoundStats {
	s := analytics.RoundStats{
		Score:    score,
		Hits:     r.hits,
		Misses:   r.misses,
		TimedOut: timedOut,
		Duration: now.Sub(r.startedAt),
	}
	if len(r.reactionMs) > 0 {
		total := 0
		s.BestReactionMs = r.reactionMs[0]
		for _, ms := range r.reactionMs {
			total += ms
			if ms < s.BestReactionMs {
				s.BestReactionMs = ms
			}
		}
		s.AvgReactionMs = float64(total) / float64(len(r.reactionMs))
	}
	return s
}
