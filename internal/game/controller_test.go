package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"whackamole/internal/analytics"
	"whackamole/internal/events"
	"whackamole/internal/targets"
)

func TestNewController(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, nil)

	s := c.State()
	if s.Score != 0 {
		t.Errorf("Expected score 0, got %d", s.Score)
	}
	if s.Lives != 5 {
		t.Errorf("Expected 5 lives, got %d", s.Lives)
	}
	if s.TimeRemaining != 60 {
		t.Errorf("Expected 60 seconds, got %d", s.TimeRemaining)
	}
	if s.ActiveTarget != targets.None {
		t.Errorf("Expected no active target, got %d", s.ActiveTarget)
	}
	if s.Round != 1 {
		t.Errorf("Expected round 1, got %d", s.Round)
	}
	if c.RoundID() == "" {
		t.Error("Expected a round id")
	}
	if len(c.Cells()) != 9 {
		t.Errorf("Expected 9 cells, got %d", len(c.Cells()))
	}
}

func TestNewControllerNormalizesConfig(t *testing.T) {
	c := New(Config{}, Deps{})
	cfg := c.Config()
	if cfg.Cells != 9 || cfg.RoundSeconds != 60 || cfg.TickInterval != time.Second {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	// Zero lives is a legitimate setting.
	if cfg.StartLives != 0 {
		t.Errorf("Expected 0 start lives to be kept, got %d", cfg.StartLives)
	}
}

func TestRotateMarksExactlyOneCell(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, nil)

	for i := 0; i < 50; i++ {
		id := c.Rotate()
		if id < 1 || id > 9 {
			t.Fatalf("Rotation picked cell %d outside the board", id)
		}
		active := 0
		for _, cell := range c.Cells() {
			if cell.Active {
				active++
				if cell.ID != id {
					t.Errorf("Expected cell %d active, got %d", id, cell.ID)
				}
			}
		}
		if active != 1 {
			t.Fatalf("Expected exactly one active cell, got %d", active)
		}
		if c.State().ActiveTarget != id {
			t.Errorf("Expected state active %d, got %d", id, c.State().ActiveTarget)
		}
		if rec.lastActive() != id {
			t.Errorf("Expected view to show %d, got %d", id, rec.lastActive())
		}
	}
}

func TestRotateLegacyNeverPicksLastCell(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegacyQuirks = true
	c := newTestController(cfg, newRecorder(), nil)

	for i := 0; i < 500; i++ {
		if id := c.Rotate(); id == 9 {
			t.Fatal("Legacy rotation picked the last cell")
		}
	}
}

func TestHitThenRepeatClickIsMiss(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, newFakeClock())
	forceActive(c, 3)

	outcome, err := c.PointerDown(3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome != OutcomeHit {
		t.Errorf("Expected hit, got %q", outcome)
	}
	s := c.State()
	if s.Score != 1 {
		t.Errorf("Expected score 1, got %d", s.Score)
	}
	if s.ActiveTarget != targets.None {
		t.Errorf("Expected no active target after a hit, got %d", s.ActiveTarget)
	}
	if rec.lastActive() != targets.None {
		t.Errorf("Expected view mark cleared, got %d", rec.lastActive())
	}
	if rec.hitSounds() != 1 {
		t.Errorf("Expected 1 hit sound, got %d", rec.hitSounds())
	}

	outcome, err = c.PointerDown(3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("Expected miss on the cleared cell, got %q", outcome)
	}
	s = c.State()
	if s.Lives != 4 {
		t.Errorf("Expected 4 lives, got %d", s.Lives)
	}
	if s.Score != 1 {
		t.Errorf("Expected score to stay 1, got %d", s.Score)
	}
}

func TestMissDecrementsLives(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, nil)
	forceActive(c, 2)

	outcome, _ := c.PointerDown(5)
	if outcome != OutcomeMiss {
		t.Errorf("Expected miss, got %q", outcome)
	}
	if c.State().Lives != 4 {
		t.Errorf("Expected 4 lives, got %d", c.State().Lives)
	}
	if len(rec.lives) == 0 || rec.lives[len(rec.lives)-1] != 4 {
		t.Errorf("Expected view to show 4 lives, got %v", rec.lives)
	}
	if c.State().ActiveTarget != 2 {
		t.Errorf("Expected mark to stay on 2, got %d", c.State().ActiveTarget)
	}
}

func TestMissWithNoLivesEndsRound(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, nil)
	forceActive(c, 1)
	c.state.Score = 4
	c.state.Lives = 0

	outcome, err := c.PointerDown(7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome != OutcomeRoundOver {
		t.Errorf("Expected round over, got %q", outcome)
	}
	s := c.State()
	if s.Lives != 5 {
		t.Errorf("Expected lives reset to 5, got %d", s.Lives)
	}
	if s.Score != 0 {
		t.Errorf("Expected score reset, got %d", s.Score)
	}
	if s.TimeRemaining != 60 {
		t.Errorf("Expected timer reset, got %d", s.TimeRemaining)
	}
	if len(rec.results) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(rec.results))
	}
	res := rec.results[0]
	if res.Reason != ReasonOutOfLives {
		t.Errorf("Expected out_of_lives, got %q", res.Reason)
	}
	if res.Score != 4 {
		t.Errorf("Expected result score 4, got %d", res.Score)
	}
}

func TestMissesRunLivesDownToRoundEnd(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, nil)

	// Five misses use up the lives, the sixth ends the round.
	for i := 0; i < 5; i++ {
		if outcome, _ := c.PointerDown(1); outcome != OutcomeMiss {
			t.Fatalf("Miss %d: expected miss, got %q", i+1, outcome)
		}
	}
	if c.State().Lives != 0 {
		t.Fatalf("Expected 0 lives, got %d", c.State().Lives)
	}
	if outcome, _ := c.PointerDown(1); outcome != OutcomeRoundOver {
		t.Errorf("Expected round over, got %q", outcome)
	}
	if c.State().Round != 2 {
		t.Errorf("Expected round 2, got %d", c.State().Round)
	}
	if got := rec.results[0].Stats.Misses; got != 6 {
		t.Errorf("Expected 6 misses in stats, got %d", got)
	}
}

func TestLivesStayWithinConfiguredStartLives(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartLives = 3
	rec := newRecorder()
	c := newTestController(cfg, rec, nil)

	for round := 1; round <= 2; round++ {
		for i := 0; i < 4; i++ {
			c.PointerDown(1)
			if l := c.State().Lives; l < 0 || l > 3 {
				t.Fatalf("Round %d miss %d: lives %d outside [0, 3]", round, i+1, l)
			}
		}
		if c.State().Round != round+1 {
			t.Fatalf("Expected the 4th miss to end round %d, got round %d", round, c.State().Round)
		}
		if c.State().Lives != 3 {
			t.Errorf("Expected lives reset to 3, got %d", c.State().Lives)
		}
	}

	// Negative settings fall back to the default of 5.
	cfg.StartLives = -2
	c = newTestController(cfg, newRecorder(), nil)
	if c.State().Lives != 5 {
		t.Errorf("Expected 5 lives for a negative setting, got %d", c.State().Lives)
	}
}

func TestPointerDownUnknownCell(t *testing.T) {
	c := newTestController(DefaultConfig(), newRecorder(), nil)

	for _, id := range []int{0, -1, 10} {
		_, err := c.PointerDown(id)
		if !errors.Is(err, targets.ErrNoSuchCell) {
			t.Errorf("Cell %d: expected ErrNoSuchCell, got %v", id, err)
		}
	}
	if c.State().Lives != 5 {
		t.Errorf("Expected lives untouched, got %d", c.State().Lives)
	}
}

func TestSoundFailureDoesNotBlockHit(t *testing.T) {
	rec := newRecorder()
	rec.soundErr = errNoSpeaker
	c := newTestController(DefaultConfig(), rec, nil)
	forceActive(c, 4)

	outcome, err := c.PointerDown(4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome != OutcomeHit || c.State().Score != 1 {
		t.Errorf("Expected scored hit, got %q score %d", outcome, c.State().Score)
	}
}

func TestCountdownEndsRoundAtZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoundSeconds = 3
	rec := newRecorder()
	c := newTestController(cfg, rec, nil)

	if c.Countdown() || c.Countdown() {
		t.Fatal("Round ended early")
	}
	if !c.Countdown() {
		t.Fatal("Expected round to end when the timer reached 0")
	}
	if rec.results[0].Reason != ReasonTimeUp {
		t.Errorf("Expected time_up, got %q", rec.results[0].Reason)
	}
	if c.State().TimeRemaining != 3 {
		t.Errorf("Expected timer reset to 3, got %d", c.State().TimeRemaining)
	}
	if !c.restartCountdown {
		t.Error("Expected countdown restart to be requested")
	}
}

func TestCountdownLegacyEndsBelowZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoundSeconds = 2
	cfg.LegacyQuirks = true
	rec := newRecorder()
	c := newTestController(cfg, rec, nil)

	c.Countdown()
	if c.Countdown() {
		t.Fatal("Legacy countdown ended at 0")
	}
	if c.State().TimeRemaining != 0 {
		t.Fatalf("Expected 0 remaining, got %d", c.State().TimeRemaining)
	}
	if !c.Countdown() {
		t.Fatal("Expected legacy countdown to end at -1")
	}
	if got := rec.timers[len(rec.timers)-2]; got != -1 {
		t.Errorf("Expected view to show -1 before the reset, got %d", got)
	}
}

func TestEndRoundBestScore(t *testing.T) {
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, nil)

	rounds := []struct {
		score   int
		best    int
		newBest bool
	}{
		{score: 3, best: 3, newBest: true},
		{score: 1, best: 3, newBest: false},
		{score: 3, best: 3, newBest: false},
		{score: 7, best: 7, newBest: true},
		{score: 0, best: 7, newBest: false},
	}
	for i, r := range rounds {
		c.state.Score = r.score
		res := c.EndRound(ReasonTimeUp)
		if res.Best != r.best || res.NewBest != r.newBest {
			t.Errorf("Round %d: expected best %d new %v, got %d %v", i+1, r.best, r.newBest, res.Best, res.NewBest)
		}
		if c.State().BestScore != r.best {
			t.Errorf("Round %d: expected state best %d, got %d", i+1, r.best, c.State().BestScore)
		}
	}
	if c.State().Round != len(rounds)+1 {
		t.Errorf("Expected round %d, got %d", len(rounds)+1, c.State().Round)
	}
}

func TestEndRoundStartsFreshRound(t *testing.T) {
	c := newTestController(DefaultConfig(), newRecorder(), nil)
	first := c.RoundID()
	c.EndRound(ReasonTimeUp)
	if c.RoundID() == first {
		t.Error("Expected a new round id")
	}
}

func TestRoundResultMessage(t *testing.T) {
	best := RoundResult{Score: 12, Best: 12, NewBest: true}
	if msg := best.Message(); !strings.Contains(msg, "Congratulations! The new best score is yours!") || !strings.Contains(msg, "Your score: 12.") {
		t.Errorf("Unexpected new-best message %q", msg)
	}

	other := RoundResult{Score: 2, Best: 12}
	want := "Game Over!\nYour score: 2.\nCurrent best: 12"
	if msg := other.Message(); msg != want {
		t.Errorf("Expected %q, got %q", want, msg)
	}
}

func TestRoundStatsAndBadges(t *testing.T) {
	clock := newFakeClock()
	rec := newRecorder()
	c := newTestController(DefaultConfig(), rec, clock)

	reactions := []time.Duration{300 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 100 * time.Millisecond, 500 * time.Millisecond}
	for i, d := range reactions {
		forceActive(c, i+1)
		clock.Advance(d)
		if outcome, _ := c.PointerDown(i + 1); outcome != OutcomeHit {
			t.Fatalf("Expected hit, got %q", outcome)
		}
	}
	clock.Advance(time.Second)
	res := c.EndRound(ReasonTimeUp)

	if res.Stats.Hits != 5 || res.Stats.Misses != 0 {
		t.Errorf("Expected 5 hits and no misses, got %+v", res.Stats)
	}
	if res.Stats.AvgReactionMs != 300 {
		t.Errorf("Expected avg reaction 300, got %f", res.Stats.AvgReactionMs)
	}
	if res.Stats.BestReactionMs != 100 {
		t.Errorf("Expected best reaction 100, got %d", res.Stats.BestReactionMs)
	}
	if res.Stats.Duration != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s round, got %v", res.Stats.Duration)
	}

	got := map[analytics.BadgeID]bool{}
	for _, b := range res.Badges {
		got[b.ID] = true
	}
	for _, id := range []analytics.BadgeID{analytics.BadgeQuickDraw, analytics.BadgeFlawless, analytics.BadgeSurvivor} {
		if !got[id] {
			t.Errorf("Expected badge %s", id)
		}
	}
	if got[analytics.BadgeSharpshooter] {
		t.Error("Did not expect sharpshooter with 5 hits")
	}
}

func TestControllerPublishesEvents(t *testing.T) {
	bus := events.NewBus()
	c := New(DefaultConfig(), Deps{Events: bus})
	forceActive(c, 6)

	c.PointerDown(6)
	c.PointerDown(2)
	c.EndRound(ReasonTimeUp)

	hit := <-bus.Clicks
	if !hit.Hit || hit.CellID != 6 {
		t.Errorf("Expected hit on 6, got %+v", hit)
	}
	miss := <-bus.Clicks
	if miss.Hit || miss.CellID != 2 {
		t.Errorf("Expected miss on 2, got %+v", miss)
	}
	if hit.RoundID == "" || hit.RoundID != miss.RoundID {
		t.Errorf("Expected both clicks in one round, got %q and %q", hit.RoundID, miss.RoundID)
	}

	round := <-bus.Rounds
	if round.RoundID != hit.RoundID {
		t.Errorf("Expected round %q, got %q", hit.RoundID, round.RoundID)
	}
	if round.Score != 1 || round.Hits != 1 || round.Misses != 1 || round.Reason != string(ReasonTimeUp) {
		t.Errorf("Unexpected round event %+v", round)
	}
}

func TestScoreNeverDecreasesWithinRound(t *testing.T) {
	c := newTestController(DefaultConfig(), newRecorder(), nil)
	c.state.Lives = 1000

	prev := 0
	for i := 0; i < 200; i++ {
		c.Rotate()
		c.PointerDown(i%9 + 1)
		if s := c.State().Score; s < prev {
			t.Fatalf("Score dropped from %d to %d", prev, s)
		} else {
			prev = s
		}
	}
}
