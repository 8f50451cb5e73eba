package tui

import (
	"strings"
	"sync"
	"time"

	"whackamole/internal/game"
	"whackamole/internal/targets"
)

const noticeDuration = 4 * time.Second

// View keeps what the controller last showed so the draw loop can render it
// from its own goroutine.
type View struct {
	mu      sync.Mutex
	timer   int
	score   int
	lives   int
	active  int
	best    int
	notice  []string
	shownAt time.Time
	now     func() time.Time
}

var (
	_ game.View     = (*View)(nil)
	_ game.Notifier = (*View)(nil)
)

func NewView() *View {
	return &View{active: targets.None, now: time.Now}
}

func (v *View) ShowTimer(seconds int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.timer = seconds
}

func (v *View) ShowScore(score int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.score = score
}

func (v *View) ShowLives(lives int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lives = lives
}

func (v *View) ShowActive(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = id
}

// Notify shows the round-end banner for a few seconds. It never blocks the
// game loop.
func (v *View) Notify(res game.RoundResult) {
	lines := strings.Split(res.Message(), "\n")
	for _, b := range res.Badges {
		lines = append(lines, b.Icon+" "+b.Name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.best = res.Best
	v.notice = lines
	v.shownAt = v.now()
}

// DismissNotice hides the banner early.
func (v *View) DismissNotice() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = nil
}

type frame struct {
	timer, score, lives, active, best int
	notice                            []string
}

func (v *View) frame() frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notice != nil && v.now().Sub(v.shownAt) > noticeDuration {
		v.notice = nil
	}
	return frame{
		timer:  v.timer,
		score:  v.score,
		lives:  v.lives,
		active: v.active,
		best:   v.best,
		notice: v.notice,
	}
}
