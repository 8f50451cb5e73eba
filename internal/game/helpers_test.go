package game

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// recorder captures everything the controller shows, notifies and plays.
type recorder struct {
	mu       sync.Mutex
	timers   []int
	scores   []int
	lives    []int
	actives  []int
	results  []RoundResult
	hits     int
	soundErr error
	notified chan RoundResult
}

func newRecorder() *recorder {
	return &recorder{notified: make(chan RoundResult, 64)}
}

func (r *recorder) ShowTimer(s int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, s)
}

func (r *recorder) ShowScore(s int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, s)
}

func (r *recorder) ShowLives(l int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lives = append(r.lives, l)
}

func (r *recorder) ShowActive(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actives = append(r.actives, id)
}

func (r *recorder) Notify(res RoundResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
	select {
	case r.notified <- res:
	default:
	}
}

func (r *recorder) PlayHit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
	return r.soundErr
}

func (r *recorder) lastActive() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actives) == 0 {
		return -1
	}
	return r.actives[len(r.actives)-1]
}

func (r *recorder) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actives)
}

func (r *recorder) hitSounds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

var errNoSpeaker = errors.New("no speaker")

func newTestController(cfg Config, rec *recorder, clock *fakeClock) *Controller {
	deps := Deps{
		View:     rec,
		Notifier: rec,
		Sound:    rec,
		Rand:     rand.New(rand.NewPCG(7, 11)),
	}
	if clock != nil {
		deps.Now = clock.Now
	}
	return New(cfg, deps)
}

// forceActive marks id the way a rotation would.
func forceActive(c *Controller, id int) {
	c.board.Clear()
	if err := c.board.Activate(id); err != nil {
		panic(err)
	}
	c.state.ActiveTarget = id
	c.round.activatedAt = c.deps.Now()
	c.deps.View.ShowActive(id)
}
