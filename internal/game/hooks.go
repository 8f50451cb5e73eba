package game

import (
	"math/rand/v2"
	"time"

	"whackamole/internal/events"
)

// View is the display surface the controller renders to. Calls arrive on
// the controller's loop goroutine.
type View interface {
	ShowTimer(seconds int)
	ShowScore(score int)
	ShowLives(lives int)
	// ShowActive marks cell id as the enemy and unmarks every other cell;
	// targets.None clears the mark.
	ShowActive(id int)
}

// Notifier surfaces the round-end notice. It must not block.
type Notifier interface {
	Notify(result RoundResult)
}

// Sound plays the hit effect. Errors are logged and otherwise ignored.
type Sound interface {
	PlayHit() error
}

// Deps are the controller's collaborators. Nil members fall back to no-ops,
// the process clock and a time-seeded random source.
type Deps struct {
	View     View
	Notifier Notifier
	Sound    Sound
	Events   *events.Bus
	Rand     *rand.Rand
	Now      func() time.Time
}

type nopView struct{}

func (nopView) ShowTimer(int)  {}
func (nopView) ShowScore(int)  {}
func (nopView) ShowLives(int)  {}
func (nopView) ShowActive(int) {}

type nopNotifier struct{}

func (nopNotifier) Notify(RoundResult) {}

type nopSound struct{}

func (nopSound) PlayHit() error { return nil }

func (d Deps) withDefaults() Deps {
	if d.View == nil {
		d.View = nopView{}
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Sound == nil {
		d.Sound = nopSound{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		seed := uint64(d.Now().UnixNano())
		d.Rand = rand.New(rand.NewPCG(seed, seed>>32|1))
	}
	return d
}
