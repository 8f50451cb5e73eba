package sessions

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"whackamole/internal/broadcast"
	"whackamole/internal/events"
	"whackamole/internal/game"
	"whackamole/internal/wshub"
)

// Session is one browser game: a running controller and the fan-out that
// renders it.
type Session struct {
	Code        string
	Game        *game.Controller
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	Events      *events.Bus // nil when nothing records history
	CreatedAt   time.Time

	lastSeen atomic.Int64
	cancel   context.CancelFunc
	watched  chan struct{} // closed when the history watcher has drained; nil without one
	stopOnce sync.Once
}

// Touch marks the session as in use at t.
func (s *Session) Touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Stop ends the game loop and disconnects every stream. It blocks until the
// loop has exited and the history watcher has handed off the session's last
// events. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.Game.Done()
		if s.watched != nil {
			<-s.watched
		}
		s.Broadcaster.Close()
		s.Hub.Close()
	})
}

// Done is closed once the game loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.Game.Done()
}
