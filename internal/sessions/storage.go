package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"whackamole/internal/broadcast"
	"whackamole/internal/events"
	"whackamole/internal/game"
	"whackamole/internal/history"
	"whackamole/internal/wshub"
)

const (
	DefaultTTL       = 1 * time.Hour
	maxSweepInterval = 5 * time.Minute
)

var ErrStoreClosed = errors.New("session store closed")

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      game.Config
	ttl      time.Duration
	recorder *history.Recorder
	closed   bool
	stop     chan struct{}
	now      func() time.Time
}

// NewStore starts the idle sweeper. rec may be nil, in which case no
// history or metrics are recorded.
func NewStore(cfg game.Config, ttl time.Duration, rec *history.Recorder) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		ttl:      ttl,
		recorder: rec,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go s.sweepStale()
	return s
}

func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating session code: %w", err)
		}
		if _, exists := s.sessions[code]; exists {
			continue
		}

		sess, err := s.start(code)
		if err != nil {
			return nil, err
		}
		s.sessions[code] = sess
		return sess, nil
	}
	return nil, fmt.Errorf("failed to generate unique session code after 10 attempts")
}

func (s *Store) start(code string) (*Session, error) {
	b := broadcast.NewBroadcaster()
	hub := wshub.NewHub()
	view := &pushView{b: b, hub: hub}

	var bus *events.Bus
	if s.recorder != nil {
		bus = events.NewBus()
	}

	ctrl := game.New(s.cfg, game.Deps{
		View:     view,
		Notifier: view,
		Sound:    view,
		Events:   bus,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := ctrl.Start(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("starting game loop: %w", err)
	}
	var watched chan struct{}
	if s.recorder != nil {
		watched = make(chan struct{})
		go func() {
			defer close(watched)
			s.recorder.Watch(ctx, code, bus)
		}()
		s.recorder.Metrics.SessionStarted()
	}

	now := s.now()
	sess := &Session{
		Code:        code,
		Game:        ctrl,
		Broadcaster: b,
		Hub:         hub,
		Events:      bus,
		CreatedAt:   now,
		cancel:      cancel,
		watched:     watched,
	}
	sess.Touch(now)
	log.Info().Str("component", "sessions").Str("session", code).Msg("session started")
	return sess, nil
}

func (s *Store) Get(code string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[code]
}

// Delete removes the session and stops its game loop.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	sess, ok := s.sessions[code]
	delete(s.sessions, code)
	s.mu.Unlock()

	if ok {
		s.stopSession(sess)
	}
}

func (s *Store) stopSession(sess *Session) {
	sess.Stop()
	if s.recorder != nil {
		s.recorder.Metrics.SessionEnded()
	}
	log.Info().Str("component", "sessions").Str("session", sess.Code).Msg("session stopped")
}

func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	return list
}

// Close stops the sweeper and every session. When it returns every
// session's events have reached the recorder, so the batch writer can be
// stopped. The store accepts no new sessions afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		s.stopSession(sess)
	}
}

func (s *Store) sweepStale() {
	interval := s.ttl / 4
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(s.now())
		}
	}
}

// sweep stops sessions idle for longer than the TTL and reports how many
// it removed.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	var stale []*Session
	for code, sess := range s.sessions {
		if now.Sub(sess.LastSeen()) > s.ttl {
			stale = append(stale, sess)
			delete(s.sessions, code)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.stopSession(sess)
	}
	return len(stale)
}
