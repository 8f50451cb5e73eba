// Package history turns a session's event bus into metrics and persisted
// round history.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"whackamole/internal/db"
	"whackamole/internal/events"
	"whackamole/internal/metrics"
)

const (
	flushInterval = 500 * time.Millisecond
	batchSize     = 50
	clickBuffer   = 1000
)

// Recorder consumes event buses. DB and Metrics are both optional.
type Recorder struct {
	DB      *db.DB
	Metrics *metrics.Metrics

	clicks chan db.ClickEvent
}

func NewRecorder(database *db.DB, m *metrics.Metrics) *Recorder {
	return &Recorder{
		DB:      database,
		Metrics: m,
		clicks:  make(chan db.ClickEvent, clickBuffer),
	}
}

// Watch drains bus until ctx is cancelled. Rounds are written immediately,
// clicks are handed to the batch writer started by Run.
func (r *Recorder) Watch(ctx context.Context, sessionCode string, bus *events.Bus) {
	for {
		select {
		case <-ctx.Done():
			r.drain(sessionCode, bus)
			return
		case ev := <-bus.Clicks:
			r.click(sessionCode, ev)
		case ev := <-bus.Rounds:
			r.round(sessionCode, ev)
		}
	}
}

// drain handles whatever the controller published before it stopped.
func (r *Recorder) drain(sessionCode string, bus *events.Bus) {
	for {
		select {
		case ev := <-bus.Clicks:
			r.click(sessionCode, ev)
		case ev := <-bus.Rounds:
			r.round(sessionCode, ev)
		default:
			return
		}
	}
}

func (r *Recorder) click(sessionCode string, ev events.ClickEvent) {
	r.Metrics.ObserveClick(ev.Hit)
	if r.DB == nil {
		return
	}
	rec := db.ClickEvent{
		RoundID:     ev.RoundID,
		SessionCode: sessionCode,
		CellID:      ev.CellID,
		Hit:         ev.Hit,
		ReactionMs:  ev.ReactionMs,
		ClickedAt:   ev.At,
	}
	select {
	case r.clicks <- rec:
	default:
		log.Warn().Str("component", "history").Str("session", sessionCode).Msg("click buffer full, dropping event")
	}
}

func (r *Recorder) round(sessionCode string, ev events.RoundEvent) {
	r.Metrics.ObserveRound(ev.Reason)
	if r.DB == nil {
		return
	}
	err := r.DB.RecordRound(db.RoundRecord{
		ID:          ev.RoundID,
		SessionCode: sessionCode,
		Round:       ev.Round,
		Score:       ev.Score,
		Hits:        ev.Hits,
		Misses:      ev.Misses,
		EndReason:   ev.Reason,
		StartedAt:   ev.StartedAt,
		EndedAt:     ev.EndedAt,
	})
	if err != nil {
		log.Error().Err(err).Str("component", "history").Str("round", ev.RoundID).Msg("RecordRound failed")
	}
}

// Run is the click batch writer. It flushes every flushInterval or once
// batchSize clicks are pending, and flushes what is left when ctx ends.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]db.ClickEvent, 0, batchSize)
	flush := func() {
		if len(batch) == 0 || r.DB == nil {
			batch = batch[:0]
			return
		}
		if err := r.DB.BatchRecordClicks(batch); err != nil {
			log.Error().Err(err).Str("component", "history").Int("clicks", len(batch)).Msg("BatchRecordClicks failed")
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for len(r.clicks) > 0 {
				batch = append(batch, <-r.clicks)
			}
			flush()
			return
		case ev := <-r.clicks:
			batch = append(batch, ev)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
