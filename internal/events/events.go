package events

import (
	"time"

	"github.com/rs/zerolog/log"
)

const (
	clickBuffer = 64
	roundBuffer = 16
)

// ClickEvent is a resolved pointer-down on a cell.
type ClickEvent struct {
	RoundID    string
	CellID     int
	Hit        bool
	ReactionMs int // time since the cell was marked, hits only
	At         time.Time
}

// RoundEvent is emitted once per finished round.
type RoundEvent struct {
	RoundID   string
	Round     int
	Score     int
	Hits      int
	Misses    int
	Reason    string
	NewBest   bool
	StartedAt time.Time
	EndedAt   time.Time
}

type Bus struct {
	Clicks chan ClickEvent
	Rounds chan RoundEvent
}

func NewBus() *Bus {
	return &Bus{
		Clicks: make(chan ClickEvent, clickBuffer),
		Rounds: make(chan RoundEvent, roundBuffer),
	}
}

// PublishClick queues ev without blocking. It reports false when the event
// was dropped because nobody is draining the bus.
func (b *Bus) PublishClick(ev ClickEvent) bool {
	select {
	case b.Clicks <- ev:
		return true
	default:
		log.Debug().Str("round", ev.RoundID).Msg("click event dropped")
		return false
	}
}

func (b *Bus) PublishRound(ev RoundEvent) bool {
	select {
	case b.Rounds <- ev:
		return true
	default:
		log.Debug().Str("round", ev.RoundID).Msg("round event dropped")
		return false
	}
}
