package sessions

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"whackamole/internal/broadcast"
	"whackamole/internal/game"
	"whackamole/internal/wshub"
)

// pushView renders the game to every browser watching a session. Each
// update goes out as one JSON frame on both the SSE streams and the
// WebSocket clients. The browser plays the hit sound itself.
type pushView struct {
	b   *broadcast.Broadcaster
	hub *wshub.Hub
}

var (
	_ game.View     = (*pushView)(nil)
	_ game.Notifier = (*pushView)(nil)
	_ game.Sound    = (*pushView)(nil)
)

func (v *pushView) push(msg wshub.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("component", "sessions").Msg("marshal error")
		return
	}
	v.b.Broadcast(msg.Type, string(data))
	v.hub.BroadcastRaw(data)
}

func (v *pushView) ShowTimer(seconds int) {
	v.push(wshub.ServerMessage{Type: wshub.TypeTimer, Value: seconds})
}

func (v *pushView) ShowScore(score int) {
	v.push(wshub.ServerMessage{Type: wshub.TypeScore, Value: score})
}

func (v *pushView) ShowLives(lives int) {
	v.push(wshub.ServerMessage{Type: wshub.TypeLives, Value: lives})
}

func (v *pushView) ShowActive(id int) {
	v.push(wshub.ServerMessage{Type: wshub.TypeActive, Value: id, Cell: id})
}

func (v *pushView) Notify(res game.RoundResult) {
	v.push(wshub.ServerMessage{
		Type:    wshub.TypeNotice,
		Value:   res.Score,
		Text:    res.Message(),
		Best:    res.Best,
		NewBest: res.NewBest,
		Badges:  res.Badges,
	})
}

func (v *pushView) PlayHit() error {
	v.push(wshub.ServerMessage{Type: wshub.TypeHit})
	return nil
}
