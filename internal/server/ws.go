package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"whackamole/internal/game"
	"whackamole/internal/targets"
	"whackamole/internal/wshub"
)

// handleWebSocket upgrades to a WebSocket that receives the same frames as
// the SSE stream and accepts pointer-downs as {"t":"down","id":N}.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(r)
	if sess == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("component", "ws").Msg("accept failed")
		return
	}
	defer conn.CloseNow()

	client := wshub.NewClient(conn)
	sess.Hub.Register(client)
	defer sess.Hub.Unregister(client.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		client.WritePump(ctx)
		// The send channel closes when the session stops.
		cancel()
	}()

	log.Debug().Str("component", "ws").Str("session", sess.Code).Str("client", client.ID).Msg("connected")

	for {
		var msg wshub.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Str("component", "ws").Str("client", client.ID).Msg("read ended")
			}
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		sess.Touch(time.Now())

		switch msg.Type {
		case wshub.TypeDown:
			outcome, err := sess.Game.Press(ctx, msg.Cell)
			if errors.Is(err, game.ErrNotRunning) {
				// The session stopped and its hub is closed.
				conn.Close(websocket.StatusGoingAway, "game over")
				return
			}
			if err != nil {
				code := 0
				if errors.Is(err, targets.ErrNoSuchCell) {
					code = http.StatusBadRequest
				}
				sess.Hub.Reply(client.ID, wshub.ServerMessage{Type: wshub.TypeError, Value: code, Cell: msg.Cell, Text: err.Error()})
				continue
			}
			sess.Hub.Reply(client.ID, wshub.ServerMessage{Type: wshub.TypeResult, Cell: msg.Cell, Text: string(outcome)})
		case wshub.TypePing:
			sess.Hub.Reply(client.ID, wshub.ServerMessage{Type: wshub.TypePong})
		default:
			sess.Hub.Reply(client.ID, wshub.ServerMessage{Type: wshub.TypeError, Text: "unknown message type " + msg.Type})
		}
	}
}
