package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"whackamole/internal/game"
	"whackamole/internal/sessions"
	"whackamole/internal/targets"
)

type playPage struct {
	Code    string
	State   game.State
	Cells   []targets.Target
	Columns int
}

type pressResponse struct {
	Outcome game.Outcome `json:"outcome"`
	State   game.State   `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("component", "http").Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// sessionFromPath resolves {code} and marks the session as in use.
func (s *Server) sessionFromPath(r *http.Request) *sessions.Session {
	code, ok := sessions.NormalizeCode(chi.URLParam(r, "code"))
	if !ok {
		return nil
	}
	sess := s.Sessions.Get(code)
	if sess != nil {
		sess.Touch(time.Now())
	}
	return sess
}

func setSessionCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    code,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) renderHome(w http.ResponseWriter, data map[string]string) {
	if err := s.Tmpl.ExecuteTemplate(w, "home", data); err != nil {
		log.Error().Err(err).Str("component", "http").Msg("rendering home")
		http.Error(w, "Error rendering home page", http.StatusInternalServerError)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	// A returning player goes straight back to their game.
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess := s.Sessions.Get(c.Value); sess != nil {
			http.Redirect(w, r, "/play/"+sess.Code, http.StatusSeeOther)
			return
		}
	}
	s.renderHome(w, nil)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Create()
	if err != nil {
		log.Error().Err(err).Str("component", "http").Msg("creating session")
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, sess.Code)
	http.Redirect(w, r, "/play/"+sess.Code, http.StatusSeeOther)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	code, ok := sessions.NormalizeCode(r.URL.Query().Get("code"))
	if !ok || s.Sessions.Get(code) == nil {
		s.renderHome(w, map[string]string{"Error": "Game not found"})
		return
	}
	setSessionCookie(w, code)
	http.Redirect(w, r, "/play/"+code, http.StatusSeeOther)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(r)
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	st, err := sess.Game.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "Game is not running", http.StatusServiceUnavailable)
		return
	}

	n := sess.Game.Config().Cells
	page := playPage{
		Code:    sess.Code,
		State:   st,
		Cells:   make([]targets.Target, n),
		Columns: int(math.Ceil(math.Sqrt(float64(n)))),
	}
	for i := range page.Cells {
		id := i + 1
		page.Cells[i] = targets.Target{ID: id, Active: id == st.ActiveTarget}
	}

	setSessionCookie(w, sess.Code)
	if err := s.Tmpl.ExecuteTemplate(w, "play", page); err != nil {
		log.Error().Err(err).Str("component", "http").Msg("rendering play")
		http.Error(w, "Error rendering game view", http.StatusInternalServerError)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(r)
	if sess == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	st, err := sess.Game.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePointerDown(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(r)
	if sess == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cell id")
		return
	}

	outcome, err := sess.Game.Press(r.Context(), id)
	if err != nil {
		writePressError(w, err)
		return
	}
	st, err := sess.Game.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pressResponse{Outcome: outcome, State: st})
}

func writePressError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, targets.ErrNoSuchCell):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNotRunning):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(r)
	if sess == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	msgChan := sess.Broadcaster.Subscribe()
	defer sess.Broadcaster.Unsubscribe(msgChan)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				// session stopped
				return
			}
			sess.Touch(time.Now())
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Data, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Sessions: len(s.Sessions.List())}
	if s.DB != nil {
		resp.Database = string(s.DB.Dialect())
		if err := s.DB.Ping(); err != nil {
			resp.Status = "db_error"
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
