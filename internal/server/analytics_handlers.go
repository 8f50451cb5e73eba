package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"whackamole/internal/analytics"
	"whackamole/internal/sessions"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics requires a database connection")
		return
	}

	summary, err := analytics.NewQueries(s.DB).Summary()
	if err != nil {
		log.Error().Err(err).Str("component", "analytics").Msg("summary")
		writeError(w, http.StatusInternalServerError, "error loading analytics")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSessionAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "analytics requires a database connection")
		return
	}

	code, ok := sessions.NormalizeCode(chi.URLParam(r, "code"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session code")
		return
	}

	summary, err := analytics.NewQueries(s.DB).SessionSummary(code)
	if err != nil {
		log.Error().Err(err).Str("component", "analytics").Str("session", code).Msg("session summary")
		writeError(w, http.StatusInternalServerError, "error loading analytics")
		return
	}
	if summary.Rounds == 0 {
		writeError(w, http.StatusNotFound, "no rounds recorded for "+code)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
