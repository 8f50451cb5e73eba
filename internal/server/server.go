package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"whackamole/internal/assets"
	"whackamole/internal/db"
	"whackamole/internal/sessions"
)

const sessionCookie = "session_code"

type Server struct {
	Sessions *sessions.Store
	Tmpl     *template.Template
	DB       *db.DB // nil if no database configured

	gatherer prometheus.Gatherer
	router   *chi.Mux
}

// New wires the routes. database may be nil; gatherer backs /metrics.
func New(store *sessions.Store, database *db.DB, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		Sessions: store,
		Tmpl:     assets.Templates(),
		DB:       database,
		gatherer: gatherer,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(assets.Static())))

	r.Route("/play", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleResume)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", s.handlePlay)
			r.Get("/state", s.handleState)
			r.Post("/cells/{id}", s.handlePointerDown)
			r.Get("/events", s.handleEvents)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/", s.handleAnalytics)
		r.Get("/{code}", s.handleSessionAnalytics)
	})
}

// requestLogger logs one line per request. Streaming endpoints log when
// the stream ends.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("component", "http").
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
