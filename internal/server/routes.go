package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"whackamole/internal/config"
	"whackamole/internal/db"
	"whackamole/internal/history"
	"whackamole/internal/metrics"
	"whackamole/internal/sessions"
)

const shutdownTimeout = 10 * time.Second

// Run builds the web frontend from the environment and serves it until
// SIGINT or SIGTERM.
func Run() error {
	appCfg := config.Load()
	config.SetupLogging(appCfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Optional database connection
	var database *db.DB
	if appCfg.DatabaseURL != "" {
		conn, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Str("component", "db").Msg("failed to connect, running without database")
		} else if err := conn.Migrate(); err != nil {
			log.Warn().Err(err).Str("component", "db").Msg("migration failed, running without database")
			conn.Close()
		} else {
			database = conn
			defer database.Close()
			log.Info().Str("component", "db").Str("dialect", string(database.Dialect())).Msg("database connected and migrations applied")
		}
	} else {
		log.Info().Str("component", "db").Msg("DATABASE_URL not set, running without database")
	}

	recorder := history.NewRecorder(database, m)
	writerDone := make(chan struct{})
	writerCtx, stopWriter := context.WithCancel(context.Background())
	go func() {
		recorder.Run(writerCtx)
		close(writerDone)
	}()

	store := sessions.NewStore(appCfg.Game(), appCfg.SessionTTL, recorder)
	srv := New(store, database, prometheus.DefaultGatherer)

	httpSrv := &http.Server{
		Addr:              "0.0.0.0:" + appCfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", "http://localhost:"+appCfg.Port).Msg("server listening")
		errc <- httpSrv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errc:
		serveErr = err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	// Streams end when their sessions stop, so stop sessions before the
	// HTTP server waits on open handlers. Close also waits for every
	// session's history watcher, so the writer sees the last clicks.
	store.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	stopWriter()
	<-writerDone

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}
