// Command tui plays the game in a terminal with the mouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"whackamole/internal/assets"
	"whackamole/internal/audio"
	"whackamole/internal/config"
	"whackamole/internal/db"
	"whackamole/internal/events"
	"whackamole/internal/game"
	"whackamole/internal/history"
	"whackamole/internal/tui"
)

// localSession labels rounds played in the terminal in the history tables.
const localSession = "TERM"

func main() {
	appCfg := config.Load()

	mute := flag.Bool("mute", false, "disable the hit sound")
	debug := flag.Bool("debug", false, "write logs to "+logDir+"/"+logFileName)
	legacy := flag.Bool("legacy", appCfg.LegacyQuirks, "keep the legacy off-by-one rotation and countdown")
	cells := flag.Int("cells", appCfg.GridSize, "number of target cells")
	dbURL := flag.String("db", appCfg.DatabaseURL, "record round history (postgres:// or sqlite:// URL)")
	flag.Parse()

	if logFile := setupLogging(*debug); logFile != nil {
		defer logFile.Close()
	}

	cfg := appCfg.Game()
	cfg.LegacyQuirks = *legacy
	cfg.Cells = *cells

	if err := run(cfg, *mute, *dbURL); err != nil {
		fmt.Fprintf(os.Stderr, "whackamole: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg game.Config, mute bool, dbURL string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := audio.NewPlayer(assets.HitWAV())
	player.SetMuted(mute)
	if !mute {
		if err := player.Initialize(); err != nil {
			// Non-fatal, the game runs without sound
			log.Warn().Err(err).Str("component", "audio").Msg("audio initialization failed")
		}
	}
	defer player.Close()

	view := tui.NewView()
	deps := game.Deps{View: view, Notifier: view, Sound: player}

	if dbURL != "" {
		database, err := openHistory(dbURL)
		if err != nil {
			log.Warn().Err(err).Str("component", "db").Msg("running without history")
		} else {
			defer database.Close()
			bus, stopRecorder := startRecorder(database)
			defer stopRecorder()
			deps.Events = bus
		}
	}

	ctrl := game.New(cfg, deps)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.EnableMouse()
	defer func() {
		// Restore the terminal even when a panic unwinds through here.
		if r := recover(); r != nil {
			screen.Fini()
			panic(r)
		}
		screen.Fini()
	}()

	gameCtx, cancelGame := context.WithCancel(ctx)
	if err := ctrl.Start(gameCtx); err != nil {
		cancelGame()
		return err
	}
	defer func() {
		cancelGame()
		<-ctrl.Done()
	}()

	app := tui.NewApp(screen, ctrl, view, ctrl.Config().Cells)
	return app.Run(ctx)
}

func openHistory(url string) (*db.DB, error) {
	database, err := db.Connect(url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// startRecorder persists the controller's events. The returned func stops
// the watcher first so the writer flushes every drained click.
func startRecorder(database *db.DB) (*events.Bus, func()) {
	rec := history.NewRecorder(database, nil)
	bus := events.NewBus()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	runCtx, stopRun := context.WithCancel(context.Background())
	watched := make(chan struct{})
	written := make(chan struct{})
	go func() {
		defer close(watched)
		rec.Watch(watchCtx, localSession, bus)
	}()
	go func() {
		defer close(written)
		rec.Run(runCtx)
	}()

	return bus, func() {
		stopWatch()
		<-watched
		stopRun()
		<-written
	}
}
