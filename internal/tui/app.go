// Package tui is the terminal frontend: a tcell grid the player clicks with
// the mouse.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"whackamole/internal/game"
	"whackamole/internal/targets"
)

const frameInterval = 33 * time.Millisecond // ~30 FPS

var (
	styleDefault = tcell.StyleDefault
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBox     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorOrange).Background(tcell.ColorDarkRed)
	styleBanner  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

// Presser is the part of the controller the app drives.
type Presser interface {
	Press(ctx context.Context, id int) (game.Outcome, error)
}

type App struct {
	screen tcell.Screen
	game   Presser
	view   *View
	cells  int
	layout Layout

	lastButtons tcell.ButtonMask
}

func NewApp(screen tcell.Screen, g Presser, view *View, cells int) *App {
	a := &App{screen: screen, game: g, view: view, cells: cells}
	a.relayout()
	return a
}

func (a *App) relayout() {
	w, h := a.screen.Size()
	a.layout = NewLayout(a.cells, w, h)
}

// Run draws and handles input until the player quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			if !a.handleEvent(ctx, ev) {
				return nil
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

// handleEvent reports false when the player asked to quit.
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return false
		case ev.Key() == tcell.KeyEnter, ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			a.view.DismissNotice()
		}

	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && a.lastButtons&tcell.Button1 == 0
		a.lastButtons = buttons
		if !pressed {
			return true
		}
		x, y := ev.Position()
		id := a.layout.CellAt(x, y)
		if id == targets.None {
			return true
		}
		if _, err := a.game.Press(ctx, id); err != nil {
			if errors.Is(err, game.ErrNotRunning) {
				return false
			}
			log.Debug().Err(err).Int("cell", id).Msg("press failed")
		}
		a.draw()

	case *tcell.EventResize:
		a.relayout()
		a.screen.Sync()
	}
	return true
}

func (a *App) draw() {
	f := a.view.frame()
	a.screen.Clear()
	w, _ := a.screen.Size()

	status := fmt.Sprintf("Time %3d   Score %3d   Lives %d   Best %3d", f.timer, f.score, f.lives, f.best)
	a.drawText(0, 0, status, styleStatus)

	for id := 1; id <= a.cells; id++ {
		b, _ := a.layout.box(id)
		a.drawBox(b, id == f.active)
	}

	y := a.layout.bottom()
	for i, line := range f.notice {
		a.drawText(0, y+i, line, styleBanner)
	}
	if f.notice == nil {
		hint := "click the marked cell · q quits"
		if len(hint) < w {
			a.drawText(0, y, hint, styleHint)
		}
	}

	a.screen.Show()
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (a *App) drawBox(b rect, active bool) {
	style := styleBox
	if active {
		style = styleActive
	}
	right, bottom := b.x+b.w-1, b.y+b.h-1
	for x := b.x; x <= right; x++ {
		for y := b.y; y <= bottom; y++ {
			r := ' '
			switch {
			case (x == b.x || x == right) && (y == b.y || y == bottom):
				r = '+'
			case y == b.y || y == bottom:
				r = '-'
			case x == b.x || x == right:
				r = '|'
			case active:
				r = '█'
			}
			st := style
			if !active && r == ' ' {
				st = styleDefault
			}
			a.screen.SetContent(x, y, r, nil, st)
		}
	}
}
