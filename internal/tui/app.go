// Package tui is the terminal host: it draws the grid with tcell, reads a
// command line from the keyboard and drives the session once per frame.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/game"
	"github.com/appengine-ltd/clanker-quest/internal/motion"
)

const (
	frameInterval = 16 * time.Millisecond
	lineQueueSize = 16
)

type Option func(*App)

func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithReloads applies configs received on ch to the session's catalog.
func WithReloads(ch <-chan config.Config) Option {
	return func(a *App) {
		a.reloads = ch
	}
}

type App struct {
	screen  tcell.Screen
	session *game.Session
	logger  *zap.Logger
	reloads <-chan config.Config

	editor lineEditor
	lines  *lineQueue
	status string
	warn   bool
}

// New binds an initialised screen to session. The caller owns the screen and
// must call Fini on it.
func New(screen tcell.Screen, session *game.Session, opts ...Option) *App {
	a := &App{
		screen:  screen,
		session: session,
		logger:  zap.NewNop(),
		lines:   newLineQueue(lineQueueSize),
	}
	for _, opt := range opts {
		opt(a)
	}
	session.SetStepListener(a.onStep)
	return a
}

// Run draws and updates at a fixed frame rate until ctx is done or the
// player quits.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	last := time.Now()
	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil
			}
		case cfg, ok := <-a.reloads:
			if !ok {
				a.reloads = nil
				continue
			}
			a.reload(cfg)
		case now := <-ticker.C:
			a.frame(now.Sub(last))
			last = now
		}
	}
}

// handleEvent returns false when the player asked to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		switch ev.Key() {
		case tcell.KeyTab:
			a.cycleActor(1)
			return true
		case tcell.KeyBacktab:
			a.cycleActor(-1)
			return true
		}
		if line, ok := a.editor.HandleKey(ev); ok {
			if !a.lines.Push(line) {
				a.logger.Warn("input dropped, queue full", zap.String("line", line))
			}
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// frame advances the session by dt, submits queued lines and redraws.
func (a *App) frame(dt time.Duration) {
	a.session.Update(dt)
	for {
		line, ok := a.lines.Pop()
		if !ok {
			break
		}
		out := a.session.Submit(line)
		a.warn = !out.Resolved
		if out.Resolved {
			a.status = fmt.Sprintf("%q -> %s (%.0f%%)", line, out.Command, out.Percent)
		} else {
			a.status = fmt.Sprintf("%q not understood", line)
		}
	}
	a.draw()
}

func (a *App) cycleActor(step int) {
	if actor := a.session.CycleActive(step); actor != nil {
		a.status, a.warn = "driving "+actor.Name, false
	}
}

func (a *App) reload(cfg config.Config) {
	if err := a.session.Reload(cfg); err != nil {
		a.logger.Warn("reload rejected", zap.Error(err))
		a.status, a.warn = "config reload rejected", true
		return
	}
	a.status, a.warn = "config reloaded", false
}

func (a *App) onStep(actor *game.Actor, ev motion.StepEvent) {
	if ev.Kind == motion.StepBlocked {
		a.status = fmt.Sprintf("%s bumped into %s", actor.Name, ev.To)
		a.warn = true
	}
}
