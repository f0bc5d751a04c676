//go:build cgo

// Package gui is the raylib host: an isometric (or square) view of the grid,
// the actors at their animated positions, a message log and a command line.
package gui

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/game"
	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/motion"
)

const (
	maxInputLen  = 120
	panelPadding = 16
	logWidth     = 420
	inputHeight  = 86
)

type AppConfig struct {
	Version   string
	Commit    string
	BuildDate string
}

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
	cfg     AppConfig
	session *game.Session
	logger  *zap.Logger
	reloads <-chan config.Config

	width  int32
	height int32
	quit   bool

	input    string
	history  []string
	recall   int
	status   string
	warn     bool
	lastTick time.Time
}

var (
	colorBG      = rl.NewColor(8, 12, 18, 255)
	colorPanel   = rl.NewColor(14, 24, 35, 255)
	colorBorder  = rl.NewColor(25, 200, 120, 255)
	colorText    = rl.NewColor(175, 245, 195, 255)
	colorDim     = rl.NewColor(108, 165, 124, 255)
	colorAccent  = rl.NewColor(60, 255, 145, 255)
	colorWarn    = rl.NewColor(255, 198, 96, 255)
	colorFloor   = rl.NewColor(30, 52, 44, 255)
	colorBlocked = rl.NewColor(92, 40, 36, 255)
	colorHover   = rl.NewColor(60, 255, 145, 80)
	colorActor   = rl.NewColor(255, 210, 90, 255)
	colorOther   = rl.NewColor(110, 190, 255, 255)
)

func NewApp(cfg AppConfig, session *game.Session, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		session: session,
		logger:  zap.NewNop(),
		width:   1280,
		height:  760,
	}
	for _, opt := range opts {
		opt(a)
	}
	session.SetStepListener(a.onStep)
	return a
}

func (a *App) Run() error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(a.width, a.height, "Clanker Quest "+a.cfg.Version)
	rl.SetExitKey(0)
	rl.SetTargetFPS(60)
	defaultFont := rl.GetFontDefault()
	rl.SetTextureFilter(defaultFont.Texture, rl.FilterBilinear)

	a.lastTick = time.Now()
	for !a.quit && !rl.WindowShouldClose() {
		now := time.Now()
		delta := now.Sub(a.lastTick)
		if delta < 0 {
			delta = 0
		}
		a.lastTick = now

		a.width = int32(rl.GetScreenWidth())
		a.height = int32(rl.GetScreenHeight())

		a.update(delta)

		rl.BeginDrawing()
		rl.ClearBackground(colorBG)
		a.draw()
		rl.EndDrawing()
	}

	rl.CloseWindow()
	return nil
}

func (a *App) update(delta time.Duration) {
	a.pollReload()
	a.session.Update(delta)

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.quit = true
		return
	}
	if step := cycleActorHotkey(); step != 0 {
		if actor := a.session.CycleActive(step); actor != nil {
			a.status, a.warn = "Driving "+actor.Name, false
		}
	}
	captureTextInput(&a.input, maxInputLen)
	if rl.IsKeyPressed(rl.KeyUp) && a.recall > 0 {
		a.recall--
		a.input = a.history[a.recall]
	}
	if rl.IsKeyPressed(rl.KeyDown) && a.recall < len(a.history) {
		a.recall++
		a.input = ""
		if a.recall < len(a.history) {
			a.input = a.history[a.recall]
		}
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter) {
		a.submitInput()
	}
}

func (a *App) submitInput() {
	line := strings.TrimSpace(a.input)
	a.input = ""
	if line == "" {
		a.status, a.warn = "Enter a command.", true
		return
	}
	a.history = append(a.history, line)
	a.recall = len(a.history)

	out := a.session.Submit(line)
	a.warn = !out.Resolved
	if out.Resolved {
		a.status = fmt.Sprintf("%s (%.0f%%)", out.Command, out.Percent)
	} else {
		a.status = "Not understood"
	}
}

func (a *App) pollReload() {
	if a.reloads == nil {
		return
	}
	select {
	case cfg, ok := <-a.reloads:
		if !ok {
			a.reloads = nil
			return
		}
		if err := a.session.Reload(cfg); err != nil {
			a.logger.Warn("reload rejected", zap.Error(err))
			a.status, a.warn = "Config reload rejected", true
			return
		}
		a.status, a.warn = "Config reloaded", false
	default:
	}
}

func (a *App) onStep(actor *game.Actor, ev motion.StepEvent) {
	if ev.Kind == motion.StepBlocked {
		a.status = fmt.Sprintf("%s bumped into %s", actor.Name, ev.To)
		a.warn = true
	}
}

func (a *App) draw() {
	outer := rl.NewRectangle(panelPadding, panelPadding, float32(a.width-panelPadding*2), float32(a.height-panelPadding*2))
	mapRect := rl.NewRectangle(outer.X, outer.Y, outer.Width-logWidth-panelPadding, outer.Height-inputHeight-panelPadding)
	logRect := rl.NewRectangle(mapRect.X+mapRect.Width+panelPadding, outer.Y, logWidth, mapRect.Height)
	inputRect := rl.NewRectangle(outer.X, outer.Y+outer.Height-inputHeight, outer.Width, inputHeight)

	drawPanel(mapRect, "GRID")
	drawPanel(logRect, "MESSAGES")
	drawPanel(inputRect, "COMMAND")

	a.drawMap(mapRect)
	a.drawLog(logRect)
	a.drawInput(inputRect)
}

func (a *App) drawMap(rect rl.Rectangle) {
	layout := a.session.Layout()
	world := a.session.World()
	view := fitViewport(layout, world, float64(rect.X), float64(rect.Y)+32, float64(rect.Width), float64(rect.Height)-32, 24)

	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			c := grid.Cell{X: x, Y: y}
			fill := colorFloor
			if world.Blocked(c) {
				fill = colorBlocked
			}
			drawCell(view, layout, c, fill, rl.Fade(colorBorder, 0.35))
		}
	}

	mouse := rl.GetMousePosition()
	if hover, ok := hoveredCell(view, layout, world, mouse.X, mouse.Y); ok {
		drawCell(view, layout, hover, colorHover, colorAccent)
		rl.DrawText(hover.String(), int32(rect.X)+14, int32(rect.Y+rect.Height)-28, 18, colorDim)
	}

	active := a.session.Active()
	radius := float32(view.scale * 0.18)
	for _, actor := range a.session.Actors() {
		x, y := view.toScreen(actor.Mover.Position())
		clr := colorOther
		if actor == active {
			clr = colorActor
		}
		rl.DrawCircleV(rl.NewVector2(x, y-radius), radius, clr)
		rl.DrawText(actor.Name, int32(x)-rl.MeasureText(actor.Name, 16)/2, int32(y-radius*2)-20, 16, colorText)
	}

	if active != nil {
		state := "idle"
		if active.Mover.Draining() {
			state = fmt.Sprintf("moving, %d queued", active.Mover.Pending())
		}
		rl.DrawText(fmt.Sprintf("%s at %s, %s", active.Name, active.Mover.Cell(), state), int32(rect.X)+120, int32(rect.Y)+8, 18, colorText)
	}
}

func (a *App) drawLog(rect rl.Rectangle) {
	const size, lineH = 18, 23
	var lines []string
	for _, msg := range a.session.Messages() {
		lines = append(lines, wrapText(msg, size, int32(rect.Width)-28)...)
	}
	maxLines := int((rect.Height - 50) / lineH)
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	drawLines(rect, 38, size, lines, colorText)
}

func (a *App) drawInput(rect rl.Rectangle) {
	rl.DrawText("Try: go east 3 then north quickly | goto 4 5 | walk wobbly west | where am i | help   Tab switch actor  Esc quit", int32(rect.X)+14, int32(rect.Y)+34, 17, colorDim)
	if a.input == "" {
		rl.DrawText("> ", int32(rect.X)+14, int32(rect.Y)+56, 24, colorText)
	} else {
		rl.DrawText("> "+a.input+"_", int32(rect.X)+14, int32(rect.Y)+56, 24, colorAccent)
	}
	if strings.TrimSpace(a.status) != "" {
		clr := colorDim
		if a.warn {
			clr = colorWarn
		}
		rl.DrawText(a.status, int32(rect.X+rect.Width*0.55), int32(rect.Y)+56, 20, clr)
	}
}

func drawCell(view viewport, layout grid.Layout, c grid.Cell, fill, edge rl.Color) {
	var pts [4]rl.Vector2
	for i, p := range cellOutline(layout, c) {
		x, y := view.toScreen(p)
		pts[i] = rl.NewVector2(x, y)
	}
	// Winding flips with the projection; draw both so one survives culling.
	rl.DrawTriangle(pts[0], pts[1], pts[2], fill)
	rl.DrawTriangle(pts[0], pts[2], pts[1], fill)
	rl.DrawTriangle(pts[0], pts[2], pts[3], fill)
	rl.DrawTriangle(pts[0], pts[3], pts[2], fill)
	for i := range pts {
		rl.DrawLineEx(pts[i], pts[(i+1)%len(pts)], 1, edge)
	}
}

func drawPanel(rect rl.Rectangle, title string) {
	rl.DrawRectangleRounded(rect, 0.04, 8, colorPanel)
	rl.DrawRectangleRoundedLinesEx(rect, 0.04, 8, 2, colorBorder)
	rl.DrawText(title, int32(rect.X)+12, int32(rect.Y)+8, 20, colorAccent)
}

func drawLines(rect rl.Rectangle, y int32, size int32, lines []string, clr rl.Color) {
	for i, line := range lines {
		rl.DrawText(line, int32(rect.X)+14, int32(rect.Y)+y+int32(i)*(size+5), size, clr)
	}
}

func wrapText(text string, size int32, maxWidth int32) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 8)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if rl.MeasureText(candidate, size) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return lines
}

func captureTextInput(target *string, maxLen int) {
	for ch := rl.GetCharPressed(); ch > 0; ch = rl.GetCharPressed() {
		if ch >= 32 && ch <= 126 && len(*target) < maxLen {
			*target += string(rune(ch))
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(*target) > 0 {
		*target = (*target)[:len(*target)-1]
	}
}
