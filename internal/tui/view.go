package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/appengine-ltd/clanker-quest/internal/game"
	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

const (
	gridLeft = 1
	gridTop  = 2
	cellCols = 2
)

var (
	styleText    = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBlocked = tcell.StyleDefault.Foreground(tcell.ColorDarkRed)
	styleActor   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleOther   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	stylePrompt  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// cellToScreen maps a grid cell to terminal coordinates. North (+Y) is up.
func cellToScreen(world *grid.Tilemap, c grid.Cell) (int, int) {
	return gridLeft + c.X*cellCols, gridTop + (world.Height - 1 - c.Y)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (a *App) draw() {
	s := a.screen
	s.Clear()
	w, h := s.Size()

	drawText(s, gridLeft, 0, styleTitle, "Clanker Quest")
	drawText(s, gridLeft+15, 0, styleFloor, "type a command, Enter to send, Tab to switch actor, Esc to quit")

	world := a.session.World()
	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			c := grid.Cell{X: x, Y: y}
			sx, sy := cellToScreen(world, c)
			if world.Blocked(c) {
				s.SetContent(sx, sy, '#', nil, styleBlocked)
			} else {
				s.SetContent(sx, sy, '.', nil, styleFloor)
			}
		}
	}

	active := a.session.Active()
	for _, actor := range a.session.Actors() {
		at := a.session.Layout().WorldToCell(actor.Mover.Position())
		if !world.InBounds(at) {
			continue
		}
		sx, sy := cellToScreen(world, at)
		glyph, style := actorGlyph(actor), styleOther
		if actor == active {
			glyph, style = '@', styleActor
		}
		s.SetContent(sx, sy, glyph, nil, style)
	}

	logLeft := gridLeft + world.Width*cellCols + 3
	logWidth := w - logLeft - 1
	inputRow := h - 1
	statusRow := h - 2
	if logWidth > 10 {
		lines := a.session.Messages()
		rows := statusRow - gridTop
		if len(lines) > rows {
			lines = lines[len(lines)-rows:]
		}
		for i, line := range lines {
			if len(line) > logWidth {
				line = line[:logWidth]
			}
			drawText(s, logLeft, gridTop+i, styleText, line)
		}
	}

	statusStyle := styleStatus
	if a.warn {
		statusStyle = styleWarn
	}
	drawText(s, gridLeft, statusRow, statusStyle, a.statusLine())

	x := drawText(s, gridLeft, inputRow, stylePrompt, "> ")
	drawText(s, x, inputRow, styleText, a.editor.Text())
	s.ShowCursor(x+a.editor.Cursor(), inputRow)
	s.Show()
}

func actorGlyph(actor *game.Actor) rune {
	r, _ := utf8.DecodeRuneInString(strings.ToUpper(actor.Name))
	if r == utf8.RuneError {
		return '?'
	}
	return r
}

func (a *App) statusLine() string {
	actor := a.session.Active()
	if actor == nil {
		return "no actor"
	}
	state := "idle"
	if actor.Mover.Draining() {
		state = fmt.Sprintf("moving, %d queued", actor.Mover.Pending())
	}
	line := fmt.Sprintf("%s at %s, %s", actor.Name, actor.Mover.Cell(), state)
	if a.status != "" {
		line += " | " + a.status
	}
	return line
}
