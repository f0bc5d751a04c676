package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

const (
	maxLineLen  = 120
	historySize = 32
)

// lineEditor is a single-line input with cursor movement and a short
// history of submitted lines.
type lineEditor struct {
	buf     []rune
	cursor  int
	history []string
	recall  int
}

func (e *lineEditor) Text() string {
	return string(e.buf)
}

func (e *lineEditor) Cursor() int {
	return e.cursor
}

// HandleKey applies ev. It returns the trimmed line and true on Enter with
// non-empty input.
func (e *lineEditor) HandleKey(ev *tcell.EventKey) (string, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		if len(e.buf) < maxLineLen {
			e.buf = append(e.buf[:e.cursor], append([]rune{ev.Rune()}, e.buf[e.cursor:]...)...)
			e.cursor++
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.cursor > 0 {
			e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
			e.cursor--
		}
	case tcell.KeyDelete:
		if e.cursor < len(e.buf) {
			e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
		}
	case tcell.KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
	case tcell.KeyRight:
		if e.cursor < len(e.buf) {
			e.cursor++
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		e.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		e.cursor = len(e.buf)
	case tcell.KeyCtrlU:
		e.set("")
	case tcell.KeyUp:
		if e.recall > 0 {
			e.recall--
			e.set(e.history[e.recall])
		}
	case tcell.KeyDown:
		switch {
		case e.recall < len(e.history)-1:
			e.recall++
			e.set(e.history[e.recall])
		case e.recall == len(e.history)-1:
			e.recall = len(e.history)
			e.set("")
		}
	case tcell.KeyEnter:
		line := strings.TrimSpace(string(e.buf))
		e.set("")
		if line == "" {
			return "", false
		}
		e.remember(line)
		return line, true
	}
	return "", false
}

func (e *lineEditor) set(text string) {
	e.buf = []rune(text)
	e.cursor = len(e.buf)
}

func (e *lineEditor) remember(line string) {
	if n := len(e.history); n == 0 || e.history[n-1] != line {
		e.history = append(e.history, line)
	}
	if over := len(e.history) - historySize; over > 0 {
		e.history = e.history[over:]
	}
	e.recall = len(e.history)
}
