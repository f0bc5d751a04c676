package command

import (
	"sort"
	"strconv"
	"strings"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

const (
	HandlerMove  parser.HandlerKind = "move"
	HandlerWhere parser.HandlerKind = "where"
	HandlerHelp  parser.HandlerKind = "help"
)

const (
	maxRepeat  = 999
	gotoWindow = 4
)

var (
	fastWords   = wordSet("quick", "quickly", "fast", "speedy", "rapid")
	slowWords   = wordSet("slow", "slowly", "careful", "cautious")
	jitterWords = wordSet("drunk", "wobbly", "tipsy", "chaotic")
	fillerWords = wordSet("then", "and", "next", "after")
	gotoWords   = wordSet("goto", "to")
)

const noDirection = "Which way? Try a direction like east 3, or goto x y."

var coordPunct = strings.NewReplacer(",", " ", "(", " ", ")", " ")

// Vocabulary lists the words the move handler understands besides
// directions, each group sorted.
type Vocabulary struct {
	Fast   []string
	Slow   []string
	Jitter []string
	Filler []string
	Goto   []string
}

func MoveVocabulary() Vocabulary {
	return Vocabulary{
		Fast:   sortedWords(fastWords),
		Slow:   sortedWords(slowWords),
		Jitter: sortedWords(jitterWords),
		Filler: sortedWords(fillerWords),
		Goto:   sortedWords(gotoWords),
	}
}

func sortedWords(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func wordSet(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

// Move reads speed and jitter modifiers, direction words with optional repeat
// counts, and goto coordinates in a single pass. Goto requests are emitted as
// soon as they are read; relative steps follow as one batch.
func Move(e *Execution) []Request {
	speeds := e.Env.Speeds
	speed := speeds.Normal
	jitter := false

	var out []Request
	var steps []Step
	tokens := e.Tokens
	for i := 0; i < len(tokens); i++ {
		w := strings.ToLower(tokens[i])
		switch {
		case fastWords[w]:
			speed = speeds.Fast
			continue
		case slowWords[w]:
			speed = speeds.Slow
			continue
		case jitterWords[w]:
			jitter = true
			continue
		case fillerWords[w]:
			continue
		}

		if delta, ok := grid.Direction(w); ok {
			count := 1
			if i+1 < len(tokens) {
				if n, ok := parseRepeat(tokens[i+1]); ok {
					count = n
					i++
				}
			}
			for k := 0; k < count; k++ {
				steps = append(steps, Step{Delta: delta, Speed: speed, Jitter: jitter})
			}
			continue
		}

		if gotoWords[w] {
			if target, consumed, ok := parseCoords(tokens[i+1:]); ok {
				out = append(out, Goto(target, speed, jitter))
				i += consumed
			}
		}
	}

	if len(steps) > 0 {
		out = append(out, Moves(steps))
	}
	if len(out) == 0 {
		e.SayOnRelease(noDirection)
	}
	return out
}

func parseRepeat(token string) (int, bool) {
	n, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, false
	}
	switch {
	case n < 1:
		return 1, true
	case n > maxRepeat:
		return maxRepeat, true
	}
	return int(n), true
}

// parseCoords reads "x y", "x,y" or "(x, y)" from the start of rest, looking
// at no more than gotoWindow tokens. consumed covers the tokens that supplied
// both numbers plus any punctuation-only tokens right after them.
func parseCoords(rest []string) (grid.Cell, int, bool) {
	window := rest[:min(gotoWindow, len(rest))]
	fields := strings.Fields(coordPunct.Replace(strings.Join(window, " ")))
	if len(fields) < 2 {
		return grid.Cell{}, 0, false
	}
	x, errX := strconv.ParseInt(fields[0], 10, 32)
	y, errY := strconv.ParseInt(fields[1], 10, 32)
	if errX != nil || errY != nil {
		return grid.Cell{}, 0, false
	}

	consumed, seen := 0, 0
	for consumed < len(window) && seen < 2 {
		seen += len(strings.Fields(coordPunct.Replace(window[consumed])))
		consumed++
	}
	for consumed < len(rest) && strings.TrimSpace(coordPunct.Replace(rest[consumed])) == "" {
		consumed++
	}
	return grid.Cell{X: int(x), Y: int(y)}, consumed, true
}
