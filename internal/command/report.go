package command

import (
	"fmt"
	"strings"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

func Where(e *Execution) []Request {
	cell, ok := e.Cell()
	if !ok {
		return nil
	}
	return []Request{Say(fmt.Sprintf("I am at %s.", cell))}
}

func Help(e *Execution) []Request {
	names := make([]string, 0, len(e.Env.Commands))
	for _, cmd := range e.Env.Commands {
		names = append(names, fmt.Sprintf("%s (%s)", cmd.Name, strings.Join(cmd.Keywords, " ")))
	}
	vocab := MoveVocabulary()
	lines := []string{
		"Commands: " + strings.Join(names, ", ") + ".",
		"Directions: " + strings.Join(grid.DirectionWords(), " ") + ", each optionally followed by a count.",
		"Faster: " + strings.Join(vocab.Fast, " ") + ". Slower: " + strings.Join(vocab.Slow, " ") + ". Wobbly: " + strings.Join(vocab.Jitter, " ") + ".",
		"Absolute moves: goto x y, goto x,y or to (x, y).",
	}
	return []Request{Say(strings.Join(lines, "\n"))}
}
