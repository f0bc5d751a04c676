package command

import "github.com/appengine-ltd/clanker-quest/internal/grid"

type RequestKind int

const (
	RequestMoves RequestKind = iota
	RequestGoto
	RequestSay
)

// Request is something a handler wants done once it returns. Requests are
// applied in the order the handler emitted them.
type Request struct {
	Kind   RequestKind
	Steps  []Step
	Target grid.Cell
	Speed  float64
	Jitter bool
	Text   string
}

// Step is one relative move with the modifiers that were active when the
// handler produced it.
type Step struct {
	Delta  grid.Cell
	Speed  float64
	Jitter bool
}

func Moves(steps []Step) Request {
	return Request{Kind: RequestMoves, Steps: steps}
}

func Goto(target grid.Cell, speed float64, jitter bool) Request {
	return Request{Kind: RequestGoto, Target: target, Speed: speed, Jitter: jitter}
}

func Say(text string) Request {
	return Request{Kind: RequestSay, Text: text}
}

// Target is the actor a command drives.
type Target interface {
	Cell() grid.Cell
	EnqueueRelative(deltas []grid.Cell, speed float64, jitter bool)
	EnqueueGoto(target grid.Cell, speed float64, jitter bool)
}

type Speeds struct {
	Normal float64
	Fast   float64
	Slow   float64
}

func DefaultSpeeds() Speeds {
	return Speeds{Normal: 1.0, Fast: 1.8, Slow: 0.6}
}
