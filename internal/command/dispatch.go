// Package command turns a resolved command into work: it runs the command's
// handler once, applies the requests it returns, and keeps the execution alive
// until the next tick so deferred side effects can settle.
package command

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

var (
	ErrUnknownHandler = errors.New("unknown handler")
	ErrNoTarget       = errors.New("no movement target bound")
)

// Handler runs a command once and returns the requests to apply.
type Handler func(e *Execution) []Request

type registration struct {
	handler     Handler
	needsTarget bool
}

// Env is read-only context shared by every execution of one dispatcher.
type Env struct {
	Speeds   Speeds
	Commands []parser.CommandDef
}

// Execution is the short-lived value behind one dispatched command.
type Execution struct {
	Kind   parser.HandlerKind
	Tokens []string
	Env    *Env

	target   Target
	say      func(string)
	tick     uint64
	deferred []func()
}

// Cell reports the target's current cell, if there is a target.
func (e *Execution) Cell() (grid.Cell, bool) {
	if e.target == nil {
		return grid.Cell{}, false
	}
	return e.target.Cell(), true
}

// Defer registers fn to run when the execution is released on the next tick.
func (e *Execution) Defer(fn func()) {
	if fn != nil {
		e.deferred = append(e.deferred, fn)
	}
}

// SayOnRelease says text once the execution is released rather than while
// the handler runs.
func (e *Execution) SayOnRelease(text string) {
	e.Defer(func() {
		if e.say != nil {
			e.say(text)
		}
	})
}

type Dispatcher struct {
	env      *Env
	handlers map[parser.HandlerKind]registration
	logger   *zap.Logger
	say      func(string)

	tick          uint64
	live          []*Execution
	reportedError map[parser.HandlerKind]bool
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSay sets where RequestSay text goes.
func WithSay(fn func(string)) Option {
	return func(d *Dispatcher) {
		d.say = fn
	}
}

func NewDispatcher(env Env, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		env:           &env,
		handlers:      make(map[parser.HandlerKind]registration),
		logger:        zap.NewNop(),
		reportedError: make(map[parser.HandlerKind]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDefaultDispatcher registers the built-in handlers.
func NewDefaultDispatcher(env Env, opts ...Option) *Dispatcher {
	d := NewDispatcher(env, opts...)
	d.Register(HandlerMove, Move, true)
	d.Register(HandlerWhere, Where, true)
	d.Register(HandlerHelp, Help, false)
	return d
}

// Register binds kind to h. needsTarget marks handlers that are meaningless
// without an actor to drive.
func (d *Dispatcher) Register(kind parser.HandlerKind, h Handler, needsTarget bool) {
	d.handlers[kind] = registration{handler: h, needsTarget: needsTarget}
}

func (d *Dispatcher) Kinds() []parser.HandlerKind {
	out := make([]parser.HandlerKind, 0, len(d.handlers))
	for k := range d.handlers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every command in the catalog has a registered handler.
func (d *Dispatcher) Validate(catalog *parser.Catalog) error {
	for _, cmd := range catalog.Commands() {
		if _, ok := d.handlers[cmd.Handler]; !ok {
			return fmt.Errorf("command %s: %w %q", cmd.Name, ErrUnknownHandler, cmd.Handler)
		}
	}
	return nil
}

// SetCommands replaces the command list handlers see, e.g. after a reload.
func (d *Dispatcher) SetCommands(cmds []parser.CommandDef) {
	env := *d.env
	env.Commands = cmds
	d.env = &env
}

// Dispatch runs def's handler once against tokens and applies its requests to
// target in order. A handler that needs a target and has none is a no-op; the
// first occurrence per handler kind is logged.
func (d *Dispatcher) Dispatch(def parser.CommandDef, tokens []string, target Target) error {
	reg, ok := d.handlers[def.Handler]
	if !ok {
		return fmt.Errorf("dispatch %s: %w %q", def.Name, ErrUnknownHandler, def.Handler)
	}
	if reg.needsTarget && target == nil {
		if !d.reportedError[def.Handler] {
			d.reportedError[def.Handler] = true
			d.logger.Error("handler disabled", zap.String("handler", string(def.Handler)), zap.Error(ErrNoTarget))
		}
		return ErrNoTarget
	}

	e := &Execution{
		Kind:   def.Handler,
		Tokens: tokens,
		Env:    d.env,
		target: target,
		say:    d.say,
		tick:   d.tick,
	}
	d.live = append(d.live, e)

	for _, req := range reg.handler(e) {
		d.apply(req, target)
	}
	d.logger.Debug("dispatched",
		zap.String("command", def.Name),
		zap.Strings("tokens", tokens),
	)
	return nil
}

func (d *Dispatcher) apply(req Request, target Target) {
	switch req.Kind {
	case RequestMoves:
		if target != nil {
			enqueueSteps(target, req.Steps)
		}
	case RequestGoto:
		if target != nil {
			target.EnqueueGoto(req.Target, req.Speed, req.Jitter)
		}
	case RequestSay:
		if d.say != nil {
			d.say(req.Text)
		}
	}
}

// enqueueSteps submits steps in runs of equal modifiers. Every run is
// enqueued before the target is updated again, so the batch drains as one.
func enqueueSteps(target Target, steps []Step) {
	for start := 0; start < len(steps); {
		end := start + 1
		for end < len(steps) && steps[end].Speed == steps[start].Speed && steps[end].Jitter == steps[start].Jitter {
			end++
		}
		deltas := make([]grid.Cell, 0, end-start)
		for _, s := range steps[start:end] {
			deltas = append(deltas, s.Delta)
		}
		target.EnqueueRelative(deltas, steps[start].Speed, steps[start].Jitter)
		start = end
	}
}

// Tick ends the current scheduling tick: executions dispatched before it run
// their deferred side effects and are released.
func (d *Dispatcher) Tick() {
	d.tick++
	live := d.live
	d.live = nil
	for _, e := range live {
		if e.tick >= d.tick {
			d.live = append(d.live, e)
			continue
		}
		for _, fn := range e.deferred {
			fn()
		}
		e.deferred = nil
	}
}

// Live counts executions that have run but not yet been released.
func (d *Dispatcher) Live() int {
	return len(d.live)
}
