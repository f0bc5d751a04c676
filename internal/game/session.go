// Package game wires the command catalog, the handler dispatcher and the
// actors' movers into one host-driven session.
package game

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/command"
	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/motion"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

const MaxMessages = 64

var ErrUnknownActor = errors.New("unknown actor")

type Actor struct {
	ID    uuid.UUID
	Name  string
	Mover *motion.Mover
}

// Outcome reports what one submitted line did. Unresolved input is an
// outcome, not an error.
type Outcome struct {
	Resolved bool
	Command  string
	Percent  float64
	Message  string
}

// NotUnderstoodFunc turns an unresolved intent into the message shown to the
// player.
type NotUnderstoodFunc func(intent parser.Intent) string

type StepListener func(actor *Actor, ev motion.StepEvent)

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMessageSink receives every message as it is said, in addition to the
// session's own bounded log.
func WithMessageSink(fn func(string)) Option {
	return func(s *Session) {
		s.sink = fn
	}
}

func WithNotUnderstood(fn NotUnderstoodFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.notUnderstood = fn
		}
	}
}

func WithStepListener(fn StepListener) Option {
	return func(s *Session) {
		s.onStep = fn
	}
}

// Session is driven from a single goroutine: Submit and Update must not run
// concurrently.
type Session struct {
	parser     *parser.Parser
	dispatcher *command.Dispatcher
	logger     *zap.Logger

	layout   grid.Layout
	world    *grid.Tilemap
	movement config.MovementConfig

	actors map[uuid.UUID]*Actor
	order  []uuid.UUID
	active uuid.UUID

	messages      []string
	said          []string
	sink          func(string)
	notUnderstood NotUnderstoodFunc
	onStep        StepListener
}

// NewSession builds a session from cfg and places the configured actor on
// the grid.
func NewSession(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	layout, err := grid.NewLayout(grid.LayoutKind(cfg.Grid.Layout), cfg.Grid.CellSize)
	if err != nil {
		return nil, err
	}

	s := &Session{
		logger:        zap.NewNop(),
		layout:        layout,
		world:         grid.NewTilemap(cfg.Grid.Width, cfg.Grid.Height, cfg.BlockedCells()),
		movement:      cfg.Movement,
		actors:        make(map[uuid.UUID]*Actor),
		notUnderstood: defaultNotUnderstood,
	}
	for _, opt := range opts {
		opt(s)
	}

	env := command.Env{Speeds: command.Speeds{
		Normal: cfg.Speeds.Normal,
		Fast:   cfg.Speeds.Fast,
		Slow:   cfg.Speeds.Slow,
	}}
	s.dispatcher = command.NewDefaultDispatcher(env,
		command.WithLogger(s.logger.Named("dispatch")),
		command.WithSay(s.say),
	)

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	if err := s.SetCatalog(catalog, cfg.Threshold); err != nil {
		return nil, err
	}

	s.AddActor(cfg.Actor.Name, grid.Cell(cfg.Actor.Start))
	return s, nil
}

func defaultNotUnderstood(intent parser.Intent) string {
	if intent.Clarify != nil {
		return intent.Clarify.Prompt
	}
	return "I couldn't map that to a command."
}

// SetCatalog swaps the command catalog and threshold. Lines already
// dispatched keep the catalog they were resolved against.
func (s *Session) SetCatalog(catalog *parser.Catalog, threshold float64) error {
	if err := s.dispatcher.Validate(catalog); err != nil {
		return err
	}
	p, err := parser.New(catalog, threshold)
	if err != nil {
		return err
	}
	s.parser = p
	s.dispatcher.SetCommands(catalog.Commands())
	s.logger.Info("catalog loaded",
		zap.Int("commands", catalog.Len()),
		zap.Float64("threshold", threshold),
	)
	return nil
}

// Reload applies the catalog and threshold of cfg. World and movement
// settings stay as they were.
func (s *Session) Reload(cfg config.Config) error {
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	return s.SetCatalog(catalog, cfg.Threshold)
}

// AddActor places a new actor at start. The first actor added becomes the
// one commands drive.
func (s *Session) AddActor(name string, start grid.Cell) *Actor {
	id := uuid.New()
	a := &Actor{ID: id, Name: name}
	a.Mover = motion.NewMover(start, motion.Options{
		Layout:           s.layout,
		Walkable:         s.world,
		BlockOnEmpty:     s.movement.BlockOnEmpty,
		BaseStepDuration: time.Duration(s.movement.BaseStepMS) * time.Millisecond,
		WobbleAmplitude:  s.wobbleAmplitude(),
		Seed:             int64(binary.BigEndian.Uint64(id[:8])),
		Logger:           s.logger.Named("motion").With(zap.String("actor", name)),
		OnEvent:          func(ev motion.StepEvent) { s.stepEvent(a, ev) },
	})
	s.actors[id] = a
	s.order = append(s.order, id)
	if s.active == uuid.Nil {
		s.active = id
	}
	s.logger.Info("actor added", zap.String("actor", name), zap.Stringer("id", id), zap.Stringer("cell", start))
	return a
}

// wobbleAmplitude maps a configured zero to "no wobble"; the mover treats
// zero as "use the default".
func (s *Session) wobbleAmplitude() float64 {
	if s.movement.WobbleAmplitude == 0 {
		return -1
	}
	return s.movement.WobbleAmplitude
}

// RemoveActor cancels the actor's in-flight step and drops its queue. If it
// was the active actor, the next remaining actor takes over.
func (s *Session) RemoveActor(id uuid.UUID) error {
	a, ok := s.actors[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownActor)
	}
	a.Mover.Stop()
	delete(s.actors, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == id {
		s.active = uuid.Nil
		if len(s.order) > 0 {
			s.active = s.order[0]
		}
	}
	s.logger.Info("actor removed", zap.String("actor", a.Name), zap.Stringer("id", id))
	return nil
}

func (s *Session) SetActive(id uuid.UUID) error {
	if _, ok := s.actors[id]; !ok {
		return fmt.Errorf("activate %s: %w", id, ErrUnknownActor)
	}
	s.active = id
	return nil
}

// CycleActive moves the active role step places along the actor order,
// wrapping at either end, and returns the new active actor.
func (s *Session) CycleActive(step int) *Actor {
	n := len(s.order)
	if n == 0 {
		return nil
	}
	i := 0
	for j, id := range s.order {
		if id == s.active {
			i = j
			break
		}
	}
	i = ((i+step)%n + n) % n
	s.active = s.order[i]
	return s.actors[s.active]
}

// Active returns the actor commands drive, or nil when there is none.
func (s *Session) Active() *Actor {
	return s.actors[s.active]
}

func (s *Session) Actors() []*Actor {
	out := make([]*Actor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.actors[id])
	}
	return out
}

// SetStepListener replaces the listener given by WithStepListener.
func (s *Session) SetStepListener(fn StepListener) {
	s.onStep = fn
}

func (s *Session) Layout() grid.Layout {
	return s.layout
}

func (s *Session) World() *grid.Tilemap {
	return s.world
}

func (s *Session) Parser() *parser.Parser {
	return s.parser
}

// Messages returns the most recent messages, oldest first.
func (s *Session) Messages() []string {
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit resolves one line of input and dispatches it to the active actor.
func (s *Session) Submit(text string) Outcome {
	s.said = s.said[:0]
	intent := s.parser.Parse(text)
	if !intent.Resolved {
		msg := s.notUnderstood(intent)
		if msg != "" {
			s.say(msg)
		}
		s.logger.Debug("not understood", zap.String("input", text), zap.String("suggestion", intent.Suggestion))
		return Outcome{Message: msg}
	}

	def := intent.Match.Command
	out := Outcome{Resolved: true, Command: def.Name, Percent: intent.Match.Percent}

	var target command.Target
	if a := s.Active(); a != nil {
		target = a.Mover
	}
	err := s.dispatcher.Dispatch(def, intent.Tokens, target)
	switch {
	case errors.Is(err, command.ErrNoTarget):
		s.say("There is nobody here to move.")
	case err != nil:
		s.logger.Error("dispatch failed", zap.String("command", def.Name), zap.Error(err))
		s.say("Something went wrong with that command.")
	}
	out.Message = strings.Join(s.said, "\n")
	return out
}

// Update ends the current dispatch tick and advances every actor by dt. Hosts
// call Submit after Update within a frame, so a dispatched command lives
// until the next frame's Update releases it.
func (s *Session) Update(dt time.Duration) {
	s.dispatcher.Tick()
	for _, id := range s.order {
		s.actors[id].Mover.Update(dt)
	}
}

// LiveExecutions counts dispatched commands not yet released.
func (s *Session) LiveExecutions() int {
	return s.dispatcher.Live()
}

// Idle reports whether no actor has pending or in-flight steps.
func (s *Session) Idle() bool {
	for _, a := range s.actors {
		if a.Mover.Draining() {
			return false
		}
	}
	return true
}

func (s *Session) say(text string) {
	s.said = append(s.said, text)
	for _, line := range strings.Split(text, "\n") {
		s.messages = append(s.messages, line)
	}
	if over := len(s.messages) - MaxMessages; over > 0 {
		s.messages = append(s.messages[:0], s.messages[over:]...)
	}
	if s.sink != nil {
		s.sink(text)
	}
}

func (s *Session) stepEvent(a *Actor, ev motion.StepEvent) {
	switch ev.Kind {
	case motion.StepBlocked:
		s.logger.Debug("step skipped", zap.String("actor", a.Name), zap.Stringer("to", ev.To))
	case motion.DrainFinished:
		s.logger.Debug("actor idle", zap.String("actor", a.Name), zap.Stringer("cell", ev.From))
	}
	if s.onStep != nil {
		s.onStep(a, ev)
	}
}
