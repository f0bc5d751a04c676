// Package motion runs queued single-cell steps for an actor, one at a time,
// animating each between cell centers.
package motion

import (
	"time"

	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

const (
	DefaultBaseStepDuration = 180 * time.Millisecond
	DefaultWobbleAmplitude  = 0.08
)

// StepOp is one queued unit of work. It is never mutated after creation.
type StepOp struct {
	Delta  grid.Cell
	Speed  float64
	Jitter bool
}

// queued is a run of count identical steps. Relative steps queue one per
// entry; a goto queues one entry per axis.
type queued struct {
	op    StepOp
	count int
}

type EventKind int

const (
	StepStarted EventKind = iota
	StepCompleted
	StepBlocked
	DrainStarted
	DrainFinished
)

func (k EventKind) String() string {
	switch k {
	case StepStarted:
		return "step_started"
	case StepCompleted:
		return "step_completed"
	case StepBlocked:
		return "step_blocked"
	case DrainStarted:
		return "drain_started"
	case DrainFinished:
		return "drain_finished"
	default:
		return "unknown"
	}
}

type StepEvent struct {
	Kind EventKind
	From grid.Cell
	To   grid.Cell
	Op   StepOp
	// Skipped counts the steps a StepBlocked event discards, itself included.
	Skipped int
}

type Options struct {
	Layout           grid.Layout
	Walkable         grid.Walkable
	BlockOnEmpty     bool
	BaseStepDuration time.Duration
	// WobbleAmplitude defaults to DefaultWobbleAmplitude; negative disables it.
	WobbleAmplitude  float64
	Seed             int64
	Logger           *zap.Logger
	OnEvent          func(StepEvent)
}

// Mover owns one actor's motion state: its authoritative cell, the FIFO of
// pending steps, and at most one in-flight step animation. It is driven by
// Update from a single goroutine; enqueue calls are safe between updates,
// including while a drain is in progress.
type Mover struct {
	opts Options

	cell     grid.Cell
	pos      grid.Vec2
	queue    []queued
	pending  int
	draining bool
	stopped  bool

	current   *stepAnimation
	currentOp StepOp
	clock     time.Duration
}

func NewMover(start grid.Cell, opts Options) *Mover {
	if opts.Layout == nil {
		opts.Layout = grid.SquareLayout{CellSize: 1}
	}
	if opts.BaseStepDuration <= 0 {
		opts.BaseStepDuration = DefaultBaseStepDuration
	}
	switch {
	case opts.WobbleAmplitude == 0:
		opts.WobbleAmplitude = DefaultWobbleAmplitude
	case opts.WobbleAmplitude < 0:
		opts.WobbleAmplitude = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Mover{
		opts: opts,
		cell: start,
		pos:  opts.Layout.CellCenter(start),
	}
}

// Cell is the last cell a step completed on. It never changes mid-animation.
func (m *Mover) Cell() grid.Cell {
	return m.cell
}

// Position is the continuous world position for rendering.
func (m *Mover) Position() grid.Vec2 {
	return m.pos
}

func (m *Mover) Draining() bool {
	return m.draining
}

// Pending counts queued steps, excluding the one in flight.
func (m *Mover) Pending() int {
	return m.pending
}

func (m *Mover) Animating() bool {
	return m.current != nil
}

// SnapTo places the actor on the cell nearest to p. Ignored while draining.
func (m *Mover) SnapTo(p grid.Vec2) {
	if m.draining {
		return
	}
	m.cell = m.opts.Layout.WorldToCell(p)
	m.pos = m.opts.Layout.CellCenter(m.cell)
}

func (m *Mover) EnqueueRelative(deltas []grid.Cell, speed float64, jitter bool) {
	if m.stopped || len(deltas) == 0 {
		return
	}
	for _, d := range deltas {
		m.queue = append(m.queue, queued{op: StepOp{Delta: d, Speed: speed, Jitter: jitter}, count: 1})
	}
	m.pending += len(deltas)
	m.startDrain()
}

// EnqueueGoto expands target against the current cell as it is right now, not
// as it will be once earlier queued steps finish. Each axis is queued as a
// single run, so the queue stays small however far the target is.
func (m *Mover) EnqueueGoto(target grid.Cell, speed float64, jitter bool) {
	legs := grid.ManhattanLegs(m.cell, target)
	if m.stopped || len(legs) == 0 {
		return
	}
	for _, leg := range legs {
		m.queue = append(m.queue, queued{op: StepOp{Delta: leg.Step, Speed: speed, Jitter: jitter}, count: leg.Count})
		m.pending += leg.Count
	}
	m.startDrain()
}

func (m *Mover) startDrain() {
	if m.draining {
		return
	}
	m.draining = true
	m.emit(StepEvent{Kind: DrainStarted, From: m.cell, To: m.cell})
}

// Stop cancels the step in flight and discards everything queued. Later
// enqueues are ignored.
func (m *Mover) Stop() {
	m.stopped = true
	m.queue = nil
	m.pending = 0
	if m.current != nil {
		m.current.cancel()
	}
}

// Update advances the drain by dt: it starts the next step if none is in
// flight, skipping blocked steps without delay, and advances the current
// animation by one sample. A blocked step drops the rest of its run, since
// every remaining step in it targets the same cell.
func (m *Mover) Update(dt time.Duration) {
	if !m.draining {
		return
	}
	if dt < 0 {
		dt = 0
	}
	m.clock += dt

	for m.current == nil {
		if len(m.queue) == 0 {
			m.finishDrain()
			return
		}
		head := m.queue[0]
		n := 1
		if !m.begin(head.op, head.count) {
			n = head.count
		}
		m.take(n)
	}

	sample := m.current.next(dt, m.clock)
	if sample.Cancelled {
		m.current = nil
		m.finishDrain()
		return
	}
	m.pos = sample.Pos
	if !sample.Done {
		return
	}

	from := m.cell
	m.cell = m.cell.Add(m.currentOp.Delta)
	m.pos = m.opts.Layout.CellCenter(m.cell)
	m.current = nil
	m.emit(StepEvent{Kind: StepCompleted, From: from, To: m.cell, Op: m.currentOp})
	if len(m.queue) == 0 {
		m.finishDrain()
	}
}

// take removes n steps from the head run.
func (m *Mover) take(n int) {
	if len(m.queue) == 0 {
		return
	}
	m.pending -= n
	m.queue[0].count -= n
	if m.queue[0].count <= 0 {
		m.queue[0] = queued{}
		m.queue = m.queue[1:]
	}
}

// begin starts op, or reports false when its target cell is blocked. run is
// the number of identical steps op heads.
func (m *Mover) begin(op StepOp, run int) bool {
	next := m.cell.Add(op.Delta)
	if m.opts.BlockOnEmpty && m.opts.Walkable != nil && !m.opts.Walkable.Walkable(next) {
		m.opts.Logger.Debug("step blocked",
			zap.Stringer("from", m.cell),
			zap.Stringer("to", next),
			zap.Int("skipped", run),
		)
		m.emit(StepEvent{Kind: StepBlocked, From: m.cell, To: next, Op: op, Skipped: run})
		return false
	}
	m.currentOp = op
	m.current = newStepAnimation(
		m.opts.Layout.CellCenter(m.cell),
		m.opts.Layout.CellCenter(next),
		StepDuration(m.opts.BaseStepDuration, op.Speed),
		op.Jitter,
		m.opts.WobbleAmplitude,
		m.opts.Seed,
	)
	m.emit(StepEvent{Kind: StepStarted, From: m.cell, To: next, Op: op})
	return true
}

func (m *Mover) finishDrain() {
	m.draining = false
	m.queue = nil
	m.pending = 0
	m.emit(StepEvent{Kind: DrainFinished, From: m.cell, To: m.cell})
}

func (m *Mover) emit(ev StepEvent) {
	if m.opts.OnEvent != nil {
		m.opts.OnEvent(ev)
	}
}
