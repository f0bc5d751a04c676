package command

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/motion"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

type enqueueCall struct {
	isGoto bool
	deltas []grid.Cell
	target grid.Cell
	speed  float64
	jitter bool
}

type fakeTarget struct {
	cell  grid.Cell
	calls []enqueueCall
}

func (f *fakeTarget) Cell() grid.Cell { return f.cell }

func (f *fakeTarget) EnqueueRelative(deltas []grid.Cell, speed float64, jitter bool) {
	f.calls = append(f.calls, enqueueCall{deltas: deltas, speed: speed, jitter: jitter})
}

func (f *fakeTarget) EnqueueGoto(target grid.Cell, speed float64, jitter bool) {
	f.calls = append(f.calls, enqueueCall{isGoto: true, target: target, speed: speed, jitter: jitter})
}

var moveDef = parser.CommandDef{Name: "move", Keywords: []string{"go"}, Handler: HandlerMove}

func TestDispatchSubmitsInTokenOrder(t *testing.T) {
	d := NewDefaultDispatcher(Env{Speeds: DefaultSpeeds()})
	target := &fakeTarget{}

	err := d.Dispatch(moveDef, parser.Tokenize("east goto 4,4 quickly north"), target)
	require.NoError(t, err)

	require.Len(t, target.calls, 3)
	require.True(t, target.calls[0].isGoto)
	require.Equal(t, grid.Cell{X: 4, Y: 4}, target.calls[0].target)
	require.Equal(t, []grid.Cell{east}, target.calls[1].deltas)
	require.Equal(t, 1.0, target.calls[1].speed)
	require.Equal(t, []grid.Cell{north}, target.calls[2].deltas)
	require.Equal(t, 1.8, target.calls[2].speed)
}

func TestDispatchBatchDrainsAsOne(t *testing.T) {
	var events []motion.StepEvent
	mover := motion.NewMover(grid.Cell{}, motion.Options{OnEvent: func(ev motion.StepEvent) {
		events = append(events, ev)
	}})
	d := NewDefaultDispatcher(Env{Speeds: DefaultSpeeds()})

	require.NoError(t, d.Dispatch(moveDef, parser.Tokenize("go east 3 then quick north"), mover))
	require.Equal(t, 4, mover.Pending())

	for i := 0; i < 1000 && mover.Draining(); i++ {
		mover.Update(20 * time.Millisecond)
	}
	require.Equal(t, grid.Cell{X: 3, Y: 1}, mover.Cell())

	drains := 0
	var speeds []float64
	for _, ev := range events {
		switch ev.Kind {
		case motion.DrainStarted:
			drains++
		case motion.StepCompleted:
			speeds = append(speeds, ev.Op.Speed)
		}
	}
	require.Equal(t, 1, drains)
	require.Equal(t, []float64{1, 1, 1, 1.8}, speeds)
}

func TestDispatchGotoExample(t *testing.T) {
	mover := motion.NewMover(grid.Cell{}, motion.Options{})
	d := NewDefaultDispatcher(Env{Speeds: DefaultSpeeds()})

	require.NoError(t, d.Dispatch(moveDef, parser.Tokenize("goto 3,2"), mover))
	require.Equal(t, 5, mover.Pending())
	for i := 0; i < 1000 && mover.Draining(); i++ {
		mover.Update(20 * time.Millisecond)
	}
	require.Equal(t, grid.Cell{X: 3, Y: 2}, mover.Cell())
}

func TestDispatchUnknownHandler(t *testing.T) {
	d := NewDispatcher(Env{})
	err := d.Dispatch(parser.CommandDef{Name: "dance", Keywords: []string{"dance"}, Handler: "dance"}, nil, &fakeTarget{})
	require.ErrorIs(t, err, ErrUnknownHandler)
}

func TestDispatchWithoutTargetIsReportedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := NewDefaultDispatcher(Env{Speeds: DefaultSpeeds()}, WithLogger(zap.New(core)))

	for i := 0; i < 3; i++ {
		err := d.Dispatch(moveDef, parser.Tokenize("go east"), nil)
		require.True(t, errors.Is(err, ErrNoTarget))
	}
	require.Equal(t, 1, logs.Len())
	require.Zero(t, d.Live())
}

func TestExecutionReleasedAfterOneTick(t *testing.T) {
	d := NewDispatcher(Env{})
	ran := 0
	released := 0
	d.Register("noop", func(e *Execution) []Request {
		ran++
		e.Defer(func() { released++ })
		return nil
	}, false)
	def := parser.CommandDef{Name: "noop", Keywords: []string{"noop"}, Handler: "noop"}

	require.NoError(t, d.Dispatch(def, nil, nil))
	require.NoError(t, d.Dispatch(def, nil, nil))
	require.Equal(t, 2, ran)
	require.Equal(t, 2, d.Live())
	require.Zero(t, released)

	d.Tick()
	require.Zero(t, d.Live())
	require.Equal(t, 2, released)

	d.Tick()
	require.Equal(t, 2, released)
}

func TestMoveWithoutDirectionAsksOnRelease(t *testing.T) {
	var said []string
	d := NewDefaultDispatcher(Env{Speeds: DefaultSpeeds()}, WithSay(func(s string) { said = append(said, s) }))
	target := &fakeTarget{}

	require.NoError(t, d.Dispatch(moveDef, parser.Tokenize("go"), target))
	require.Empty(t, target.calls)
	require.Empty(t, said)
	require.Equal(t, 1, d.Live())

	d.Tick()
	require.Equal(t, []string{noDirection}, said)

	require.NoError(t, d.Dispatch(moveDef, parser.Tokenize("go east"), target))
	d.Tick()
	require.Len(t, said, 1, "moves that parse say nothing")
}

func TestExecutionsDoNotShareState(t *testing.T) {
	d := NewDispatcher(Env{})
	var seen [][]string
	d.Register("echo", func(e *Execution) []Request {
		seen = append(seen, e.Tokens)
		return nil
	}, false)
	def := parser.CommandDef{Name: "echo", Keywords: []string{"echo"}, Handler: "echo"}

	require.NoError(t, d.Dispatch(def, []string{"a"}, nil))
	require.NoError(t, d.Dispatch(def, []string{"b"}, nil))
	require.Equal(t, [][]string{{"a"}, {"b"}}, seen)
}

func TestWhereAndHelpSay(t *testing.T) {
	var said []string
	d := NewDefaultDispatcher(Env{
		Speeds:   DefaultSpeeds(),
		Commands: []parser.CommandDef{moveDef},
	}, WithSay(func(s string) { said = append(said, s) }))

	require.NoError(t, d.Dispatch(parser.CommandDef{Name: "where", Keywords: []string{"where"}, Handler: HandlerWhere}, nil, &fakeTarget{cell: grid.Cell{X: 2, Y: -1}}))
	require.NoError(t, d.Dispatch(parser.CommandDef{Name: "help", Keywords: []string{"help"}, Handler: HandlerHelp}, nil, nil))

	require.Len(t, said, 2)
	require.Equal(t, "I am at (2,-1).", said[0])
	require.Contains(t, said[1], "move (go)")
}

func TestValidateCatalogHandlers(t *testing.T) {
	d := NewDefaultDispatcher(Env{})
	good, err := parser.NewCatalog([]parser.CommandDef{moveDef})
	require.NoError(t, err)
	require.NoError(t, d.Validate(good))

	bad, err := parser.NewCatalog([]parser.CommandDef{{Name: "fly", Keywords: []string{"fly"}, Handler: "fly"}})
	require.NoError(t, err)
	require.ErrorIs(t, d.Validate(bad), ErrUnknownHandler)
}
