package game

import (
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/motion"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

const frame = 16 * time.Millisecond

func newTestSession(t *testing.T, mutate func(*config.Config), opts ...Option) *Session {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg, append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	require.NoError(t, err)
	return s
}

func runUntilIdle(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		s.Update(frame)
		if s.Idle() {
			return
		}
	}
	t.Fatal("session never went idle")
}

func TestNewSessionPlacesActor(t *testing.T) {
	s := newTestSession(t, nil)
	a := s.Active()
	require.NotNil(t, a)
	require.Equal(t, "clanker", a.Name)
	require.NotEqual(t, uuid.Nil, a.ID)
	require.Equal(t, grid.Cell{}, a.Mover.Cell())
	require.Equal(t, s.Layout().CellCenter(grid.Cell{}), a.Mover.Position())
	require.Len(t, s.Actors(), 1)
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Threshold = 101
	_, err := NewSession(cfg)
	require.ErrorIs(t, err, parser.ErrInvalidThreshold)
}

func TestSubmitMovementRunsToCompletion(t *testing.T) {
	s := newTestSession(t, nil)

	out := s.Submit("go east 3 then north quickly")
	require.True(t, out.Resolved)
	require.Equal(t, "move", out.Command)
	require.InDelta(t, 50, out.Percent, 1e-9)

	a := s.Active()
	require.True(t, a.Mover.Draining())
	require.Equal(t, grid.Cell{}, a.Mover.Cell(), "cell only changes when a step completes")

	runUntilIdle(t, s)
	require.Equal(t, grid.Cell{X: 3, Y: 1}, a.Mover.Cell())
	require.Equal(t, s.Layout().CellCenter(grid.Cell{X: 3, Y: 1}), a.Mover.Position())
}

func TestSubmitGoto(t *testing.T) {
	s := newTestSession(t, nil)
	out := s.Submit("goto 3 2")
	require.True(t, out.Resolved)
	require.Equal(t, "goto", out.Command)

	runUntilIdle(t, s)
	require.Equal(t, grid.Cell{X: 3, Y: 2}, s.Active().Mover.Cell())
}

func TestSubmitFarGotoStaysSmall(t *testing.T) {
	s := newTestSession(t, nil)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	out := s.Submit("goto 20000000 0")
	runtime.ReadMemStats(&after)

	require.True(t, out.Resolved)
	require.Equal(t, 20000000, s.Active().Mover.Pending())
	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))

	s.Update(frame)
	require.True(t, s.Active().Mover.Animating())
}

func TestExecutionOutlivesItsFrame(t *testing.T) {
	s := newTestSession(t, nil)

	s.Update(frame)
	s.Submit("where am i")
	require.Equal(t, 1, s.LiveExecutions())

	s.Update(frame)
	require.Zero(t, s.LiveExecutions())
}

func TestMoveWithoutDirectionAsksNextFrame(t *testing.T) {
	s := newTestSession(t, nil)

	out := s.Submit("go")
	require.True(t, out.Resolved)
	require.Empty(t, out.Message)
	require.Empty(t, s.Messages())
	require.False(t, s.Active().Mover.Draining())

	s.Update(frame)
	require.Len(t, s.Messages(), 1)
	require.Contains(t, s.Messages()[0], "Which way?")
}

func TestSubmitWhileDrainingJoinsQueue(t *testing.T) {
	s := newTestSession(t, nil)
	s.Submit("go east 2")
	s.Update(frame)
	s.Submit("walk north")
	runUntilIdle(t, s)
	require.Equal(t, grid.Cell{X: 2, Y: 1}, s.Active().Mover.Cell())
}

func TestSubmitNotUnderstood(t *testing.T) {
	var sunk []string
	s := newTestSession(t, nil, WithMessageSink(func(m string) { sunk = append(sunk, m) }))

	out := s.Submit("dance wildly")
	require.False(t, out.Resolved)
	require.NotEmpty(t, out.Message)
	require.Equal(t, []string{out.Message}, sunk)
	require.Equal(t, []string{out.Message}, s.Messages())
	require.False(t, s.Active().Mover.Draining())
}

func TestSubmitNotUnderstoodHook(t *testing.T) {
	var seen parser.Intent
	s := newTestSession(t, nil, WithNotUnderstood(func(intent parser.Intent) string {
		seen = intent
		return "Beep? " + intent.Suggestion
	}))

	out := s.Submit("halp")
	require.False(t, out.Resolved)
	require.Equal(t, "help", seen.Suggestion)
	require.Equal(t, "Beep? help", out.Message)
}

func TestSubmitWhereReportsCell(t *testing.T) {
	s := newTestSession(t, nil)
	s.Submit("go east")
	runUntilIdle(t, s)

	out := s.Submit("where am i")
	require.True(t, out.Resolved)
	require.Equal(t, "I am at (1,0).", out.Message)
}

func TestSubmitHelpListsCommands(t *testing.T) {
	s := newTestSession(t, nil)
	out := s.Submit("help")
	require.True(t, out.Resolved)
	require.Contains(t, out.Message, "move (go move)")
	require.Contains(t, out.Message, "northeast")
}

func TestBlockedStepIsSkipped(t *testing.T) {
	var events []motion.StepEvent
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.Movement.BlockOnEmpty = true
		cfg.Grid.Blocked = []config.Cell{{X: 1, Y: 0}}
	}, WithStepListener(func(_ *Actor, ev motion.StepEvent) {
		events = append(events, ev)
	}))

	s.Submit("go east north")
	runUntilIdle(t, s)
	require.Equal(t, grid.Cell{X: 0, Y: 1}, s.Active().Mover.Cell())

	var blocked []motion.StepEvent
	for _, ev := range events {
		if ev.Kind == motion.StepBlocked {
			blocked = append(blocked, ev)
		}
	}
	require.Len(t, blocked, 1)
	require.Equal(t, grid.Cell{X: 1, Y: 0}, blocked[0].To)
	require.Equal(t, motion.DrainFinished, events[len(events)-1].Kind)
}

func TestBlockingDisabledWalksThrough(t *testing.T) {
	s := newTestSession(t, func(cfg *config.Config) {
		cfg.Grid.Blocked = []config.Cell{{X: 1, Y: 0}}
	})
	s.Submit("go east 2")
	runUntilIdle(t, s)
	require.Equal(t, grid.Cell{X: 2, Y: 0}, s.Active().Mover.Cell())
}

func TestRemoveActorCancelsMotion(t *testing.T) {
	s := newTestSession(t, nil)
	a := s.Active()
	s.Submit("go east 5")
	s.Update(frame)
	require.True(t, a.Mover.Animating())

	require.NoError(t, s.RemoveActor(a.ID))
	a.Mover.Update(frame)
	require.False(t, a.Mover.Draining())
	require.Equal(t, grid.Cell{}, a.Mover.Cell())
	require.Nil(t, s.Active())

	out := s.Submit("go east")
	require.True(t, out.Resolved)
	require.Equal(t, "There is nobody here to move.", out.Message)

	require.ErrorIs(t, s.RemoveActor(a.ID), ErrUnknownActor)
}

func TestActiveActorSwitch(t *testing.T) {
	s := newTestSession(t, nil)
	first := s.Active()
	second := s.AddActor("spare", grid.Cell{X: 5, Y: 5})
	require.Equal(t, first, s.Active())

	require.NoError(t, s.SetActive(second.ID))
	s.Submit("go west")
	runUntilIdle(t, s)
	require.Equal(t, grid.Cell{X: 4, Y: 5}, second.Mover.Cell())
	require.Equal(t, grid.Cell{}, first.Mover.Cell())

	require.NoError(t, s.RemoveActor(second.ID))
	require.Equal(t, first, s.Active())
	require.ErrorIs(t, s.SetActive(uuid.New()), ErrUnknownActor)
}

func TestReloadSwapsCatalog(t *testing.T) {
	s := newTestSession(t, nil)
	require.False(t, s.Submit("stroll east").Resolved)

	cfg := config.Default()
	cfg.Commands = append(cfg.Commands, config.CommandConfig{Name: "stroll", Handler: "move", Keywords: []string{"stroll"}})
	require.NoError(t, s.Reload(cfg))

	out := s.Submit("stroll east")
	require.True(t, out.Resolved)
	require.Equal(t, "stroll", out.Command)
}

func TestReloadRejectsUnknownHandler(t *testing.T) {
	s := newTestSession(t, nil)
	cfg := config.Default()
	cfg.Commands = []config.CommandConfig{{Name: "fly", Handler: "fly", Keywords: []string{"fly"}}}
	require.Error(t, s.Reload(cfg))

	require.True(t, s.Submit("go east").Resolved, "old catalog stays active")
}

func TestMessagesAreBounded(t *testing.T) {
	s := newTestSession(t, nil)
	for i := 0; i < MaxMessages+10; i++ {
		s.Submit("where am i")
	}
	require.Len(t, s.Messages(), MaxMessages)
}

func TestCycleActiveWraps(t *testing.T) {
	s := newTestSession(t, nil)
	first := s.Active()
	second := s.AddActor("b", grid.Cell{X: 1})
	third := s.AddActor("c", grid.Cell{X: 2})

	require.Equal(t, second, s.CycleActive(1))
	require.Equal(t, third, s.CycleActive(1))
	require.Equal(t, first, s.CycleActive(1))
	require.Equal(t, third, s.CycleActive(-1))
	require.Equal(t, third, s.Active())
}
