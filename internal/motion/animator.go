package motion

import (
	"math"
	"time"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

const (
	minStepDuration = 10 * time.Millisecond
	minSpeed        = 0.01
)

// StepDuration is how long one cell takes at the given speed multiplier.
func StepDuration(base time.Duration, speed float64) time.Duration {
	if speed < minSpeed {
		speed = minSpeed
	}
	d := time.Duration(math.Round(float64(base) / speed))
	if d < minStepDuration {
		d = minStepDuration
	}
	return d
}

// Sample is one animation frame.
type Sample struct {
	Pos       grid.Vec2
	Done      bool
	Cancelled bool
}

// stepAnimation is the sample stream for a single cell step. The owner calls
// next once per host tick until Done.
type stepAnimation struct {
	from      grid.Vec2
	to        grid.Vec2
	duration  time.Duration
	jitter    bool
	amplitude float64
	seed      int64

	t         float64
	cancelled bool
}

func newStepAnimation(from, to grid.Vec2, duration time.Duration, jitter bool, amplitude float64, seed int64) *stepAnimation {
	if duration < minStepDuration {
		duration = minStepDuration
	}
	return &stepAnimation{
		from:      from,
		to:        to,
		duration:  duration,
		jitter:    jitter,
		amplitude: amplitude,
		seed:      seed,
	}
}

func (a *stepAnimation) cancel() {
	a.cancelled = true
}

// next advances by dt. clock is the owner's running time and drives the wobble
// phase.
func (a *stepAnimation) next(dt, clock time.Duration) Sample {
	if a.cancelled {
		return Sample{Pos: a.from, Done: true, Cancelled: true}
	}
	if dt < 0 {
		dt = 0
	}
	a.t += float64(dt) / float64(a.duration)
	if a.t >= 1 {
		return Sample{Pos: a.to, Done: true}
	}
	pos := a.from.Lerp(a.to, a.t)
	if a.jitter {
		wx, wy := wobbleOffset(a.seed, clock.Seconds(), a.amplitude)
		pos = pos.Add(grid.Vec2{X: wx, Y: wy})
	}
	return Sample{Pos: pos}
}
