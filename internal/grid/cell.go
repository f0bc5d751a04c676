// Package grid holds the discrete tile model: cells, the direction vocabulary,
// cell-to-world layouts and walkability.
package grid

import (
	"fmt"
	"math"
)

// Cell is a discrete grid coordinate. North is +Y, east is +X.
type Cell struct {
	X int
	Y int
}

func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

func (c Cell) Sub(d Cell) Cell {
	return Cell{X: c.X - d.X, Y: c.Y - d.Y}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Vec2 is a continuous world position.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Lerp interpolates from v to o; t is clamped to [0,1].
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	t = clamp01(t)
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
