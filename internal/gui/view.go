package gui

import (
	"math"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

// viewport maps world space into a screen rectangle.
type viewport struct {
	originX float64
	originY float64
	scale   float64
	// flipY puts world +Y at the top of the screen.
	flipY bool
}

func (v viewport) toScreen(p grid.Vec2) (float32, float32) {
	y := p.Y
	if v.flipY {
		y = -y
	}
	return float32(v.originX + p.X*v.scale), float32(v.originY + y*v.scale)
}

func (v viewport) toWorld(x, y float32) grid.Vec2 {
	wx := (float64(x) - v.originX) / v.scale
	wy := (float64(y) - v.originY) / v.scale
	if v.flipY {
		wy = -wy
	}
	return grid.Vec2{X: wx, Y: wy}
}

// cellOutline returns c's corners, falling back to a square around the center
// for layouts that cannot report an outline.
func cellOutline(layout grid.Layout, c grid.Cell) [4]grid.Vec2 {
	if o, ok := layout.(grid.Outliner); ok {
		return o.Corners(c)
	}
	center := layout.CellCenter(c)
	const h = 0.5
	return [4]grid.Vec2{
		{X: center.X - h, Y: center.Y - h},
		{X: center.X + h, Y: center.Y - h},
		{X: center.X + h, Y: center.Y + h},
		{X: center.X - h, Y: center.Y + h},
	}
}

// fitViewport scales and centers the whole tilemap inside the rectangle at
// (x, y) of size w by h, leaving margin pixels free on every side.
func fitViewport(layout grid.Layout, world *grid.Tilemap, x, y, w, h, margin float64) viewport {
	_, square := layout.(grid.SquareLayout)
	v := viewport{flipY: square, scale: 1}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for cy := 0; cy < world.Height; cy++ {
		for cx := 0; cx < world.Width; cx++ {
			for _, p := range cellOutline(layout, grid.Cell{X: cx, Y: cy}) {
				sx, sy := v.toScreen(p)
				minX = math.Min(minX, float64(sx))
				maxX = math.Max(maxX, float64(sx))
				minY = math.Min(minY, float64(sy))
				maxY = math.Max(maxY, float64(sy))
			}
		}
	}
	if math.IsInf(minX, 0) {
		return viewport{originX: x + w/2, originY: y + h/2, scale: 1, flipY: square}
	}

	bw, bh := maxX-minX, maxY-minY
	availW, availH := math.Max(w-2*margin, 1), math.Max(h-2*margin, 1)
	scale := math.Min(availW/math.Max(bw, 1e-9), availH/math.Max(bh, 1e-9))

	v.scale = scale
	v.originX = x + w/2 - (minX+bw/2)*scale
	v.originY = y + h/2 - (minY+bh/2)*scale
	return v
}

// hoveredCell reports the cell under the screen point, if it is on the map.
func hoveredCell(v viewport, layout grid.Layout, world *grid.Tilemap, x, y float32) (grid.Cell, bool) {
	c := layout.WorldToCell(v.toWorld(x, y))
	return c, world.InBounds(c)
}
