package grid

import (
	"fmt"
	"math"
	"strings"
)

// Layout projects cells into world space.
type Layout interface {
	CellCenter(c Cell) Vec2
	WorldToCell(p Vec2) Cell
}

type LayoutKind string

const (
	LayoutSquare LayoutKind = "square"
	LayoutIso    LayoutKind = "iso"
)

func NewLayout(kind LayoutKind, cellSize float64) (Layout, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %v", cellSize)
	}
	switch LayoutKind(strings.ToLower(string(kind))) {
	case LayoutSquare:
		return SquareLayout{CellSize: cellSize}, nil
	case LayoutIso, "":
		return IsoLayout{CellSize: cellSize}, nil
	default:
		return nil, fmt.Errorf("unknown layout %q", kind)
	}
}

// SquareLayout maps cell (x,y) to the square [x*size, (x+1)*size).
type SquareLayout struct {
	CellSize float64
}

func (l SquareLayout) CellCenter(c Cell) Vec2 {
	return Vec2{X: (float64(c.X) + 0.5) * l.CellSize, Y: (float64(c.Y) + 0.5) * l.CellSize}
}

func (l SquareLayout) WorldToCell(p Vec2) Cell {
	return Cell{X: int(math.Floor(p.X / l.CellSize)), Y: int(math.Floor(p.Y / l.CellSize))}
}

func (l SquareLayout) Corners(c Cell) [4]Vec2 {
	x, y, s := float64(c.X), float64(c.Y), l.CellSize
	return [4]Vec2{
		{X: x * s, Y: y * s},
		{X: (x + 1) * s, Y: y * s},
		{X: (x + 1) * s, Y: (y + 1) * s},
		{X: x * s, Y: (y + 1) * s},
	}
}

// Outliner is implemented by layouts that can report a cell's outline.
type Outliner interface {
	Corners(c Cell) [4]Vec2
}

// IsoLayout is a 2:1 diamond projection: a cell is CellSize wide and half as
// tall in world units.
type IsoLayout struct {
	CellSize float64
}

// GridToWorld projects fractional grid coordinates; cell corners sit on integers.
func (l IsoLayout) GridToWorld(x, y float64) Vec2 {
	return Vec2{
		X: (x - y) * (l.CellSize / 2),
		Y: (x + y) * (l.CellSize / 4),
	}
}

func (l IsoLayout) CellCenter(c Cell) Vec2 {
	return l.GridToWorld(float64(c.X)+0.5, float64(c.Y)+0.5)
}

func (l IsoLayout) WorldToCell(p Vec2) Cell {
	a := p.X / (l.CellSize / 2)
	b := p.Y / (l.CellSize / 4)
	x := (a + b) / 2
	y := (b - a) / 2
	return Cell{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// Corners returns the four diamond corners of c in world space, starting at
// the grid-space bottom-left and winding counter-clockwise.
func (l IsoLayout) Corners(c Cell) [4]Vec2 {
	x, y := float64(c.X), float64(c.Y)
	return [4]Vec2{
		l.GridToWorld(x, y),
		l.GridToWorld(x+1, y),
		l.GridToWorld(x+1, y+1),
		l.GridToWorld(x, y+1),
	}
}
