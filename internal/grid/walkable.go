package grid

// Walkable answers whether an actor may stand on a cell.
type Walkable interface {
	Walkable(c Cell) bool
}

type WalkableFunc func(c Cell) bool

func (f WalkableFunc) Walkable(c Cell) bool {
	return f(c)
}

// Tilemap is a bounded rectangle of tiles starting at (0,0). A cell is walkable
// when it is inside the bounds and not blocked.
type Tilemap struct {
	Width   int
	Height  int
	blocked map[Cell]bool
}

func NewTilemap(width, height int, blocked []Cell) *Tilemap {
	t := &Tilemap{
		Width:   width,
		Height:  height,
		blocked: make(map[Cell]bool, len(blocked)),
	}
	for _, c := range blocked {
		t.blocked[c] = true
	}
	return t
}

func (t *Tilemap) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < t.Width && c.Y < t.Height
}

func (t *Tilemap) Blocked(c Cell) bool {
	return t.blocked[c]
}

func (t *Tilemap) Walkable(c Cell) bool {
	if t == nil {
		return false
	}
	return t.InBounds(c) && !t.blocked[c]
}
