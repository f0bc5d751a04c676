package gui

import (
	"testing"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

func TestViewportRoundTrip(t *testing.T) {
	for _, v := range []viewport{
		{originX: 100, originY: 50, scale: 32},
		{originX: -7, originY: 300, scale: 12.5, flipY: true},
	} {
		p := grid.Vec2{X: 3.25, Y: -1.5}
		sx, sy := v.toScreen(p)
		back := v.toWorld(sx, sy)
		if back.Dist(p) > 1e-3 {
			t.Fatalf("round trip through %+v: got %v want %v", v, back, p)
		}
	}
}

func TestFitViewportKeepsGridInsideRect(t *testing.T) {
	world := grid.NewTilemap(10, 6, nil)
	for _, layout := range []grid.Layout{grid.IsoLayout{CellSize: 1}, grid.SquareLayout{CellSize: 1}} {
		v := fitViewport(layout, world, 20, 40, 600, 400, 10)
		for cy := 0; cy < world.Height; cy++ {
			for cx := 0; cx < world.Width; cx++ {
				for _, p := range cellOutline(layout, grid.Cell{X: cx, Y: cy}) {
					sx, sy := v.toScreen(p)
					if sx < 29.9 || sx > 610.1 || sy < 49.9 || sy > 430.1 {
						t.Fatalf("%T: corner %v lands outside at (%v,%v)", layout, p, sx, sy)
					}
				}
			}
		}
	}
}

func TestFitViewportSquareIsNorthUp(t *testing.T) {
	layout := grid.SquareLayout{CellSize: 1}
	v := fitViewport(layout, grid.NewTilemap(4, 4, nil), 0, 0, 400, 400, 0)
	_, southY := v.toScreen(layout.CellCenter(grid.Cell{X: 0, Y: 0}))
	_, northY := v.toScreen(layout.CellCenter(grid.Cell{X: 0, Y: 3}))
	if northY >= southY {
		t.Fatalf("expected north row above south row, got north=%v south=%v", northY, southY)
	}
}

func TestHoveredCell(t *testing.T) {
	layout := grid.IsoLayout{CellSize: 1}
	world := grid.NewTilemap(5, 5, nil)
	v := fitViewport(layout, world, 0, 0, 800, 600, 20)

	want := grid.Cell{X: 2, Y: 4}
	sx, sy := v.toScreen(layout.CellCenter(want))
	got, ok := hoveredCell(v, layout, world, sx, sy)
	if !ok || got != want {
		t.Fatalf("expected hover on %v, got %v (on map %v)", want, got, ok)
	}

	if _, ok := hoveredCell(v, layout, world, 0, 0); ok {
		t.Fatalf("expected screen corner to be off the map")
	}
}
