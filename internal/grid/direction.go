package grid

import "strings"

var directions = map[string]Cell{
	"e":         {X: 1, Y: 0},
	"east":      {X: 1, Y: 0},
	"w":         {X: -1, Y: 0},
	"west":      {X: -1, Y: 0},
	"n":         {X: 0, Y: 1},
	"north":     {X: 0, Y: 1},
	"s":         {X: 0, Y: -1},
	"south":     {X: 0, Y: -1},
	"ne":        {X: 1, Y: 1},
	"northeast": {X: 1, Y: 1},
	"nw":        {X: -1, Y: 1},
	"northwest": {X: -1, Y: 1},
	"se":        {X: 1, Y: -1},
	"southeast": {X: 1, Y: -1},
	"sw":        {X: -1, Y: -1},
	"southwest": {X: -1, Y: -1},
}

// Direction maps a direction word to its unit delta. Matching is exact and
// case-insensitive.
func Direction(word string) (Cell, bool) {
	d, ok := directions[strings.ToLower(word)]
	return d, ok
}

// DirectionWords lists the vocabulary, useful for help output.
func DirectionWords() []string {
	return []string{"n", "north", "s", "south", "e", "east", "w", "west", "ne", "northeast", "nw", "northwest", "se", "southeast", "sw", "southwest"}
}

// Leg is a straight run of Count identical unit steps.
type Leg struct {
	Step  Cell
	Count int
}

// ManhattanLegs returns the route from a to b as at most two legs: every X
// step first, then every Y step. There is no obstacle avoidance.
func ManhattanLegs(a, b Cell) []Leg {
	d := b.Sub(a)
	legs := make([]Leg, 0, 2)
	if d.X != 0 {
		legs = append(legs, Leg{Step: Cell{X: sign(d.X)}, Count: abs(d.X)})
	}
	if d.Y != 0 {
		legs = append(legs, Leg{Step: Cell{Y: sign(d.Y)}, Count: abs(d.Y)})
	}
	return legs
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
