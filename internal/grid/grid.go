package grid

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Kind identifies what sits on a tile.
type Kind uint8

const (
	None Kind = iota
	Tree
	Rock
	Synthoid
	Sentry
	Sentinel
)

var kindNames = [...]string{"none", "tree", "rock", "synthoid", "sentry", "sentinel"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Surface is the read side shared by Builder and Grid. Placement queries run
// over either one.
type Surface interface {
	Width() int
	Depth() int
	Piece(p Point) (Piece, bool)
	Occupied(p Point) bool
}

// Grid is a generated level. Tile shapes are fixed once built; occupancy
// changes during play. A Grid is not safe for concurrent mutation.
type Grid struct {
	width  int
	depth  int
	pieces []Piece

	trees     mapset.Set[Point]
	synthoids mapset.Set[Point]
	sentries  mapset.Set[Point]
	rocks     map[Point]int

	sentinel Point
	start    Point
	current  Point
}

func newGrid(width, depth int) *Grid {
	return &Grid{
		width:     width,
		depth:     depth,
		pieces:    make([]Piece, width*depth),
		trees:     mapset.New[Point](),
		synthoids: mapset.New[Point](),
		sentries:  mapset.New[Point](),
		rocks:     make(map[Point]int),
		sentinel:  Undefined,
		start:     Undefined,
		current:   Undefined,
	}
}

func (g *Grid) Width() int { return g.width }
func (g *Grid) Depth() int { return g.depth }

// InBounds reports whether p addresses a tile of the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.Z >= 0 && p.X < g.width && p.Z < g.depth
}

// Piece returns the tile at p, or false when p is off the grid.
func (g *Grid) Piece(p Point) (Piece, bool) {
	if !g.InBounds(p) {
		return Piece{}, false
	}
	return g.pieces[p.Z*g.width+p.X], true
}

// Pieces returns a copy of every tile in scan order.
func (g *Grid) Pieces() []Piece {
	out := make([]Piece, len(g.pieces))
	copy(out, g.pieces)
	return out
}

func (g *Grid) isFloor(p Point) bool {
	piece, ok := g.Piece(p)
	return ok && piece.IsFloor
}

// Sentinel returns the sentinel's tile while it is still on the grid.
func (g *Grid) Sentinel() (Point, bool) { return g.sentinel, !g.sentinel.IsUndefined() }

// Start returns the player's starting tile.
func (g *Grid) Start() (Point, bool) { return g.start, !g.start.IsUndefined() }

// Current returns the tile of the synthoid the player is inside.
func (g *Grid) Current() (Point, bool) { return g.current, !g.current.IsUndefined() }

func (g *Grid) Trees() []Point     { return sortedSet(g.trees) }
func (g *Grid) Synthoids() []Point { return sortedSet(g.synthoids) }
func (g *Grid) Sentries() []Point  { return sortedSet(g.sentries) }

// Rocks lists the tiles carrying at least one rock, in scan order.
func (g *Grid) Rocks() []Point {
	out := make([]Point, 0, len(g.rocks))
	for p := range g.rocks {
		out = append(out, p)
	}
	SortPoints(out)
	return out
}

func (g *Grid) HasTree(p Point) bool     { return g.trees.Has(p) }
func (g *Grid) HasSynthoid(p Point) bool { return g.synthoids.Has(p) }
func (g *Grid) HasSentry(p Point) bool   { return g.sentries.Has(p) }

// RockCount is the height of the rock stack at p.
func (g *Grid) RockCount(p Point) int { return g.rocks[p] }

// Opponents lists the sentinel, when present, followed by the sentries.
func (g *Grid) Opponents() []Point {
	out := make([]Point, 0, g.sentries.Size()+1)
	if !g.sentinel.IsUndefined() {
		out = append(out, g.sentinel)
	}
	return append(out, g.Sentries()...)
}

// Topmost returns the occupant a player or opponent would interact with at
// p. Trees and opponents sit above synthoids, which sit above the rock stack.
func (g *Grid) Topmost(p Point) (Kind, bool) {
	if !g.InBounds(p) {
		return None, false
	}
	switch {
	case g.trees.Has(p):
		return Tree, true
	case g.sentinel == p:
		return Sentinel, true
	case g.sentries.Has(p):
		return Sentry, true
	case g.synthoids.Has(p):
		return Synthoid, true
	case g.rocks[p] > 0:
		return Rock, true
	default:
		return None, true
	}
}

// Occupied reports whether p holds anything that keeps it out of the empty
// floor set, including the start and current tiles.
func (g *Grid) Occupied(p Point) bool {
	return p == g.sentinel || p == g.start || p == g.current ||
		g.sentries.Has(p) || g.synthoids.Has(p) || g.trees.Has(p) || g.rocks[p] > 0
}

// AddTree places a tree on a floor tile that has none.
func (g *Grid) AddTree(p Point) bool {
	if !g.isFloor(p) || g.trees.Has(p) {
		return false
	}
	g.trees.Put(p)
	return true
}

func (g *Grid) RemoveTree(p Point) bool {
	if !g.trees.Has(p) {
		return false
	}
	g.trees.Remove(p)
	return true
}

// AddRock pushes one rock onto the stack at p.
func (g *Grid) AddRock(p Point) bool {
	if !g.isFloor(p) {
		return false
	}
	g.rocks[p]++
	return true
}

// RemoveRock pops one rock; the last one clears the tile.
func (g *Grid) RemoveRock(p Point) bool {
	n := g.rocks[p]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(g.rocks, p)
	} else {
		g.rocks[p] = n - 1
	}
	return true
}

func (g *Grid) AddSynthoid(p Point) bool {
	if !g.isFloor(p) || g.synthoids.Has(p) {
		return false
	}
	g.synthoids.Put(p)
	return true
}

func (g *Grid) RemoveSynthoid(p Point) bool {
	if !g.synthoids.Has(p) {
		return false
	}
	g.synthoids.Remove(p)
	return true
}

func (g *Grid) RemoveSentry(p Point) bool {
	if !g.sentries.Has(p) {
		return false
	}
	g.sentries.Remove(p)
	return true
}

func (g *Grid) RemoveSentinel() bool {
	if g.sentinel.IsUndefined() {
		return false
	}
	g.sentinel = Undefined
	return true
}

// SetCurrent moves the player to p. Undefined takes the player out of the
// scene; any other point must be a floor tile.
func (g *Grid) SetCurrent(p Point) bool {
	if !p.IsUndefined() && !g.isFloor(p) {
		return false
	}
	g.current = p
	return true
}

func sortedSet(s mapset.Set[Point]) []Point {
	out := make([]Point, 0, s.Size())
	s.Each(func(p Point) {
		out = append(out, p)
	})
	SortPoints(out)
	return out
}
