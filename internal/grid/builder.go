package grid

import (
	"fmt"
	"math"
	"slices"
)

type builderPiece struct {
	level   float64
	isFloor bool
	slopes  Slopes
}

// raise is one pending neighbour adjustment: the tile at point must reach at
// least required. back points at the tile that asked for it.
type raise struct {
	point    Point
	required float64
	back     Direction
}

// Builder is the mutable working grid used while a level is generated. It is
// consumed once by BuildGrid.
type Builder struct {
	width  int
	depth  int
	pieces []builderPiece

	SentinelPosition  Point
	SentryPositions   []Point
	StartPosition     Point
	TreePositions     []Point
	SynthoidPositions []Point
}

// NewBuilder returns a flat grid of floor tiles at level 0.
func NewBuilder(width, depth int) (*Builder, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, depth)
	}
	pieces := make([]builderPiece, width*depth)
	for i := range pieces {
		pieces[i].isFloor = true
	}
	return &Builder{
		width:            width,
		depth:            depth,
		pieces:           pieces,
		SentinelPosition: Undefined,
		StartPosition:    Undefined,
	}, nil
}

func (b *Builder) Width() int { return b.width }
func (b *Builder) Depth() int { return b.depth }

func (b *Builder) index(p Point) (int, bool) {
	if p.X < 0 || p.Z < 0 || p.X >= b.width || p.Z >= b.depth {
		return 0, false
	}
	return p.Z*b.width + p.X, true
}

// Piece returns a snapshot of the tile at p.
func (b *Builder) Piece(p Point) (Piece, bool) {
	idx, ok := b.index(p)
	if !ok {
		return Piece{}, false
	}
	bp := b.pieces[idx]
	return Piece{Point: p, IsFloor: bp.isFloor, Level: bp.level, Slopes: bp.slopes}, true
}

// Occupied reports whether any placed entity already claims p.
func (b *Builder) Occupied(p Point) bool {
	if p == b.SentinelPosition || p == b.StartPosition {
		return true
	}
	return slices.Contains(b.SentryPositions, p) ||
		slices.Contains(b.TreePositions, p) ||
		slices.Contains(b.SynthoidPositions, p)
}

// BuildFloor raises the tile at p by one step and reshapes the surrounding
// tiles into slopes so the terrain stays continuous.
func (b *Builder) BuildFloor(p Point) {
	idx, ok := b.index(p)
	if !ok {
		return
	}
	b.promote(idx)
	work := b.pushNeighbors(nil, p, b.pieces[idx].level-0.5, 0)

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		idx, ok := b.index(item.point)
		if !ok {
			continue
		}
		piece := &b.pieces[idx]
		if piece.level >= item.required {
			continue
		}
		if piece.isFloor && item.required-piece.level == 0.5 {
			piece.level = item.required
			piece.isFloor = false
			continue
		}
		// Too low for a single slope: promote it, settle its own neighbours
		// first, then come back to it.
		b.promote(idx)
		work = append(work, item)
		work = b.pushNeighbors(work, item.point, piece.level-0.5, item.back)
	}
}

func (b *Builder) promote(idx int) {
	piece := &b.pieces[idx]
	if piece.isFloor {
		piece.level++
	} else {
		piece.level += 0.5
		piece.isFloor = true
	}
	piece.slopes = 0
}

func (b *Builder) pushNeighbors(work []raise, p Point, required float64, back Direction) []raise {
	for _, d := range Directions {
		if d == back {
			continue
		}
		next := p.Neighbor(d)
		if _, ok := b.index(next); !ok {
			continue
		}
		work = append(work, raise{point: next, required: required, back: d.Opposite()})
	}
	return work
}

// BuildPlateau applies BuildFloor once to every tile of r that lies on the
// grid.
func (b *Builder) BuildPlateau(r Rect) {
	for _, p := range r.Points() {
		b.BuildFloor(p)
	}
}

// BuildPeak is a plateau over a small rectangle; on raised ground repeated
// peaks stack into a stepped cone.
func (b *Builder) BuildPeak(r Rect) { b.BuildPlateau(r) }

// ProcessSlopes tags every slope tile with the directions it descends toward.
// Rows are swept from both horizontal edges and columns from both vertical
// edges.
func (b *Builder) ProcessSlopes() {
	for i := range b.pieces {
		b.pieces[i].slopes = 0
	}
	for z := 0; z < b.depth; z++ {
		b.sweep(Point{X: 0, Z: z}, East, b.width)
		b.sweep(Point{X: b.width - 1, Z: z}, West, b.width)
	}
	for x := 0; x < b.width; x++ {
		b.sweep(Point{X: x, Z: 0}, South, b.depth)
		b.sweep(Point{X: x, Z: b.depth - 1}, North, b.depth)
	}
	for i := range b.pieces {
		if !b.pieces[i].isFloor && b.pieces[i].slopes == 0 {
			b.pieces[i].slopes = b.descents(Point{X: i % b.width, Z: i / b.width})
		}
	}
}

// descents tags a slope the sweeps could not reach, which happens when its
// only higher neighbours are slopes themselves. It descends away from every
// higher neighbour, or toward a lower one if none is higher.
func (b *Builder) descents(p Point) Slopes {
	idx, _ := b.index(p)
	level := b.pieces[idx].level
	var away, toward Slopes
	for _, d := range Directions {
		n, ok := b.index(p.Neighbor(d))
		if !ok {
			continue
		}
		switch other := b.pieces[n].level; {
		case other > level:
			away = away.With(d.Opposite())
		case other < level:
			toward = toward.With(d)
		}
	}
	if away != 0 {
		return away
	}
	return toward
}

func (b *Builder) sweep(start Point, dir Direction, steps int) {
	var expected float64
	hasExpected := false
	p := start
	for i := 0; i < steps; i++ {
		idx, ok := b.index(p)
		if !ok {
			return
		}
		piece := &b.pieces[idx]
		switch {
		case piece.isFloor:
			expected = piece.level - 0.5
			hasExpected = true
		case hasExpected && piece.level == expected:
			piece.slopes = piece.slopes.With(dir)
			expected--
		default:
			expected = piece.level - 0.5
			hasExpected = true
		}
		p = p.Neighbor(dir)
	}
}

// LowestFloorLevel returns the lowest floor height on the grid.
func (b *Builder) LowestFloorLevel() (float64, bool) {
	lowest := math.Inf(1)
	found := false
	for _, piece := range b.pieces {
		if piece.isFloor && piece.level < lowest {
			lowest = piece.level
			found = true
		}
	}
	return lowest, found
}

// Normalize shifts every tile down so that the lowest floor sits at level 0.
func (b *Builder) Normalize() float64 {
	lowest, ok := b.LowestFloorLevel()
	if !ok || lowest <= 0 {
		return 0
	}
	for i := range b.pieces {
		b.pieces[i].level -= lowest
	}
	return lowest
}

// BuildGrid freezes the tile shapes and position lists into a Grid.
func (b *Builder) BuildGrid() *Grid {
	g := newGrid(b.width, b.depth)
	for i, bp := range b.pieces {
		g.pieces[i] = Piece{
			Point:   Point{X: i % b.width, Z: i / b.width},
			IsFloor: bp.isFloor,
			Level:   bp.level,
			Slopes:  bp.slopes,
		}
	}
	g.sentinel = b.SentinelPosition
	g.start = b.StartPosition
	for _, p := range b.SentryPositions {
		g.sentries.Put(p)
	}
	for _, p := range b.TreePositions {
		g.trees.Put(p)
	}
	for _, p := range b.SynthoidPositions {
		g.synthoids.Put(p)
	}
	return g
}
