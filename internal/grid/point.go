package grid

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Point addresses one tile. X runs west to east, Z runs north to south.
type Point struct {
	X int `json:"x" yaml:"x"`
	Z int `json:"z" yaml:"z"`
}

// Undefined marks a position that has not been placed.
var Undefined = Point{X: -1, Z: -1}

// Pt is a convenience constructor for Point.
func Pt(x, z int) Point { return Point{X: x, Z: z} }

// IsUndefined reports whether p is the Undefined sentinel.
func (p Point) IsUndefined() bool { return p == Undefined }

// Neighbor returns the adjacent point in direction d.
func (p Point) Neighbor(d Direction) Point {
	dx, dz := d.Delta()
	return Point{X: p.X + dx, Z: p.Z + dz}
}

// Distance is the euclidean distance between two tile centres.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(float64(p.X-o.X), float64(p.Z-o.Z))
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Z) }

// ComparePoints orders points in scan order: row by row, west to east.
func ComparePoints(a, b Point) int {
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// SortPoints sorts points in scan order in place.
func SortPoints(points []Point) {
	slices.SortFunc(points, ComparePoints)
}

// Direction is one of the four cardinal directions, encoded as a single bit
// so that several directions fit in one Slopes mask.
type Direction uint8

const (
	North Direction = 1 << iota
	East
	South
	West
)

// Directions lists the cardinal directions in bit order.
var Directions = [4]Direction{North, East, South, West}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return 0
	}
}

// Delta returns the unit step taken when moving in direction d.
func (d Direction) Delta() (dx, dz int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Slopes is a bitmask of the directions a slope tile descends toward.
type Slopes uint8

// Has reports whether d is set.
func (s Slopes) Has(d Direction) bool { return s&Slopes(d) != 0 }

// With returns s with d set.
func (s Slopes) With(d Direction) Slopes { return s | Slopes(d) }

// Piece is an immutable snapshot of one tile.
type Piece struct {
	Point   Point   `json:"point" yaml:"point"`
	IsFloor bool    `json:"isFloor" yaml:"isFloor"`
	Level   float64 `json:"level" yaml:"level"`
	Slopes  Slopes  `json:"slopes" yaml:"slopes"`
}

// FloorLevel returns the integral height of a floor piece.
func (p Piece) FloorLevel() int { return int(math.Floor(p.Level)) }

// Rect is a half-open rectangle of tiles: MinX <= x < MaxX, MinZ <= z < MaxZ.
type Rect struct {
	MinX, MinZ int
	MaxX, MaxZ int
}

// RectAt builds a w×d rectangle anchored at its north-west corner.
func RectAt(x, z, w, d int) Rect {
	return Rect{MinX: x, MinZ: z, MaxX: x + w, MaxZ: z + d}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Z >= r.MinZ && p.Z < r.MaxZ
}

// Empty reports whether r covers no tile.
func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxZ <= r.MinZ }

// Points lists the points of r in scan order.
func (r Rect) Points() []Point {
	if r.Empty() {
		return nil
	}
	out := make([]Point, 0, (r.MaxX-r.MinX)*(r.MaxZ-r.MinZ))
	for z := r.MinZ; z < r.MaxZ; z++ {
		for x := r.MinX; x < r.MaxX; x++ {
			out = append(out, Point{X: x, Z: z})
		}
	}
	return out
}
