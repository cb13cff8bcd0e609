package grid

import "fmt"

// Quadrant is one of the four halves-by-halves partitions of a grid.
type Quadrant uint8

const (
	NorthWest Quadrant = iota
	NorthEast
	SouthWest
	SouthEast
)

// Quadrants lists every quadrant in a fixed order.
var Quadrants = [4]Quadrant{NorthWest, NorthEast, SouthWest, SouthEast}

func (q Quadrant) String() string {
	switch q {
	case NorthWest:
		return "nw"
	case NorthEast:
		return "ne"
	case SouthWest:
		return "sw"
	case SouthEast:
		return "se"
	default:
		return fmt.Sprintf("quadrant(%d)", uint8(q))
	}
}

// Opposite returns the diagonally opposite quadrant.
func (q Quadrant) Opposite() Quadrant {
	switch q {
	case NorthWest:
		return SouthEast
	case NorthEast:
		return SouthWest
	case SouthWest:
		return NorthEast
	default:
		return NorthWest
	}
}

// Bounds is the tile rectangle q covers on a width×depth grid. The west and
// north halves take the smaller share of an odd dimension.
func (q Quadrant) Bounds(width, depth int) Rect {
	midX, midZ := width/2, depth/2
	switch q {
	case NorthWest:
		return Rect{MinX: 0, MinZ: 0, MaxX: midX, MaxZ: midZ}
	case NorthEast:
		return Rect{MinX: midX, MinZ: 0, MaxX: width, MaxZ: midZ}
	case SouthWest:
		return Rect{MinX: 0, MinZ: midZ, MaxX: midX, MaxZ: depth}
	default:
		return Rect{MinX: midX, MinZ: midZ, MaxX: width, MaxZ: depth}
	}
}

// QuadrantContaining finds the quadrant holding p. It reports false only for
// points off the grid.
func QuadrantContaining(width, depth int, p Point) (Quadrant, bool) {
	for _, q := range Quadrants {
		if q.Bounds(width, depth).Contains(p) {
			return q, true
		}
	}
	return NorthWest, false
}
