package grid

import "slices"

// FloorIndex groups the empty floor tiles of a surface by integral height.
// It is a snapshot: rebuild it after the surface changes.
type FloorIndex struct {
	levels []int
	pieces map[int][]Piece
}

// NewFloorIndex indexes the whole surface, or only quadrant q when q is not
// nil.
func NewFloorIndex(s Surface, q *Quadrant) *FloorIndex {
	area := RectAt(0, 0, s.Width(), s.Depth())
	if q != nil {
		area = q.Bounds(s.Width(), s.Depth())
	}
	idx := &FloorIndex{pieces: make(map[int][]Piece)}
	for _, p := range area.Points() {
		piece, ok := s.Piece(p)
		if !ok || !piece.IsFloor || s.Occupied(p) {
			continue
		}
		level := piece.FloorLevel()
		idx.pieces[level] = append(idx.pieces[level], piece)
	}
	for level := range idx.pieces {
		idx.levels = append(idx.levels, level)
	}
	slices.Sort(idx.levels)
	return idx
}

// FloorLevels lists the heights that have at least one empty tile.
func (f *FloorIndex) FloorLevels() []int {
	return slices.Clone(f.levels)
}

// EmptyFloorPieces returns the empty tiles at level in scan order.
func (f *FloorIndex) EmptyFloorPieces(level int) []Piece {
	return slices.Clone(f.pieces[level])
}

func (f *FloorIndex) LowestEmptyFloorPieces() []Piece {
	if len(f.levels) == 0 {
		return nil
	}
	return f.EmptyFloorPieces(f.levels[0])
}

func (f *FloorIndex) HighestEmptyFloorPieces() []Piece {
	if len(f.levels) == 0 {
		return nil
	}
	return f.EmptyFloorPieces(f.levels[len(f.levels)-1])
}

// AllEmptyFloorPieces returns every empty tile, lowest level first.
func (f *FloorIndex) AllEmptyFloorPieces() []Piece {
	var out []Piece
	for _, level := range f.levels {
		out = append(out, f.pieces[level]...)
	}
	return out
}

// Empty reports whether no tile qualified.
func (f *FloorIndex) Empty() bool { return len(f.levels) == 0 }

// Points strips a piece list down to its coordinates.
func Points(pieces []Piece) []Point {
	out := make([]Point, len(pieces))
	for i, p := range pieces {
		out[i] = p.Point
	}
	return out
}
