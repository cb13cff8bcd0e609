package gameplay

import (
	"sentinel/internal/grid"
	"sentinel/internal/random"
)

// TerrainOperations applies occupancy changes to a grid. It knows nothing
// about energy.
type TerrainOperations struct {
	grid *grid.Grid
}

func NewTerrainOperations(g *grid.Grid) *TerrainOperations {
	return &TerrainOperations{grid: g}
}

func (t *TerrainOperations) Grid() *grid.Grid { return t.grid }

// CanPlace reports whether a new object may go on p: a floor tile that is
// empty or topped by rock.
func (t *TerrainOperations) CanPlace(p grid.Point) bool {
	piece, ok := t.grid.Piece(p)
	if !ok || !piece.IsFloor {
		return false
	}
	top, _ := t.grid.Topmost(p)
	return top == grid.None || top == grid.Rock
}

// Place builds kind on p. Only trees, rocks and synthoids can be built.
func (t *TerrainOperations) Place(kind grid.Kind, p grid.Point) bool {
	if !t.CanPlace(p) {
		return false
	}
	switch kind {
	case grid.Tree:
		return t.grid.AddTree(p)
	case grid.Rock:
		return t.grid.AddRock(p)
	case grid.Synthoid:
		return t.grid.AddSynthoid(p)
	default:
		return false
	}
}

// AbsorbTopmost removes whatever sits on top at p and returns its kind. The
// synthoid the player is inside cannot be absorbed.
func (t *TerrainOperations) AbsorbTopmost(p grid.Point) (grid.Kind, bool) {
	top, ok := t.grid.Topmost(p)
	if !ok || top == grid.None {
		return grid.None, false
	}
	var removed bool
	switch top {
	case grid.Tree:
		removed = t.grid.RemoveTree(p)
	case grid.Rock:
		removed = t.grid.RemoveRock(p)
	case grid.Synthoid:
		if current, ok := t.grid.Current(); ok && current == p {
			return grid.None, false
		}
		removed = t.grid.RemoveSynthoid(p)
	case grid.Sentry:
		removed = t.grid.RemoveSentry(p)
	case grid.Sentinel:
		removed = t.grid.RemoveSentinel()
	}
	if !removed {
		return grid.None, false
	}
	return top, true
}

// RandomEmptyFloor draws an empty floor tile accepted by keep, or any empty
// floor tile when keep is nil.
func (t *TerrainOperations) RandomEmptyFloor(rng *random.ValueGenerator, keep func(grid.Piece) bool) (grid.Point, bool) {
	pieces := grid.NewFloorIndex(t.grid, nil).AllEmptyFloorPieces()
	if keep != nil {
		filtered := pieces[:0]
		for _, piece := range pieces {
			if keep(piece) {
				filtered = append(filtered, piece)
			}
		}
		pieces = filtered
	}
	piece, ok := random.NextItem(rng, pieces)
	if !ok {
		return grid.Undefined, false
	}
	return piece.Point, true
}
