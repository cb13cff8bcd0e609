package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T, w, d int) *Builder {
	t.Helper()
	b, err := NewBuilder(w, d)
	require.NoError(t, err)
	return b
}

func mustPiece(t *testing.T, s Surface, x, z int) Piece {
	t.Helper()
	p, ok := s.Piece(Pt(x, z))
	require.True(t, ok, "piece (%d,%d) out of bounds", x, z)
	return p
}

func TestNewBuilderRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 3}} {
		_, err := NewBuilder(dims[0], dims[1])
		assert.Error(t, err, "dims %v", dims)
	}
}

func TestBuildFloorTwiceOnSingleTile(t *testing.T) {
	b := newTestBuilder(t, 1, 1)

	b.BuildFloor(Pt(0, 0))
	b.ProcessSlopes()
	p := mustPiece(t, b, 0, 0)
	assert.True(t, p.IsFloor)
	assert.Equal(t, 1.0, p.Level)
	assert.Zero(t, p.Slopes)

	b.BuildFloor(Pt(0, 0))
	b.ProcessSlopes()
	p = mustPiece(t, b, 0, 0)
	assert.True(t, p.IsFloor)
	assert.Equal(t, 2.0, p.Level)
	assert.Zero(t, p.Slopes)
}

func TestBuildFloorOnSlopeCompletesHalfStep(t *testing.T) {
	b := newTestBuilder(t, 2, 1)
	b.BuildFloor(Pt(0, 0))

	slope := mustPiece(t, b, 1, 0)
	require.False(t, slope.IsFloor)
	require.Equal(t, 0.5, slope.Level)

	b.BuildFloor(Pt(1, 0))
	p := mustPiece(t, b, 1, 0)
	assert.True(t, p.IsFloor)
	assert.Equal(t, 1.0, p.Level)
}

func TestAdjacentBuildsMergeIntoPlateau(t *testing.T) {
	b := newTestBuilder(t, 2, 2)
	b.BuildFloor(Pt(0, 0))
	b.BuildFloor(Pt(1, 0))
	b.ProcessSlopes()

	for x := 0; x < 2; x++ {
		top := mustPiece(t, b, x, 0)
		assert.True(t, top.IsFloor, "row 0 x=%d", x)
		assert.Equal(t, 1.0, top.Level)
		assert.Zero(t, top.Slopes, "row 0 x=%d should have no slope bits", x)

		bottom := mustPiece(t, b, x, 1)
		assert.False(t, bottom.IsFloor, "row 1 x=%d", x)
		assert.Equal(t, 0.5, bottom.Level)
		assert.Equal(t, Slopes(South), bottom.Slopes, "row 1 x=%d", x)
	}
}

func TestBuildFloorOutOfBoundsIsNoop(t *testing.T) {
	b := newTestBuilder(t, 2, 2)
	b.BuildFloor(Pt(5, 5))
	b.BuildFloor(Pt(-1, 0))
	for _, p := range RectAt(0, 0, 2, 2).Points() {
		piece, ok := b.Piece(p)
		require.True(t, ok)
		assert.Equal(t, 0.0, piece.Level)
	}
	_, ok := b.Piece(Pt(2, 0))
	assert.False(t, ok)
}

func TestPlateauRingAndSlopeDirections(t *testing.T) {
	b := newTestBuilder(t, 7, 7)
	b.BuildPlateau(RectAt(2, 2, 3, 3))
	b.ProcessSlopes()

	for _, p := range RectAt(2, 2, 3, 3).Points() {
		piece := mustPiece(t, b, p.X, p.Z)
		assert.True(t, piece.IsFloor)
		assert.Equal(t, 1.0, piece.Level)
	}
	assert.Equal(t, Slopes(East), mustPiece(t, b, 5, 3).Slopes)
	assert.Equal(t, Slopes(West), mustPiece(t, b, 1, 3).Slopes)
	assert.Equal(t, Slopes(North), mustPiece(t, b, 3, 1).Slopes)
	assert.Equal(t, Slopes(South), mustPiece(t, b, 3, 5).Slopes)

	corner := mustPiece(t, b, 1, 1)
	assert.True(t, corner.IsFloor, "diagonal tiles are not neighbours")
	assert.Equal(t, 0.0, corner.Level)
}

func TestPeakOnPlateauKeepsTilesConsistent(t *testing.T) {
	b := newTestBuilder(t, 7, 7)
	b.BuildPlateau(RectAt(2, 2, 3, 3))
	b.BuildPeak(RectAt(3, 3, 1, 1))
	b.ProcessSlopes()

	summit := mustPiece(t, b, 3, 3)
	assert.True(t, summit.IsFloor)
	assert.Equal(t, 2.0, summit.Level)

	for _, d := range Directions {
		p := Pt(3, 3).Neighbor(d)
		piece := mustPiece(t, b, p.X, p.Z)
		assert.False(t, piece.IsFloor)
		assert.Equal(t, 1.5, piece.Level)
		assert.True(t, piece.Slopes.Has(d.Opposite()) || piece.Slopes.Has(d), "slope at %v", p)
	}
	assertFloorSlopeInvariant(t, b)
}

func TestSlopesBehindSlopesGetDirections(t *testing.T) {
	b := newTestBuilder(t, 4, 3)
	b.BuildPlateau(RectAt(0, 1, 3, 1))
	b.BuildFloor(Pt(2, 1))
	b.ProcessSlopes()

	assertFloorSlopeInvariant(t, b)
	for _, p := range []Point{Pt(1, 0), Pt(3, 0), Pt(1, 2), Pt(3, 2)} {
		piece := mustPiece(t, b, p.X, p.Z)
		require.False(t, piece.IsFloor, "%v", p)
		assert.NotZero(t, piece.Slopes, "%v", p)
	}
	assert.True(t, mustPiece(t, b, 1, 0).Slopes.Has(North))
	assert.True(t, mustPiece(t, b, 1, 2).Slopes.Has(South))
}

func TestNeighbourNeverRaisedAboveBridge(t *testing.T) {
	b := newTestBuilder(t, 5, 1)
	for i := 0; i < 3; i++ {
		b.BuildFloor(Pt(2, 0))
	}
	levels := make([]float64, 5)
	for x := range levels {
		levels[x] = mustPiece(t, b, x, 0).Level
	}
	assert.Equal(t, []float64{1.5, 2.5, 3, 2.5, 1.5}, levels)
	for x := 0; x < 4; x++ {
		assert.LessOrEqual(t, math.Abs(levels[x]-levels[x+1]), 1.0)
	}
}

func TestNormalizeGroundsLowestFloor(t *testing.T) {
	b := newTestBuilder(t, 1, 1)
	b.BuildFloor(Pt(0, 0))
	b.BuildFloor(Pt(0, 0))
	assert.Equal(t, 2.0, b.Normalize())
	assert.Equal(t, 0.0, mustPiece(t, b, 0, 0).Level)
	assert.Equal(t, 0.0, b.Normalize())
}

func TestBuildGridCarriesPositions(t *testing.T) {
	b := newTestBuilder(t, 4, 4)
	b.SentinelPosition = Pt(3, 3)
	b.SentryPositions = []Point{Pt(0, 3)}
	b.StartPosition = Pt(0, 0)
	b.TreePositions = []Point{Pt(2, 1), Pt(1, 1)}
	assert.True(t, b.Occupied(Pt(1, 1)))
	assert.False(t, b.Occupied(Pt(2, 2)))

	g := b.BuildGrid()
	sentinel, ok := g.Sentinel()
	require.True(t, ok)
	assert.Equal(t, Pt(3, 3), sentinel)
	assert.Equal(t, []Point{Pt(0, 3)}, g.Sentries())
	assert.Equal(t, []Point{Pt(1, 1), Pt(2, 1)}, g.Trees())
	_, ok = g.Current()
	assert.False(t, ok)
}

func assertFloorSlopeInvariant(t *testing.T, s Surface) {
	t.Helper()
	for _, p := range RectAt(0, 0, s.Width(), s.Depth()).Points() {
		piece, _ := s.Piece(p)
		frac := piece.Level - math.Floor(piece.Level)
		if piece.IsFloor {
			assert.Zero(t, frac, "floor %v at level %v", p, piece.Level)
			continue
		}
		assert.Equal(t, 0.5, frac, "slope %v at level %v", p, piece.Level)
		assert.NotZero(t, piece.Slopes, "slope %v has no direction", p)
	}
}
