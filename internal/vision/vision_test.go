package vision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/ai"
	"sentinel/internal/grid"
)

// wallGrid is 12×3 with a ridge two levels high across column 8.
func wallGrid(t *testing.T) *grid.Grid {
	t.Helper()
	b, err := grid.NewBuilder(12, 3)
	require.NoError(t, err)
	b.BuildPlateau(grid.RectAt(8, 0, 1, 3))
	b.BuildPlateau(grid.RectAt(8, 0, 1, 3))
	b.ProcessSlopes()
	return b.BuildGrid()
}

func eastFacing(p grid.Point) ai.Viewer {
	return ai.Viewer{Kind: grid.Sentry, Position: p, Heading: math.Pi / 2}
}

func TestHeadingConvention(t *testing.T) {
	o := grid.Pt(5, 5)
	assert.InDelta(t, 0, HeadingTo(o, grid.Pt(5, 2)), 1e-9, "north")
	assert.InDelta(t, math.Pi/2, HeadingTo(o, grid.Pt(8, 5)), 1e-9, "east")
	assert.InDelta(t, math.Pi, math.Abs(HeadingTo(o, grid.Pt(5, 8))), 1e-9, "south")
	assert.InDelta(t, -math.Pi/2, HeadingTo(o, grid.Pt(2, 5)), 1e-9, "west")
}

func TestInCone(t *testing.T) {
	v := New(wallGrid(t))
	viewer := eastFacing(grid.Pt(0, 1))
	assert.True(t, v.InCone(viewer, grid.Pt(3, 1)))
	assert.False(t, v.InCone(viewer, grid.Pt(0, 0)), "behind the cone edge")
	assert.False(t, v.InCone(viewer, grid.Pt(0, 1)), "own tile")

	v.MaxRange = 2
	assert.False(t, v.InCone(viewer, grid.Pt(3, 1)), "out of range")
}

func TestRidgeBlocksSight(t *testing.T) {
	g := wallGrid(t)
	v := New(g)
	assert.True(t, v.HasLineOfSight(grid.Pt(0, 1), grid.Pt(2, 1)))
	assert.False(t, v.HasLineOfSight(grid.Pt(0, 1), grid.Pt(11, 1)))

	top := grid.Pt(8, 1)
	assert.True(t, v.HasLineOfSight(top, grid.Pt(11, 1)), "the ridge sees down both sides")
	assert.False(t, v.HasLineOfSight(grid.Pt(0, 1), grid.Pt(14, 1)))
}

func TestVisibleListsRequireContext(t *testing.T) {
	g := wallGrid(t)
	require.True(t, g.AddSynthoid(grid.Pt(2, 1)))
	require.True(t, g.AddSynthoid(grid.Pt(11, 1)))
	require.True(t, g.AddRock(grid.Pt(3, 1)))
	require.True(t, g.AddRock(grid.Pt(1, 1)))
	require.True(t, g.AddTree(grid.Pt(1, 1)))
	require.True(t, g.AddTree(grid.Pt(2, 2)))

	v := New(g)
	viewer := eastFacing(grid.Pt(0, 1))
	assert.Nil(t, v.VisibleSynthoids(viewer, nil))
	assert.Nil(t, v.VisibleRocks(viewer, nil))
	assert.Nil(t, v.VisibleTreesOnRocks(viewer, nil))

	ctx := struct{}{}
	assert.Equal(t, []grid.Point{grid.Pt(2, 1)}, v.VisibleSynthoids(viewer, ctx), "the far synthoid hides behind the ridge")
	assert.Equal(t, []grid.Point{grid.Pt(3, 1)}, v.VisibleRocks(viewer, ctx), "rocks under a tree are not topmost")
	assert.Equal(t, []grid.Point{grid.Pt(1, 1)}, v.VisibleTreesOnRocks(viewer, ctx))
}
