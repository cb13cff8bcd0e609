// Package vision is a tile-based stand-in for the renderer's line-of-sight
// test. It is good enough to drive opponents in headless runs and tests.
package vision

import (
	"math"

	"sentinel/internal/ai"
	"sentinel/internal/grid"
)

const (
	defaultFOVDeg    = 60.0
	defaultRange     = 24.0
	defaultEyeHeight = 1.0
	objectHeight     = 0.5
	samplesPerTile   = 4
)

// TileVisibility answers visibility from tile heights only. It needs a
// non-nil context, like the renderer it stands in for.
type TileVisibility struct {
	Grid      *grid.Grid
	FOV       float64 // radians, total arc width
	MaxRange  float64 // tiles
	EyeHeight float64 // above the viewer's tile
}

var _ ai.Visibility = (*TileVisibility)(nil)

// New creates a TileVisibility with defaults.
func New(g *grid.Grid) *TileVisibility {
	return &TileVisibility{
		Grid:      g,
		FOV:       defaultFOVDeg * math.Pi / 180.0,
		MaxRange:  defaultRange,
		EyeHeight: defaultEyeHeight,
	}
}

func (t *TileVisibility) VisibleSynthoids(v ai.Viewer, ctx any) []grid.Point {
	if ctx == nil {
		return nil
	}
	return t.filter(v, t.Grid.Synthoids(), nil)
}

func (t *TileVisibility) VisibleRocks(v ai.Viewer, ctx any) []grid.Point {
	if ctx == nil {
		return nil
	}
	return t.filter(v, t.Grid.Rocks(), func(p grid.Point) bool {
		top, _ := t.Grid.Topmost(p)
		return top == grid.Rock
	})
}

func (t *TileVisibility) VisibleTreesOnRocks(v ai.Viewer, ctx any) []grid.Point {
	if ctx == nil {
		return nil
	}
	return t.filter(v, t.Grid.Trees(), func(p grid.Point) bool {
		return t.Grid.RockCount(p) > 0
	})
}

func (t *TileVisibility) filter(v ai.Viewer, points []grid.Point, keep func(grid.Point) bool) []grid.Point {
	var out []grid.Point
	for _, p := range points {
		if keep != nil && !keep(p) {
			continue
		}
		if t.CanSee(v, p) {
			out = append(out, p)
		}
	}
	return out
}

// CanSee reports whether p is inside v's cone and not hidden by terrain.
func (t *TileVisibility) CanSee(v ai.Viewer, p grid.Point) bool {
	if !t.InCone(v, p) {
		return false
	}
	return t.HasLineOfSight(v.Position, p)
}

// InCone returns true if p is within the vision cone of v.
func (t *TileVisibility) InCone(v ai.Viewer, p grid.Point) bool {
	dx := float64(p.X - v.Position.X)
	dz := float64(p.Z - v.Position.Z)
	dist := math.Hypot(dx, dz)
	if dist > t.MaxRange || dist < 1e-6 {
		return false
	}
	angleToTarget := HeadingTo(v.Position, p)
	diff := normalizeAngle(angleToTarget - v.Heading)
	halfFOV := t.FOV / 2.0
	return diff >= -halfFOV && diff <= halfFOV
}

// HasLineOfSight walks the segment from the viewer's eye to the top of the
// target tile and fails if any tile in between rises above it.
func (t *TileVisibility) HasLineOfSight(from, to grid.Point) bool {
	start, ok := t.Grid.Piece(from)
	if !ok {
		return false
	}
	end, ok := t.Grid.Piece(to)
	if !ok {
		return false
	}
	eye := start.Level + t.EyeHeight + t.stackHeight(from)
	aim := end.Level + objectHeight + t.stackHeight(to)

	dx := float64(to.X - from.X)
	dz := float64(to.Z - from.Z)
	steps := int(math.Ceil(math.Hypot(dx, dz) * samplesPerTile))
	for i := 1; i < steps; i++ {
		f := float64(i) / float64(steps)
		cell := grid.Pt(int(math.Round(float64(from.X)+dx*f)), int(math.Round(float64(from.Z)+dz*f)))
		if cell == from || cell == to {
			continue
		}
		piece, ok := t.Grid.Piece(cell)
		if !ok {
			return false
		}
		if piece.Level > eye+(aim-eye)*f {
			return false
		}
	}
	return true
}

// stackHeight lifts viewers and targets standing on rocks.
func (t *TileVisibility) stackHeight(p grid.Point) float64 {
	return float64(t.Grid.RockCount(p)) * objectHeight
}

// HeadingTo returns the heading from a toward b: 0 faces north and angles
// grow clockwise.
func HeadingTo(a, b grid.Point) float64 {
	return math.Atan2(float64(b.X-a.X), -float64(b.Z-a.Z))
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
