package grid

import "fmt"

// RockStack is the rock count at one tile.
type RockStack struct {
	Point Point `json:"point" yaml:"point"`
	Count int   `json:"count" yaml:"count"`
}

// Snapshot is a plain, encodable copy of a Grid. Lists are in scan order so
// equal grids produce equal snapshots.
type Snapshot struct {
	Width     int         `json:"width" yaml:"width"`
	Depth     int         `json:"depth" yaml:"depth"`
	Pieces    []Piece     `json:"pieces" yaml:"pieces"`
	Trees     []Point     `json:"trees" yaml:"trees"`
	Rocks     []RockStack `json:"rocks" yaml:"rocks"`
	Synthoids []Point     `json:"synthoids" yaml:"synthoids"`
	Sentries  []Point     `json:"sentries" yaml:"sentries"`
	Sentinel  Point       `json:"sentinel" yaml:"sentinel"`
	Start     Point       `json:"start" yaml:"start"`
	Current   Point       `json:"current" yaml:"current"`
}

// Snapshot copies the grid's shape and occupancy.
func (g *Grid) Snapshot() Snapshot {
	rocks := make([]RockStack, 0, len(g.rocks))
	for _, p := range g.Rocks() {
		rocks = append(rocks, RockStack{Point: p, Count: g.rocks[p]})
	}
	return Snapshot{
		Width:     g.width,
		Depth:     g.depth,
		Pieces:    g.Pieces(),
		Trees:     g.Trees(),
		Rocks:     rocks,
		Synthoids: g.Synthoids(),
		Sentries:  g.Sentries(),
		Sentinel:  g.sentinel,
		Start:     g.start,
		Current:   g.current,
	}
}

// FromSnapshot rebuilds a Grid, rejecting snapshots whose occupancy does not
// sit on floor tiles.
func FromSnapshot(s Snapshot) (*Grid, error) {
	if s.Width <= 0 || s.Depth <= 0 {
		return nil, fmt.Errorf("snapshot dimensions must be positive, got %dx%d", s.Width, s.Depth)
	}
	if len(s.Pieces) != s.Width*s.Depth {
		return nil, fmt.Errorf("snapshot has %d pieces, want %d", len(s.Pieces), s.Width*s.Depth)
	}
	g := newGrid(s.Width, s.Depth)
	copy(g.pieces, s.Pieces)

	for _, p := range s.Trees {
		if !g.AddTree(p) {
			return nil, fmt.Errorf("snapshot tree at %v is not on a free floor tile", p)
		}
	}
	for _, r := range s.Rocks {
		for i := 0; i < r.Count; i++ {
			if !g.AddRock(r.Point) {
				return nil, fmt.Errorf("snapshot rock at %v is not on a floor tile", r.Point)
			}
		}
	}
	for _, p := range s.Synthoids {
		if !g.AddSynthoid(p) {
			return nil, fmt.Errorf("snapshot synthoid at %v is not on a free floor tile", p)
		}
	}
	for _, p := range s.Sentries {
		if !g.isFloor(p) {
			return nil, fmt.Errorf("snapshot sentry at %v is not on a floor tile", p)
		}
		g.sentries.Put(p)
	}
	for name, p := range map[string]Point{"sentinel": s.Sentinel, "start": s.Start, "current": s.Current} {
		if !p.IsUndefined() && !g.isFloor(p) {
			return nil, fmt.Errorf("snapshot %s at %v is not on a floor tile", name, p)
		}
	}
	g.sentinel = s.Sentinel
	g.start = s.Start
	g.current = s.Current
	return g, nil
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	c := newGrid(g.width, g.depth)
	copy(c.pieces, g.pieces)
	g.trees.Each(c.trees.Put)
	g.synthoids.Each(c.synthoids.Put)
	g.sentries.Each(c.sentries.Put)
	for p, n := range g.rocks {
		c.rocks[p] = n
	}
	c.sentinel = g.sentinel
	c.start = g.start
	c.current = g.current
	return c
}
