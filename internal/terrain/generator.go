// Package terrain carves levels: plateaus and peaks first, then the
// sentinel, sentries, player start and trees, all drawn from the level's
// seeded value stream.
package terrain

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"

	"sentinel/internal/config"
	"sentinel/internal/grid"
	"sentinel/internal/random"
)

// ErrNegativeLevel rejects level numbers below zero, which would otherwise
// alias level 0.
var ErrNegativeLevel = errors.New("level cannot be negative")

// Summary records what a generation run drew and where things landed.
type Summary struct {
	Level          int          `json:"level" yaml:"level"`
	Width          int          `json:"width" yaml:"width"`
	Depth          int          `json:"depth" yaml:"depth"`
	Plateaus       int          `json:"plateaus" yaml:"plateaus"`
	Peaks          int          `json:"peaks" yaml:"peaks"`
	PlatformHeight int          `json:"platformHeight" yaml:"platformHeight"`
	Sentinel       grid.Point   `json:"sentinel" yaml:"sentinel"`
	Sentries       []grid.Point `json:"sentries" yaml:"sentries"`
	Start          grid.Point   `json:"start" yaml:"start"`
	Trees          int          `json:"trees" yaml:"trees"`
	Normalized     float64      `json:"normalized" yaml:"normalized"`
	HighestLevel   float64      `json:"highestLevel" yaml:"highestLevel"`
	StartFallback  bool         `json:"startFallback,omitempty" yaml:"startFallback,omitempty"`
	Draws          uint64       `json:"draws" yaml:"draws"`
}

// Generator builds grids from level numbers. A Generator holds no per-level
// state and may be reused.
type Generator struct {
	levels config.LevelsConfig
	logger *log.Logger
}

// NewGenerator validates cfg up front so Generate cannot hit a bad grid size.
func NewGenerator(cfg config.LevelsConfig, logger *log.Logger) (*Generator, error) {
	wrapper := config.Default()
	wrapper.Levels = cfg
	if err := wrapper.Validate(); err != nil {
		return nil, fmt.Errorf("terrain config: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Generator{levels: cfg, logger: logger}, nil
}

// Generate returns the grid for level. Equal configuration and level always
// produce equal grids.
func (g *Generator) Generate(level int) (*grid.Grid, error) {
	out, _, err := g.GenerateWithSummary(level)
	return out, err
}

// GenerateWithSummary is Generate plus the run's Summary. Levels start at 0.
func (g *Generator) GenerateWithSummary(level int) (*grid.Grid, Summary, error) {
	if level < 0 {
		return nil, Summary{}, fmt.Errorf("level %d: %w", level, ErrNegativeLevel)
	}
	lv := g.levels.ForLevel(level)
	b, err := grid.NewBuilder(lv.Width, lv.Depth)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("new builder: %w", err)
	}
	run := &generation{
		level:   lv,
		rng:     random.New(lv.Number),
		builder: b,
		logger:  g.logger,
		summary: Summary{Level: lv.Number, Width: lv.Width, Depth: lv.Depth, PlatformHeight: lv.PlatformHeight},
	}
	run.carve()
	run.placeSentinel()
	run.placeSentries()
	run.placeStart()
	run.placeTrees()
	run.summary.Normalized = b.Normalize()
	b.ProcessSlopes()

	out := b.BuildGrid()
	for _, piece := range out.Pieces() {
		run.summary.HighestLevel = max(run.summary.HighestLevel, piece.Level)
	}
	run.summary.Draws = run.rng.Draws()
	g.logger.Printf("generated level %d: %dx%d plateaus=%d peaks=%d sentries=%d trees=%d",
		lv.Number, lv.Width, lv.Depth, run.summary.Plateaus, run.summary.Peaks,
		len(run.summary.Sentries), run.summary.Trees)
	return out, run.summary, nil
}

type generation struct {
	level   config.Level
	rng     *random.ValueGenerator
	builder *grid.Builder
	logger  *log.Logger
	summary Summary
}

func (r *generation) carve() {
	lv := r.level
	r.summary.Plateaus += r.plateaus(lv.LargePlateauCount, lv.LargePlateauSize)
	r.summary.Plateaus += r.plateaus(lv.SmallPlateauCount, lv.SmallPlateauSize)
	r.summary.Peaks += r.peaks(lv.LargePeakCount, lv.LargePeakSize)
	r.summary.Peaks += r.peaks(lv.MediumPeakCount, lv.MediumPeakSize)
	r.summary.Peaks += r.peaks(lv.SmallPeakCount, lv.SmallPeakSize)
}

func (r *generation) plateaus(count, size config.Range) int {
	n := r.rng.NextValueIn(count)
	for i := 0; i < n; i++ {
		w := r.rng.NextValueIn(size)
		d := r.rng.NextValueIn(size)
		r.builder.BuildPlateau(r.placeRect(w, d))
	}
	return n
}

func (r *generation) peaks(count config.Range, size int) int {
	n := r.rng.NextValueIn(count)
	for i := 0; i < n; i++ {
		r.builder.BuildPeak(r.placeRect(size, size))
	}
	return n
}

// placeRect draws a w×d rectangle that fits on the grid.
func (r *generation) placeRect(w, d int) grid.Rect {
	w = min(max(w, 1), r.builder.Width())
	d = min(max(d, 1), r.builder.Depth())
	x := r.rng.NextValue(0, r.builder.Width()-w)
	z := r.rng.NextValue(0, r.builder.Depth()-d)
	return grid.RectAt(x, z, w, d)
}

func (r *generation) placeSentinel() {
	highest := grid.NewFloorIndex(r.builder, nil).HighestEmptyFloorPieces()
	piece, ok := random.NextItem(r.rng, highest)
	if !ok {
		r.logger.Printf("level %d: no empty floor for the sentinel", r.level.Number)
		return
	}
	r.builder.SentinelPosition = piece.Point
	for i := 0; i < r.level.PlatformHeight; i++ {
		r.builder.BuildFloor(piece.Point)
	}
	r.summary.Sentinel = piece.Point
}

func (r *generation) sentinelQuadrant() (grid.Quadrant, bool) {
	sentinel := r.builder.SentinelPosition
	if sentinel.IsUndefined() {
		return grid.NorthWest, false
	}
	return grid.QuadrantContaining(r.builder.Width(), r.builder.Depth(), sentinel)
}

func (r *generation) placeSentries() {
	r.summary.Sentries = []grid.Point{}
	count := r.level.SentryCount
	if count < 1 || count > 3 {
		return
	}
	home, hasHome := r.sentinelQuadrant()

	var candidates []grid.Piece
	for _, q := range grid.Quadrants {
		if hasHome && q == home {
			continue
		}
		highest := grid.NewFloorIndex(r.builder, &q).HighestEmptyFloorPieces()
		if piece, ok := random.NextItem(r.rng, highest); ok {
			candidates = append(candidates, piece)
		}
	}
	slices.SortStableFunc(candidates, func(a, b grid.Piece) int {
		return cmp.Compare(a.Level, b.Level)
	})
	for _, piece := range candidates[:min(count, len(candidates))] {
		r.builder.SentryPositions = append(r.builder.SentryPositions, piece.Point)
	}
	r.summary.Sentries = slices.Clone(r.builder.SentryPositions)
}

func (r *generation) placeStart() {
	var lowest []grid.Piece
	if home, ok := r.sentinelQuadrant(); ok {
		opposite := home.Opposite()
		lowest = grid.NewFloorIndex(r.builder, &opposite).LowestEmptyFloorPieces()
	}
	if len(lowest) == 0 {
		r.logger.Printf("level %d: no start tile opposite the sentinel, using the whole grid", r.level.Number)
		r.summary.StartFallback = true
		lowest = grid.NewFloorIndex(r.builder, nil).LowestEmptyFloorPieces()
	}
	piece, ok := random.NextItem(r.rng, lowest)
	if !ok {
		r.logger.Printf("level %d: no empty floor for the player start", r.level.Number)
		r.summary.Start = grid.Undefined
		return
	}
	r.builder.StartPosition = piece.Point
	r.summary.Start = piece.Point
}

func (r *generation) placeTrees() {
	var trees []grid.Point
	for _, q := range grid.Quadrants {
		eligible := grid.Points(grid.NewFloorIndex(r.builder, &q).AllEmptyFloorPieces())
		n := min(r.rng.NextValueIn(r.level.TreeCount)/4, len(eligible))
		for i := 0; i < n; i++ {
			idx, _ := r.rng.NextIndex(len(eligible))
			trees = append(trees, eligible[idx])
			eligible = slices.Delete(eligible, idx, idx+1)
		}
	}
	r.builder.TreePositions = append(r.builder.TreePositions, trees...)
	r.summary.Trees = len(trees)
}
