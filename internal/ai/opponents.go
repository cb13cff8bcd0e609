// Package ai drives the sentinel and its sentries. Behaviours run on a
// timemachine and see the world only through a Visibility implementation.
package ai

import (
	"errors"
	"io"
	"log"
	"math"
	"slices"
	"time"

	"github.com/zyedidia/generic/mapset"

	"sentinel/internal/events"
	"sentinel/internal/gameplay"
	"sentinel/internal/grid"
	"sentinel/internal/random"
	"sentinel/internal/timemachine"
)

// Viewer is an opponent looking out over the level.
type Viewer struct {
	Kind     grid.Kind
	Position grid.Point
	Heading  float64 // radians, 0 faces north, growing clockwise
}

// Visibility answers what a viewer can currently see. ctx is whatever the
// caller passes to the timemachine; implementations may require it.
type Visibility interface {
	VisibleSynthoids(v Viewer, ctx any) []grid.Point
	// VisibleRocks lists tiles whose topmost occupant is a rock.
	VisibleRocks(v Viewer, ctx any) []grid.Point
	VisibleTreesOnRocks(v Viewer, ctx any) []grid.Point
}

// Deps wires Opponents to the state it acts on.
type Deps struct {
	Grid          *grid.Grid
	Terrain       *gameplay.TerrainOperations
	Economy       *gameplay.Economy
	Queue         *events.Queue
	RNG           *random.ValueGenerator
	Visibility    Visibility
	RotationSteps int
	Logger        *log.Logger
}

// Opponents owns opponent headings and implements the three timed
// behaviours.
type Opponents struct {
	grid     *grid.Grid
	terrain  *gameplay.TerrainOperations
	economy  *gameplay.Economy
	queue    *events.Queue
	rng      *random.ValueGenerator
	vis      Visibility
	step     float64
	headings map[grid.Point]float64
	logger   *log.Logger
}

type target struct {
	point  grid.Point
	kind   grid.Kind
	viewer Viewer
}

var priority = [...]grid.Kind{grid.Synthoid, grid.Rock, grid.Tree}

func NewOpponents(d Deps) (*Opponents, error) {
	if d.Grid == nil || d.Terrain == nil || d.Economy == nil || d.RNG == nil || d.Visibility == nil {
		return nil, errors.New("opponents need a grid, terrain, economy, rng and visibility")
	}
	if d.RotationSteps <= 0 {
		return nil, errors.New("opponents need a positive rotation step count")
	}
	if d.Queue == nil {
		d.Queue = &events.Queue{}
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	o := &Opponents{
		grid:     d.Grid,
		terrain:  d.Terrain,
		economy:  d.Economy,
		queue:    d.Queue,
		rng:      d.RNG,
		vis:      d.Visibility,
		step:     2 * math.Pi / float64(d.RotationSteps),
		headings: make(map[grid.Point]float64),
		logger:   d.Logger,
	}
	for _, p := range d.Grid.Opponents() {
		o.headings[p] = float64(o.rng.NextValue(0, d.RotationSteps-1)) * o.step
	}
	return o, nil
}

// Register adds absorb, rotation and detection, in that order.
func (o *Opponents) Register(tm *timemachine.TimeMachine, absorbEvery, rotateEvery, detectEvery time.Duration) error {
	for _, b := range []struct {
		name     string
		interval time.Duration
		fn       timemachine.Behavior
	}{
		{"absorb", absorbEvery, o.AbsorbObjects},
		{"rotation", rotateEvery, o.Rotate},
		{"detection", detectEvery, o.Detect},
	} {
		if _, ok := tm.Add(b.interval, b.fn); !ok {
			return errors.New("register " + b.name + " behaviour: rejected by timemachine")
		}
	}
	return nil
}

// Viewers lists the opponents still on the grid, sentinel first.
func (o *Opponents) Viewers() []Viewer {
	points := o.grid.Opponents()
	out := make([]Viewer, 0, len(points))
	sentinel, hasSentinel := o.grid.Sentinel()
	for _, p := range points {
		kind := grid.Sentry
		if hasSentinel && p == sentinel {
			kind = grid.Sentinel
		}
		out = append(out, Viewer{Kind: kind, Position: p, Heading: o.headings[p]})
	}
	return out
}

// AbsorbObjects lets the first opponent with a target absorb it. It returns
// the absorbed point, or nil when nothing happened.
func (o *Opponents) AbsorbObjects(now time.Duration, ctx any, last any) any {
	if ctx == nil || o.economy.Ended() {
		return nil
	}
	if _, ok := o.grid.Current(); !ok {
		return nil
	}
	for _, v := range o.Viewers() {
		t, ok := o.bestTarget(v, ctx)
		if !ok {
			continue
		}
		if !o.absorb(t) {
			continue
		}
		o.plantTree(v)
		return t.point
	}
	return nil
}

// Rotate turns every opponent without a target by one step.
func (o *Opponents) Rotate(now time.Duration, ctx any, last any) any {
	if o.economy.Ended() {
		return nil
	}
	turned := 0
	for _, v := range o.Viewers() {
		if ctx != nil {
			if _, locked := o.bestTarget(v, ctx); locked {
				continue
			}
		}
		o.headings[v.Position] = math.Mod(v.Heading+o.step, 2*math.Pi)
		ev := events.New(events.OpponentRotated)
		ev.Item = v.Kind
		ev.Opponent = v.Position
		o.queue.Push(ev)
		turned++
	}
	return turned
}

// Detect tracks which opponents see the player. Being seen by the same
// opponent on two consecutive runs drains energy once.
func (o *Opponents) Detect(now time.Duration, ctx any, last any) any {
	previous, _ := last.(mapset.Set[grid.Point])
	if ctx == nil || o.economy.Ended() {
		return last
	}
	current, ok := o.grid.Current()
	if !ok {
		return last
	}

	seeing := mapset.New[grid.Point]()
	for _, v := range o.Viewers() {
		if slices.Contains(o.vis.VisibleSynthoids(v, ctx), current) {
			seeing.Put(v.Position)
		}
	}

	var added, removed []grid.Point
	repeated := false
	// A zero Set reads as empty.
	seeing.Each(func(p grid.Point) {
		if previous.Has(p) {
			repeated = true
		} else {
			added = append(added, p)
		}
	})
	previous.Each(func(p grid.Point) {
		if !seeing.Has(p) {
			removed = append(removed, p)
		}
	})
	grid.SortPoints(added)
	grid.SortPoints(removed)

	for _, p := range added {
		ev := events.New(events.OpponentDetected)
		ev.Opponent = p
		ev.Point = current
		o.queue.Push(ev)
	}
	for _, p := range removed {
		ev := events.New(events.OpponentUndetected)
		ev.Opponent = p
		o.queue.Push(ev)
	}
	if repeated {
		o.economy.Deplete()
		o.plantTree(Viewer{Position: grid.Undefined})
	}
	return seeing
}

// Detected unpacks the result of Detect.
func Detected(result any) []grid.Point {
	set, ok := result.(mapset.Set[grid.Point])
	if !ok || set.Size() == 0 {
		return nil
	}
	out := make([]grid.Point, 0, set.Size())
	set.Each(func(p grid.Point) { out = append(out, p) })
	grid.SortPoints(out)
	return out
}

// Heading returns the current heading of the opponent at p.
func (o *Opponents) Heading(p grid.Point) (float64, bool) {
	h, ok := o.headings[p]
	return h, ok
}

func (o *Opponents) bestTarget(v Viewer, ctx any) (target, bool) {
	origin := v.Position
	if sentinel, ok := o.grid.Sentinel(); ok {
		origin = sentinel
	}
	for _, kind := range priority {
		var candidates []grid.Point
		for _, p := range o.visible(kind, v, ctx) {
			if o.eligible(kind, p) {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		slices.SortStableFunc(candidates, func(a, b grid.Point) int {
			da, db := a.Distance(origin), b.Distance(origin)
			switch {
			case da < db:
				return -1
			case da > db:
				return 1
			default:
				return grid.ComparePoints(a, b)
			}
		})
		return target{point: candidates[0], kind: kind, viewer: v}, true
	}
	return target{}, false
}

func (o *Opponents) visible(kind grid.Kind, v Viewer, ctx any) []grid.Point {
	switch kind {
	case grid.Synthoid:
		return o.vis.VisibleSynthoids(v, ctx)
	case grid.Rock:
		return o.vis.VisibleRocks(v, ctx)
	default:
		return o.vis.VisibleTreesOnRocks(v, ctx)
	}
}

func (o *Opponents) eligible(kind grid.Kind, p grid.Point) bool {
	top, ok := o.grid.Topmost(p)
	if !ok || top != kind {
		return false
	}
	switch kind {
	case grid.Synthoid:
		current, in := o.grid.Current()
		return !in || current != p
	case grid.Tree:
		return o.grid.RockCount(p) > 0
	default:
		return true
	}
}

// absorb downgrades the target: synthoid to rock, rock to tree, tree to
// nothing.
func (o *Opponents) absorb(t target) bool {
	kind, ok := o.terrain.AbsorbTopmost(t.point)
	if !ok || kind != t.kind {
		return false
	}
	o.push(events.OpponentAbsorbed, kind, t.point, t.viewer.Position)

	var replacement grid.Kind
	switch kind {
	case grid.Synthoid:
		replacement = grid.Rock
	case grid.Rock:
		replacement = grid.Tree
	}
	if replacement != grid.None && o.terrain.Place(replacement, t.point) {
		o.push(events.OpponentBuilt, replacement, t.point, t.viewer.Position)
	}
	return true
}

// plantTree drops a tree on a random empty floor tile.
func (o *Opponents) plantTree(by Viewer) {
	p, ok := o.terrain.RandomEmptyFloor(o.rng, nil)
	if !ok {
		o.logger.Printf("opponents: no empty floor for a new tree")
		return
	}
	if o.terrain.Place(grid.Tree, p) {
		o.push(events.OpponentBuilt, grid.Tree, p, by.Position)
	}
}

func (o *Opponents) push(kind events.Kind, item grid.Kind, p, by grid.Point) {
	ev := events.New(kind)
	ev.Item = item
	ev.Point = p
	ev.Opponent = by
	o.queue.Push(ev)
}
