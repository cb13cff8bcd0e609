package gameplay

import (
	"sentinel/internal/events"
	"sentinel/internal/grid"
	"sentinel/internal/random"
)

// PlayerOperations are the actions available to the player. Each one checks
// the rules, updates the grid and the economy, and pushes events.
type PlayerOperations struct {
	terrain *TerrainOperations
	economy *Economy
	queue   *events.Queue
	rng     *random.ValueGenerator
}

func NewPlayerOperations(terrain *TerrainOperations, economy *Economy, queue *events.Queue, rng *random.ValueGenerator) *PlayerOperations {
	if queue == nil {
		queue = &events.Queue{}
	}
	return &PlayerOperations{terrain: terrain, economy: economy, queue: queue, rng: rng}
}

func (o *PlayerOperations) Economy() *Economy { return o.economy }

// EnterScene puts the first synthoid on the start tile and moves the player
// into it.
func (o *PlayerOperations) EnterScene() bool {
	g := o.terrain.Grid()
	if o.economy.Ended() {
		return false
	}
	if _, in := g.Current(); in {
		return false
	}
	start, ok := g.Start()
	if !ok {
		return false
	}
	if !g.HasSynthoid(start) && !o.terrain.Place(grid.Synthoid, start) {
		return false
	}
	return o.moveTo(start)
}

// Build spends energy to place kind on p.
func (o *PlayerOperations) Build(kind grid.Kind, p grid.Point) bool {
	if !o.economy.CanAfford(kind) || !o.terrain.CanPlace(p) {
		return false
	}
	if !o.terrain.Place(kind, p) {
		return false
	}
	o.economy.pay(kind)
	o.push(events.PlayerBuilt, kind, p)
	o.economy.settle()
	return true
}

// Absorb takes the topmost object at p and credits its energy. Absorbing
// the sentinel wins the game.
func (o *PlayerOperations) Absorb(p grid.Point) bool {
	if o.economy.Ended() {
		return false
	}
	kind, ok := o.terrain.AbsorbTopmost(p)
	if !ok {
		return false
	}
	o.economy.Gain(kind)
	o.push(events.PlayerAbsorbed, kind, p)
	if kind == grid.Sentinel {
		o.economy.End(events.Victory)
	}
	return true
}

// Transfer moves the player into the synthoid at p.
func (o *PlayerOperations) Transfer(p grid.Point) bool {
	g := o.terrain.Grid()
	if o.economy.Ended() || !g.HasSynthoid(p) {
		return false
	}
	if current, ok := g.Current(); ok && current == p {
		return false
	}
	if top, _ := g.Topmost(p); top != grid.Synthoid {
		return false
	}
	return o.moveTo(p)
}

// Hyperspace builds a synthoid on a random empty floor tile no higher than
// the current one and moves the player there. Without the energy for a
// synthoid the jump loses the game.
func (o *PlayerOperations) Hyperspace() bool {
	g := o.terrain.Grid()
	if o.economy.Ended() {
		return false
	}
	current, ok := g.Current()
	if !ok {
		return false
	}
	if !o.economy.CanAfford(grid.Synthoid) {
		o.economy.forfeit()
		return false
	}
	here, _ := g.Piece(current)
	target, ok := o.terrain.RandomEmptyFloor(o.rng, func(piece grid.Piece) bool {
		return piece.Level <= here.Level
	})
	if !ok || !o.terrain.Place(grid.Synthoid, target) {
		return false
	}
	o.economy.pay(grid.Synthoid)
	moved := o.moveTo(target)
	o.economy.settle()
	return moved
}

func (o *PlayerOperations) moveTo(p grid.Point) bool {
	if !o.terrain.Grid().SetCurrent(p) {
		return false
	}
	o.push(events.PlayerTeleported, grid.Synthoid, p)
	o.push(events.CameraChanged, grid.None, p)
	return true
}

func (o *PlayerOperations) push(kind events.Kind, item grid.Kind, p grid.Point) {
	ev := events.New(kind)
	ev.Item = item
	ev.Point = p
	ev.Energy = o.economy.Energy()
	o.queue.Push(ev)
}
