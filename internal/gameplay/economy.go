// Package gameplay holds the player's energy economy and the operations that
// change a level's occupancy in response to player actions.
package gameplay

import (
	"sentinel/internal/events"
	"sentinel/internal/grid"
)

// DepletionAmount is the energy drained each time an opponent keeps the
// player in sight for two detection cycles.
const DepletionAmount = 1

var values = map[grid.Kind]int{
	grid.Tree:     1,
	grid.Rock:     2,
	grid.Synthoid: 3,
	grid.Sentry:   3,
	grid.Sentinel: 4,
}

// Cost is the energy needed to build kind.
func Cost(kind grid.Kind) (int, bool) {
	v, ok := values[kind]
	return v, ok
}

// Reward is the energy gained by absorbing kind. It always equals Cost.
func Reward(kind grid.Kind) (int, bool) {
	return Cost(kind)
}

// Economy is the player's single energy pool. Once the game has ended every
// mutator is a no-op.
type Economy struct {
	energy  int
	outcome events.Outcome
	queue   *events.Queue
}

func NewEconomy(starting int, queue *events.Queue) *Economy {
	if queue == nil {
		queue = &events.Queue{}
	}
	return &Economy{energy: max(starting, 0), queue: queue}
}

func (e *Economy) Energy() int             { return e.energy }
func (e *Economy) Outcome() events.Outcome { return e.outcome }
func (e *Economy) Ended() bool             { return e.outcome != events.Undecided }

// CanAfford reports whether kind can be built right now.
func (e *Economy) CanAfford(kind grid.Kind) bool {
	cost, ok := Cost(kind)
	return ok && !e.Ended() && e.energy >= cost
}

// pay deducts the cost without judging the result, so callers can report
// the action before the game ends. settle then ends a game left at zero.
func (e *Economy) pay(kind grid.Kind) bool {
	if !e.CanAfford(kind) {
		return false
	}
	cost, _ := Cost(kind)
	e.energy -= cost
	return true
}

func (e *Economy) settle() {
	if e.energy == 0 {
		e.End(events.Defeat)
	}
}

// Gain credits the reward for absorbing kind.
func (e *Economy) Gain(kind grid.Kind) bool {
	reward, ok := Reward(kind)
	if !ok || e.Ended() {
		return false
	}
	e.energy += reward
	return true
}

// Deplete drains DepletionAmount and reports it.
func (e *Economy) Deplete() bool {
	if e.Ended() {
		return false
	}
	e.energy = max(e.energy-DepletionAmount, 0)
	ev := events.New(events.EnergyDepleted)
	ev.Energy = e.energy
	e.queue.Push(ev)
	if e.energy == 0 {
		e.End(events.Defeat)
	}
	return true
}

// End latches the outcome. Only the first call has any effect.
func (e *Economy) End(outcome events.Outcome) bool {
	if e.Ended() || outcome == events.Undecided {
		return false
	}
	e.outcome = outcome
	ev := events.New(events.GameEnded)
	ev.Outcome = outcome
	ev.Energy = e.energy
	e.queue.Push(ev)
	return true
}

// forfeit empties the pool and loses the game.
func (e *Economy) forfeit() {
	if e.Ended() {
		return
	}
	e.energy = 0
	e.End(events.Defeat)
}
