// Package events describes what happened during a tick. Operations push
// events onto a Queue and the owner drains it once per tick, in order.
package events

import (
	"fmt"
	"time"

	"sentinel/internal/grid"
)

type Kind string

const (
	CameraChanged      Kind = "camera_changed"
	OpponentDetected   Kind = "opponent_detected"
	OpponentUndetected Kind = "opponent_undetected"
	PlayerBuilt        Kind = "player_built"
	PlayerAbsorbed     Kind = "player_absorbed"
	PlayerTeleported   Kind = "player_teleported"
	OpponentAbsorbed   Kind = "opponent_absorbed"
	OpponentBuilt      Kind = "opponent_built"
	OpponentRotated    Kind = "opponent_rotated"
	EnergyDepleted     Kind = "energy_depleted"
	GameEnded          Kind = "game_ended"
)

// Outcome is the result of a finished game.
type Outcome string

const (
	Undecided Outcome = ""
	Victory   Outcome = "victory"
	Defeat    Outcome = "defeat"
)

// Event is one gameplay change. Fields that do not apply to a kind are left
// at their zero value; Point and Opponent default to grid.Undefined.
type Event struct {
	Kind     Kind          `json:"kind" yaml:"kind"`
	Item     grid.Kind     `json:"item,omitempty" yaml:"item,omitempty"`
	Point    grid.Point    `json:"point" yaml:"point"`
	Opponent grid.Point    `json:"opponent" yaml:"opponent"`
	Energy   int           `json:"energy" yaml:"energy"`
	Outcome  Outcome       `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Session  string        `json:"session,omitempty" yaml:"session,omitempty"`
	Time     time.Duration `json:"time" yaml:"time"`
}

// New returns an event of kind with both positions unset.
func New(kind Kind) Event {
	return Event{Kind: kind, Point: grid.Undefined, Opponent: grid.Undefined}
}

func (e Event) String() string {
	switch e.Kind {
	case PlayerBuilt, PlayerAbsorbed:
		return fmt.Sprintf("%s %s at %v energy=%d", e.Kind, e.Item, e.Point, e.Energy)
	case OpponentAbsorbed, OpponentBuilt:
		return fmt.Sprintf("%s %s at %v by %v", e.Kind, e.Item, e.Point, e.Opponent)
	case OpponentDetected, OpponentUndetected, OpponentRotated:
		return fmt.Sprintf("%s %v", e.Kind, e.Opponent)
	case PlayerTeleported, CameraChanged:
		return fmt.Sprintf("%s %v", e.Kind, e.Point)
	case EnergyDepleted:
		return fmt.Sprintf("%s energy=%d", e.Kind, e.Energy)
	case GameEnded:
		return fmt.Sprintf("%s %s", e.Kind, e.Outcome)
	default:
		return string(e.Kind)
	}
}

// Queue buffers events between drains. The zero value is ready to use.
type Queue struct {
	session string
	clock   time.Duration
	pending []Event
}

func NewQueue(session string) *Queue {
	return &Queue{session: session}
}

// SetClock stamps subsequent events with now.
func (q *Queue) SetClock(now time.Duration) { q.clock = now }

func (q *Queue) Push(e Event) {
	if e.Session == "" {
		e.Session = q.session
	}
	if e.Time == 0 {
		e.Time = q.clock
	}
	q.pending = append(q.pending, e)
}

// Drain returns the pending events in emission order and empties the queue.
func (q *Queue) Drain() []Event {
	out := q.pending
	q.pending = nil
	return out
}

func (q *Queue) Len() int { return len(q.pending) }
