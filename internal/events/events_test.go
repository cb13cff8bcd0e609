package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sentinel/internal/grid"
)

func TestQueueDrainKeepsOrderAndEmpties(t *testing.T) {
	q := NewQueue("session-1")
	q.SetClock(2 * time.Second)

	built := New(PlayerBuilt)
	built.Item = grid.Rock
	built.Point = grid.Pt(1, 2)
	q.Push(built)
	q.Push(New(EnergyDepleted))
	assert.Equal(t, 2, q.Len())

	got := q.Drain()
	if assert.Len(t, got, 2) {
		assert.Equal(t, PlayerBuilt, got[0].Kind)
		assert.Equal(t, EnergyDepleted, got[1].Kind)
		assert.Equal(t, "session-1", got[0].Session)
		assert.Equal(t, 2*time.Second, got[1].Time)
	}
	assert.Empty(t, q.Drain())
	assert.Zero(t, q.Len())
}

func TestZeroQueueIsUsable(t *testing.T) {
	var q Queue
	q.Push(New(GameEnded))
	assert.Len(t, q.Drain(), 1)
}

func TestNewLeavesPositionsUnset(t *testing.T) {
	e := New(OpponentRotated)
	assert.True(t, e.Point.IsUndefined())
	assert.True(t, e.Opponent.IsUndefined())
	assert.Contains(t, e.String(), "opponent_rotated")
}

func TestEventString(t *testing.T) {
	e := New(GameEnded)
	e.Outcome = Victory
	assert.Equal(t, "game_ended victory", e.String())

	e = New(PlayerAbsorbed)
	e.Item = grid.Tree
	e.Point = grid.Pt(3, 4)
	e.Energy = 11
	assert.Equal(t, "player_absorbed tree at (3,4) energy=11", e.String())
}
