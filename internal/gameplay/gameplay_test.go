package gameplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/events"
	"sentinel/internal/grid"
	"sentinel/internal/random"
)

type fixture struct {
	grid    *grid.Grid
	terrain *TerrainOperations
	economy *Economy
	queue   *events.Queue
	player  *PlayerOperations
}

// newFixture is a flat 5×5 level with a raised east column, the sentinel
// in the south-east corner, one sentry and the start in the north-west.
func newFixture(t *testing.T, energy int) *fixture {
	t.Helper()
	b, err := grid.NewBuilder(5, 5)
	require.NoError(t, err)
	b.BuildPlateau(grid.RectAt(4, 0, 1, 5))
	b.SentinelPosition = grid.Pt(4, 4)
	b.SentryPositions = []grid.Point{grid.Pt(0, 4)}
	b.StartPosition = grid.Pt(0, 0)
	b.ProcessSlopes()
	g := b.BuildGrid()

	q := events.NewQueue("test")
	terrain := NewTerrainOperations(g)
	economy := NewEconomy(energy, q)
	return &fixture{
		grid:    g,
		terrain: terrain,
		economy: economy,
		queue:   q,
		player:  NewPlayerOperations(terrain, economy, q, random.New(1)),
	}
}

func kinds(evs []events.Event) []events.Kind {
	out := make([]events.Kind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}

func TestCostEqualsReward(t *testing.T) {
	want := map[grid.Kind]int{
		grid.Tree: 1, grid.Rock: 2, grid.Synthoid: 3, grid.Sentry: 3, grid.Sentinel: 4,
	}
	for kind, value := range want {
		cost, ok := Cost(kind)
		require.True(t, ok)
		reward, ok := Reward(kind)
		require.True(t, ok)
		assert.Equal(t, value, cost, "%s", kind)
		assert.Equal(t, cost, reward, "%s", kind)
	}
	_, ok := Cost(grid.None)
	assert.False(t, ok)
}

func TestBuildThenAbsorbConservesEnergy(t *testing.T) {
	for _, kind := range []grid.Kind{grid.Tree, grid.Rock, grid.Synthoid} {
		f := newFixture(t, 10)
		p := grid.Pt(2, 2)
		require.True(t, f.player.Build(kind, p), "%s", kind)
		cost, _ := Cost(kind)
		assert.Equal(t, 10-cost, f.economy.Energy())

		require.True(t, f.player.Absorb(p))
		assert.Equal(t, 10, f.economy.Energy(), "%s", kind)
		top, _ := f.grid.Topmost(p)
		assert.Equal(t, grid.None, top)
	}
}

func TestBuildRefusedWithoutEnergy(t *testing.T) {
	f := newFixture(t, 2)
	assert.False(t, f.player.Build(grid.Synthoid, grid.Pt(2, 2)))
	assert.Equal(t, 2, f.economy.Energy())
	assert.Empty(t, f.queue.Drain())
	assert.False(t, f.economy.Ended())
}

func TestBuildPlacementRules(t *testing.T) {
	f := newFixture(t, 20)
	slope := grid.Pt(3, 1)
	piece, _ := f.grid.Piece(slope)
	require.False(t, piece.IsFloor)

	assert.False(t, f.player.Build(grid.Rock, slope), "slopes are not buildable")
	assert.False(t, f.player.Build(grid.Rock, grid.Pt(9, 9)), "off grid")
	assert.False(t, f.player.Build(grid.Sentry, grid.Pt(2, 2)), "players cannot build opponents")

	p := grid.Pt(1, 2)
	require.True(t, f.player.Build(grid.Rock, p))
	require.True(t, f.player.Build(grid.Rock, p), "rocks stack")
	require.True(t, f.player.Build(grid.Synthoid, p), "synthoids sit on rocks")
	assert.False(t, f.player.Build(grid.Tree, p), "nothing goes on a synthoid")
	assert.False(t, f.player.Build(grid.Rock, grid.Pt(4, 4)), "sentinel tile")
	assert.Equal(t, 20-2-2-3, f.economy.Energy())
}

func TestAbsorbIsTopmostFirst(t *testing.T) {
	f := newFixture(t, 20)
	p := grid.Pt(2, 1)
	require.True(t, f.player.Build(grid.Rock, p))
	require.True(t, f.player.Build(grid.Rock, p))
	require.True(t, f.player.Build(grid.Synthoid, p))
	f.queue.Drain()

	var absorbed []grid.Kind
	for f.player.Absorb(p) {
		evs := f.queue.Drain()
		require.Len(t, evs, 1)
		absorbed = append(absorbed, evs[0].Item)
	}
	assert.Equal(t, []grid.Kind{grid.Synthoid, grid.Rock, grid.Rock}, absorbed)
	assert.Zero(t, f.grid.RockCount(p))
	assert.Equal(t, 20, f.economy.Energy())
}

func TestTreeOnRockAbsorbsTreeFirst(t *testing.T) {
	f := newFixture(t, 20)
	p := grid.Pt(1, 1)
	require.True(t, f.player.Build(grid.Rock, p))
	require.True(t, f.player.Build(grid.Tree, p))

	require.True(t, f.player.Absorb(p))
	assert.False(t, f.grid.HasTree(p))
	assert.Equal(t, 1, f.grid.RockCount(p))
}

func TestAbsorbNeverBlockedByEnergy(t *testing.T) {
	f := newFixture(t, 1)
	assert.True(t, f.player.Absorb(grid.Pt(0, 4)), "sentry is worth more than the pool")
	assert.Equal(t, 4, f.economy.Energy())
	assert.False(t, f.player.Absorb(grid.Pt(2, 2)), "empty tile")
}

func TestCurrentSynthoidCannotBeAbsorbed(t *testing.T) {
	f := newFixture(t, 10)
	require.True(t, f.player.EnterScene())
	start, _ := f.grid.Start()
	assert.False(t, f.player.Absorb(start))
	assert.True(t, f.grid.HasSynthoid(start))
}

func TestAbsorbingSentinelWins(t *testing.T) {
	f := newFixture(t, 10)
	require.True(t, f.player.Absorb(grid.Pt(4, 4)))
	assert.Equal(t, events.Victory, f.economy.Outcome())
	assert.Equal(t, 14, f.economy.Energy())
	assert.Equal(t, []events.Kind{events.PlayerAbsorbed, events.GameEnded}, kinds(f.queue.Drain()))

	assert.False(t, f.player.Build(grid.Tree, grid.Pt(1, 1)), "game over")
	assert.False(t, f.player.Absorb(grid.Pt(0, 4)))
	assert.False(t, f.economy.End(events.Defeat), "outcome is latched")
}

func TestSpendingToZeroLoses(t *testing.T) {
	f := newFixture(t, 3)
	require.True(t, f.player.Build(grid.Synthoid, grid.Pt(1, 1)))
	assert.Zero(t, f.economy.Energy())
	assert.Equal(t, events.Defeat, f.economy.Outcome())
	assert.Equal(t, []events.Kind{events.PlayerBuilt, events.GameEnded}, kinds(f.queue.Drain()))
}

func TestDepletionNeverGoesNegative(t *testing.T) {
	f := newFixture(t, 2)
	assert.True(t, f.economy.Deplete())
	assert.Equal(t, 1, f.economy.Energy())
	assert.True(t, f.economy.Deplete())
	assert.Zero(t, f.economy.Energy())
	assert.Equal(t, events.Defeat, f.economy.Outcome())
	assert.False(t, f.economy.Deplete())
	assert.Zero(t, f.economy.Energy())
	assert.Equal(t, []events.Kind{events.EnergyDepleted, events.EnergyDepleted, events.GameEnded}, kinds(f.queue.Drain()))
}

func TestEnterSceneAndTransfer(t *testing.T) {
	f := newFixture(t, 10)
	require.True(t, f.player.EnterScene())
	assert.False(t, f.player.EnterScene(), "already in the scene")
	current, ok := f.grid.Current()
	require.True(t, ok)
	assert.Equal(t, grid.Pt(0, 0), current)
	assert.Equal(t, []events.Kind{events.PlayerTeleported, events.CameraChanged}, kinds(f.queue.Drain()))

	target := grid.Pt(2, 3)
	assert.False(t, f.player.Transfer(target), "no synthoid there yet")
	require.True(t, f.player.Build(grid.Synthoid, target))
	require.True(t, f.player.Transfer(target))
	current, _ = f.grid.Current()
	assert.Equal(t, target, current)
	assert.False(t, f.player.Transfer(target), "already inside")

	// The abandoned shell can now be absorbed.
	require.True(t, f.player.Absorb(grid.Pt(0, 0)))
}

func TestHyperspace(t *testing.T) {
	f := newFixture(t, 10)
	assert.False(t, f.player.Hyperspace(), "not in the scene")
	require.True(t, f.player.EnterScene())
	f.queue.Drain()

	require.True(t, f.player.Hyperspace())
	current, _ := f.grid.Current()
	assert.NotEqual(t, grid.Pt(0, 0), current)
	piece, _ := f.grid.Piece(current)
	assert.True(t, piece.IsFloor)
	assert.Equal(t, 0.0, piece.Level, "never lands above the departure tile")
	assert.Equal(t, 7, f.economy.Energy())
	assert.True(t, f.grid.HasSynthoid(grid.Pt(0, 0)), "the old shell stays behind")
}

func TestHyperspaceWithoutEnergyLoses(t *testing.T) {
	f := newFixture(t, 2)
	require.True(t, f.player.EnterScene())
	assert.False(t, f.player.Hyperspace())
	assert.Equal(t, events.Defeat, f.economy.Outcome())
	assert.Zero(t, f.economy.Energy())
}

func TestRandomEmptyFloorHonoursFilter(t *testing.T) {
	f := newFixture(t, 10)
	rng := random.New(9)
	for i := 0; i < 20; i++ {
		p, ok := f.terrain.RandomEmptyFloor(rng, func(piece grid.Piece) bool { return piece.Level >= 1 })
		require.True(t, ok)
		assert.Equal(t, 4, p.X, "only the raised column qualifies")
		assert.NotEqual(t, grid.Pt(4, 4), p)
	}
	_, ok := f.terrain.RandomEmptyFloor(rng, func(grid.Piece) bool { return false })
	assert.False(t, ok)
}
