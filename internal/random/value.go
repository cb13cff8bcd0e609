// Package random provides the seeded value stream used to shape levels and
// drive opponents. The stream is reproducible for a given level number and
// diverges quickly across level numbers.
package random

import "math"

const (
	seedCount   = 5
	seedCopies  = 3
	bufferSize  = seedCount * seedCopies
	secondSlot  = 7
	seedModulus = 1 << 31
)

// Bounded is satisfied by any inclusive integer range.
type Bounded interface {
	Bounds() (lo, hi int)
}

// ValueGenerator is a deterministic pseudo-random stream. It is not safe for
// concurrent use.
type ValueGenerator struct {
	seeds [bufferSize]uint64
	head  int
	draws uint64
}

// New derives a generator from a level number.
func New(level int) *ValueGenerator {
	g := &ValueGenerator{}
	base := startingSeeds(level)
	for copyIdx := 0; copyIdx < seedCopies; copyIdx++ {
		for i, s := range base {
			g.seeds[copyIdx*seedCount+i] = s
		}
	}
	return g
}

// startingSeeds mixes the level through sine and polynomial terms so that
// neighbouring levels start far apart.
func startingSeeds(level int) [seedCount]uint64 {
	var out [seedCount]uint64
	x := float64(level)
	for i := range out {
		k := float64(i + 1)
		wave := math.Abs(math.Sin(x*k*12.9898+k*78.233)) * 43758.5453
		frac := wave - math.Floor(wave)
		poly := uint64(level)*uint64(2654435761+i*40503) + uint64(i*i*7919)
		out[i] = (uint64(frac*seedModulus) ^ poly) % seedModulus
	}
	return out
}

// NextValue returns a value in [min(a,b), max(a,b)].
func (g *ValueGenerator) NextValue(a, b int) int {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	// Zero means the span covers all of int.
	width := uint64(hi) - uint64(lo) + 1

	seed := g.seeds[g.head]
	g.draws++
	offset := seed + g.draws
	if width != 0 {
		offset %= width
	}
	// Wrapping addition keeps lo+offset inside [lo, hi].
	result := lo + int(offset)

	// The consumed seed goes back in at the tail; with a fixed size ring that
	// is the slot it came from, after the head moves on.
	g.seeds[g.head] = perturb(seed, g.draws)
	other := (g.head + secondSlot) % bufferSize
	g.seeds[other] = perturb(g.seeds[other]^seed, g.draws+uint64(other))
	g.head = (g.head + 1) % bufferSize
	return result
}

// NextValueIn returns a value inside the inclusive range r.
func (g *ValueGenerator) NextValueIn(r Bounded) int {
	lo, hi := r.Bounds()
	return g.NextValue(lo, hi)
}

// NextIndex returns a random index into a collection of length n. It reports
// false for empty collections without consuming a draw.
func (g *ValueGenerator) NextIndex(n int) (int, bool) {
	if n <= 0 {
		return -1, false
	}
	return g.NextValue(0, n-1), true
}

// Draws reports how many values have been drawn so far.
func (g *ValueGenerator) Draws() uint64 { return g.draws }

// NextItem returns a random element of items, or false when items is empty.
func NextItem[T any](g *ValueGenerator, items []T) (T, bool) {
	idx, ok := g.NextIndex(len(items))
	if !ok {
		var zero T
		return zero, false
	}
	return items[idx], true
}

func perturb(seed, salt uint64) uint64 {
	s := seed*6364136223846793005 + 1442695040888963407 + salt
	s ^= s >> 29
	s *= 0xbf58476d1ce4e5b9
	s ^= s >> 32
	return s % seedModulus
}
