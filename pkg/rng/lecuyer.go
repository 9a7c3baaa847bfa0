// Package rng implements the library's deterministic pseudo-random engines:
// the L'Ecuyer combined generator with Bays-Durham shuffle, the Xoshiro256**
// generator, and a dynamic Mersenne-twister parameter creator.
package rng

import "time"

// LecuyerUniform is the combined multiplicative-congruential generator with
// Bays-Durham shuffle: two LCG substreams (m1=2147483563, a1=40014;
// m2=2147483399, a2=40692) combined through a 32-slot shuffle buffer.
type LecuyerUniform struct {
	seed1, seed2 int64
	y            int64
	shuffle      [32]int64
}

const (
	lecuyerM1 = 2147483563
	lecuyerA1 = 40014
	lecuyerQ1 = 53668
	lecuyerR1 = 12211

	lecuyerM2 = 2147483399
	lecuyerA2 = 40692
	lecuyerQ2 = 52774
	lecuyerR2 = 3791

	lecuyerShuffleSize = 32
	lecuyerMaxRandom    = 1.0 - 1.2e-7 // clamp to guarantee strict (0,1) openness
)

// NewLecuyerUniform constructs a generator from a 64-bit seed. Seed 0
// triggers self-seeding from the system clock.
func NewLecuyerUniform(seed uint64) *LecuyerUniform {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g := &LecuyerUniform{
		seed1: int64(seed%uint64(lecuyerM1-1)) + 1,
		seed2: int64(seed%uint64(lecuyerM2-1)) + 1,
	}
	// Warm up the shuffle table.
	for j := lecuyerShuffleSize + 7; j >= 0; j-- {
		k := g.seed1 / lecuyerQ1
		g.seed1 = lecuyerA1*(g.seed1-k*lecuyerQ1) - k*lecuyerR1
		if g.seed1 < 0 {
			g.seed1 += lecuyerM1
		}
		if j < lecuyerShuffleSize {
			g.shuffle[j] = g.seed1
		}
	}
	g.y = g.shuffle[0]
	return g
}

// next64 advances both substreams once and returns the raw combined 32-bit
// value after the shuffle lookup, in [1, m1-1].
func (g *LecuyerUniform) next64() int64 {
	k := g.seed1 / lecuyerQ1
	g.seed1 = lecuyerA1*(g.seed1-k*lecuyerQ1) - k*lecuyerR1
	if g.seed1 < 0 {
		g.seed1 += lecuyerM1
	}

	k = g.seed2 / lecuyerQ2
	g.seed2 = lecuyerA2*(g.seed2-k*lecuyerQ2) - k*lecuyerR2
	if g.seed2 < 0 {
		g.seed2 += lecuyerM2
	}

	j := int(g.y / (1 + (lecuyerM1-1)/lecuyerShuffleSize))
	g.y = g.shuffle[j] - g.seed2
	g.shuffle[j] = g.seed1
	if g.y < 1 {
		g.y += lecuyerM1 - 1
	}
	return g.y
}

// Next returns a double in the open interval (0,1).
func (g *LecuyerUniform) Next() float64 {
	y := g.next64()
	x := float64(y) / float64(lecuyerM1)
	if x > lecuyerMaxRandom {
		return lecuyerMaxRandom
	}
	return x
}

// Weight returns the importance weight of the last draw. LecuyerUniform is
// an unweighted (pseudo-random, not quasi-random) sequence, so weight is
// always 1.
func (g *LecuyerUniform) Weight() float64 {
	return 1.0
}
