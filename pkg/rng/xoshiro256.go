package rng

// Xoshiro256SS implements the xoshiro256** generator (Blackman & Vigna): a
// fixed permutation on four 64-bit state words. Advancing is pure; two
// generators holding equal state produce identical subsequent sequences,
// and the implementation does not interact across instances — parallel use
// with distinct seeds is safe and produces distinct streams.
type Xoshiro256SS struct {
	s       [4]uint64
	use31   bool // configure for 31-bit-word output via nextReal's alternate divisor
}

// splitMix64 is the auxiliary generator used to expand a single 64-bit seed
// into the four-word xoshiro256** state.
type splitMix64 struct {
	x uint64
}

func (sm *splitMix64) next() uint64 {
	sm.x += 0x9E3779B97F4A7C15
	z := sm.x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// NewXoshiro256SSFromSeed builds a generator by expanding seed through
// SplitMix64 to fill all four state words, then discards the first 1,000
// draws as warm-up.
func NewXoshiro256SSFromSeed(seed uint64) *Xoshiro256SS {
	sm := &splitMix64{x: seed}
	g := &Xoshiro256SS{s: [4]uint64{sm.next(), sm.next(), sm.next(), sm.next()}}
	for i := 0; i < 1000; i++ {
		g.NextUint64()
	}
	return g
}

// NewXoshiro256SSFromState builds a generator directly from four state words
// (not all zero, per the algorithm's invariant), then discards the same
// 1,000-draw warm-up the seeded constructor does — so a reference
// implementation starting at the same words and burning 1,000 draws produces
// this generator's exact subsequent sequence.
func NewXoshiro256SSFromState(s0, s1, s2, s3 uint64) *Xoshiro256SS {
	g := &Xoshiro256SS{s: [4]uint64{s0, s1, s2, s3}}
	for i := 0; i < 1000; i++ {
		g.NextUint64()
	}
	return g
}

// State returns the current four-word state, e.g. to seed another instance
// at the same point in the sequence.
func (g *Xoshiro256SS) State() (uint64, uint64, uint64, uint64) {
	return g.s[0], g.s[1], g.s[2], g.s[3]
}

// SetUse31BitWords configures NextReal to divide by 2^31 instead of 2^64,
// for callers treating the generator's output as 31-bit words.
func (g *Xoshiro256SS) SetUse31BitWords(v bool) {
	g.use31 = v
}

func rotl(x uint64, k uint) uint64 {
	return (x << k) | (x >> (64 - k))
}

// NextUint64 returns rotl(s1*5, 7)*9, then updates state with XORs and a
// single rotl, per the xoshiro256** reference algorithm.
func (g *Xoshiro256SS) NextUint64() uint64 {
	result := rotl(g.s[1]*5, 7) * 9

	t := g.s[1] << 17

	g.s[2] ^= g.s[0]
	g.s[3] ^= g.s[1]
	g.s[1] ^= g.s[2]
	g.s[0] ^= g.s[3]

	g.s[2] ^= t

	g.s[3] = rotl(g.s[3], 45)

	return result
}

// NextReal returns (NextUint64()+0.5)/2^64, or /2^31 if configured for
// 31-bit words.
func (g *Xoshiro256SS) NextReal() float64 {
	v := g.NextUint64()
	if g.use31 {
		return (float64(uint32(v)) + 0.5) / 2147483648.0
	}
	return (float64(v) + 0.5) / 18446744073709551616.0
}

// Weight returns the importance weight of the last draw; Xoshiro256SS is an
// unweighted pseudo-random sequence, so weight is always 1.
func (g *Xoshiro256SS) Weight() float64 {
	return 1.0
}
