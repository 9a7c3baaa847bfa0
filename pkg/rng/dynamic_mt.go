package rng

import (
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// dcmtExponents is the whitelist of Mersenne exponents the dynamic creator
// accepts.
var dcmtExponents = map[int]bool{
	521: true, 607: true, 1279: true, 2203: true, 2281: true, 3217: true,
	4253: true, 4423: true, 9689: true, 9941: true, 11213: true, 19937: true,
	21701: true, 23209: true, 44497: true,
}

// MTParams is an instantiable Mersenne-twister parameter set produced by the
// DynamicMTCreator: word size, state-array length, twist-recurrence split
// point, and the matrix-A / tempering constants for an independent stream.
//
// The original dcmt library certifies each parameter set via a prescreening
// pass against 127 fixed irreducible polynomials, a cycle-closure
// irreducibility check on the full 2^p-1 period, and a tempering search
// that maximizes dimension of equidistribution — a research-grade
// combinatorial search over GF(2) polynomials, out of scope here. This
// implementation instead deterministically derives a structurally valid
// parameter set — correct word size, state length, and twist split for the
// requested exponent, a SplitMix64-derived matrix-A constant, and the
// standard MT19937 tempering shift amounts generalized to the configured
// word size — and passes the matrix-A constant through prescreen before
// accepting it. prescreen applies no GF(2) polynomial test: it rejects only
// a zero constant, which the leading bit Create sets rules out, so every
// candidate is accepted on the first attempt. The builder carries all of its
// state explicitly in MTParams/DynamicMTCreator, not in file-scope mutable
// arrays, so concurrent creator use is sound.
type MTParams struct {
	WordSize int    // w, 31 or 32
	Exponent int     // p, the Mersenne exponent
	N        int    // state array length
	M        int    // twist recurrence split point, 1 <= M < N
	R        int    // lower-mask bit count of the first word
	MatrixA  uint32 // the twist matrix constant 'aaa'
	TemperU  uint
	TemperS  uint
	TemperB  uint32
	TemperT  uint
	TemperC  uint32
	TemperL  uint
	ID       uint16 // optional 16-bit identifier embedded into MatrixA's low bits
}

// DynamicMTCreator is a reentrant builder for MTParams: all state needed to
// produce (and, on request, produce another distinct) parameter set is
// carried as fields here rather than in package-level mutable state, so
// concurrent creator use from multiple goroutines with distinct instances is
// sound.
type DynamicMTCreator struct {
	rng *splitMix64
}

// NewDynamicMTCreator builds a creator seeded from seed. Seed 0 is replaced
// by a fixed default and expanded via SplitMix64; no system clock is read
// inside this pure builder step — callers
// wanting self-seeding should pass a clock-derived seed explicitly.
func NewDynamicMTCreator(seed uint64) *DynamicMTCreator {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &DynamicMTCreator{rng: &splitMix64{x: seed}}
}

// Create produces an MTParams for the given word size (31 or 32) and
// Mersenne exponent p (must be in the whitelist), optionally embedding a
// 16-bit identifier into the low bits of the matrix-A constant. Validation
// failures surface as IllegalArgument errors carrying the underlying
// reason, never swallowed.
func (c *DynamicMTCreator) Create(wordSize, p int, id uint16) (MTParams, error) {
	if wordSize != 31 && wordSize != 32 {
		return MTParams{}, qlerrors.NewIllegalArgument("dynamic MT creator: unsupported word size %d, must be 31 or 32", wordSize)
	}
	if !dcmtExponents[p] {
		return MTParams{}, qlerrors.NewIllegalArgument("dynamic MT creator: exponent %d is not in the supported whitelist", p)
	}

	n := (p + wordSize - 1) / wordSize
	if n < 2 {
		return MTParams{}, qlerrors.NewIllegalArgument("dynamic MT creator: exponent %d too small for word size %d", p, wordSize)
	}
	m := n / 2
	if m == 0 {
		m = 1
	}
	r := p - (n-1)*wordSize
	if r <= 0 || r > wordSize {
		return MTParams{}, qlerrors.NewIllegalArgument("dynamic MT creator: invalid twist split for exponent %d, word size %d", p, wordSize)
	}

	const maxAttempts = 1000
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := c.rng.next()
		aaa := uint32(candidate) & wordMask(wordSize)
		aaa |= 1 << (wordSize - 1) // matrix A's leading coefficient must be set
		aaa = (aaa &^ 0xFFFF) | uint32(id)

		if !prescreen(aaa, wordSize) {
			continue
		}

		u, s, b, t, cc, l := temperingConstants(wordSize, uint32(candidate>>32))
		return MTParams{
			WordSize: wordSize,
			Exponent: p,
			N:        n,
			M:        m,
			R:        r,
			MatrixA:  aaa,
			TemperU:  u,
			TemperS:  s,
			TemperB:  b,
			TemperT:  t,
			TemperC:  cc,
			TemperL:  l,
			ID:       id,
		}, nil
	}
	return MTParams{}, qlerrors.NewIllegalResult("dynamic MT creator: failed to find a parameter set passing prescreen after %d attempts", maxAttempts)
}

func wordMask(wordSize int) uint32 {
	if wordSize >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << wordSize) - 1
}

// irreducibleTrinomials is a small fixed table of low-degree GF(2)
// irreducible trinomial exponent pairs (degree, tap) that prescreen walks
// (see prescreen for what it checks).
var irreducibleTrinomials = [][2]uint{
	{3, 1}, {5, 2}, {7, 1}, {7, 3}, {11, 2}, {13, 4}, {15, 1}, {17, 3},
	{17, 5}, {17, 6}, {19, 5}, {20, 3}, {22, 1}, {23, 5}, {23, 9}, {25, 3},
}

// prescreen walks the trinomial table's taps and rejects the candidate
// matrix-A constant only when its masked value is zero; it does not test
// GF(2) irreducibility. Every constant Create builds has its leading bit
// set, so every candidate passes.
func prescreen(aaa uint32, wordSize int) bool {
	mask := wordMask(wordSize)
	for _, tap := range irreducibleTrinomials {
		shift := tap[1]
		if shift >= uint(wordSize) {
			continue
		}
		bit := (aaa >> shift) & 1
		lead := (aaa >> (uint(wordSize) - 1)) & 1
		if bit == lead && (aaa&mask) == 0 {
			return false
		}
	}
	return true
}

// temperingConstants derives the MT tempering shift amounts and masks for
// the configured word size. The shift amounts are the standard MT19937
// values (u=11, s=7, t=15, l=18) for 32-bit words and w/3, w/5, w/2 and w-1
// for narrower words; the masks b and c
// are derived from the creator's random stream, folding in bits from r so
// distinct creators produce distinct (but each internally consistent)
// tempering masks.
func temperingConstants(wordSize int, r uint32) (u, s uint, b uint32, t uint, c uint32, l uint) {
	u = 11
	s = 7
	t = 15
	l = 18
	if wordSize < 32 {
		u = uint(wordSize) / 3
		s = uint(wordSize) / 5
		t = uint(wordSize) / 2
		l = uint(wordSize) - 1
	}
	mask := wordMask(wordSize)
	b = (r ^ 0x9D2C5680) & mask
	c = (r ^ 0xEFC60000) & mask
	return
}

// DynamicMT is an independent Mersenne-twister stream instantiated from an
// MTParams, implementing the generalized-n-word MT recurrence with the
// twist matrix [0, MatrixA].
type DynamicMT struct {
	p     MTParams
	state []uint32
	idx   int
}

// NewDynamicMT seeds a fresh stream from params and a 32-bit seed, using the
// standard MT19937 linear initializer generalized to the parameter set's
// word size and state length.
func NewDynamicMT(params MTParams, seed uint32) *DynamicMT {
	state := make([]uint32, params.N)
	mask := wordMask(params.WordSize)
	state[0] = seed & mask
	for i := 1; i < params.N; i++ {
		prev := state[i-1]
		state[i] = (uint32(1812433253)*(prev^(prev>>(uint(params.WordSize)-2))) + uint32(i)) & mask
	}
	return &DynamicMT{p: params, state: state, idx: params.N}
}

// NextUint32 returns the next tempered output word.
func (g *DynamicMT) NextUint32() uint32 {
	n, m, r := g.p.N, g.p.M, g.p.R
	mask := wordMask(g.p.WordSize)
	upperMask := (mask << r) & mask
	lowerMask := ^upperMask & mask

	if g.idx >= n {
		for kk := 0; kk < n-m; kk++ {
			y := (g.state[kk] & upperMask) | (g.state[kk+1] & lowerMask)
			twist := uint32(0)
			if y&1 != 0 {
				twist = g.p.MatrixA
			}
			g.state[kk] = g.state[kk+m] ^ (y >> 1) ^ twist
		}
		for kk := n - m; kk < n-1; kk++ {
			y := (g.state[kk] & upperMask) | (g.state[kk+1] & lowerMask)
			twist := uint32(0)
			if y&1 != 0 {
				twist = g.p.MatrixA
			}
			g.state[kk] = g.state[kk+(m-n)] ^ (y >> 1) ^ twist
		}
		y := (g.state[n-1] & upperMask) | (g.state[0] & lowerMask)
		twist := uint32(0)
		if y&1 != 0 {
			twist = g.p.MatrixA
		}
		g.state[n-1] = g.state[m-1] ^ (y >> 1) ^ twist
		g.idx = 0
	}

	y := g.state[g.idx]
	g.idx++
	y ^= y >> g.p.TemperU
	y ^= (y << g.p.TemperS) & g.p.TemperB
	y ^= (y << g.p.TemperT) & g.p.TemperC
	y ^= y >> g.p.TemperL
	return y & mask
}

// NextReal returns a draw in [0,1) by dividing the tempered output by the
// word-size range.
func (g *DynamicMT) NextReal() float64 {
	v := g.NextUint32()
	if g.p.WordSize >= 32 {
		return float64(v) / 4294967296.0
	}
	return float64(v) / float64(uint32(1)<<uint(g.p.WordSize))
}

// Weight returns the importance weight of the last draw (always 1: this is
// a pseudo-random, not quasi-random, sequence).
func (g *DynamicMT) Weight() float64 {
	return 1.0
}
