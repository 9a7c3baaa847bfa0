package rng

import "testing"

// referenceXoshiro is a plain transcription of the xoshiro256** reference
// algorithm with no warm-up, used to check the warmed-up generators against
// independently stepped state.
type referenceXoshiro struct {
	s [4]uint64
}

func (r *referenceXoshiro) next() uint64 {
	result := rotl(r.s[1]*5, 7) * 9
	t := r.s[1] << 17
	r.s[2] ^= r.s[0]
	r.s[3] ^= r.s[1]
	r.s[1] ^= r.s[2]
	r.s[0] ^= r.s[3]
	r.s[2] ^= t
	r.s[3] = rotl(r.s[3], 45)
	return result
}

// TestXoshiro256AgainstReferenceImplementation pins the from-state
// construction against the raw reference recurrence: burning the 1,000
// warm-up draws in the reference stepping, the next 1,001 outputs must match
// a generator constructed from the same four state words draw for draw.
func TestXoshiro256AgainstReferenceImplementation(t *testing.T) {
	const (
		s0 = 10108360646465513120
		s1 = 4416403493985791904
		s2 = 7597776674045431742
		s3 = 6431387443075032236
	)
	ref := &referenceXoshiro{s: [4]uint64{s0, s1, s2, s3}}
	for i := 0; i < 1000; i++ {
		ref.next()
	}
	g := NewXoshiro256SSFromState(s0, s1, s2, s3)
	for i := 0; i < 1001; i++ {
		want, got := ref.next(), g.NextUint64()
		if want != got {
			t.Fatalf("draw %d: reference %d != generator %d", i, want, got)
		}
	}
}

// TestXoshiro256SameSeedSameSequence checks the basic reproducibility
// invariant: two generators with the same seed produce identical first 1,000
// outputs.
func TestXoshiro256SameSeedSameSequence(t *testing.T) {
	a := NewXoshiro256SSFromSeed(42)
	b := NewXoshiro256SSFromSeed(42)
	for i := 0; i < 1000; i++ {
		va, vb := a.NextUint64(), b.NextUint64()
		if va != vb {
			t.Fatalf("draw %d: %d != %d", i, va, vb)
		}
	}
}

// TestXoshiro256Independence checks that running N steps on one instance
// matches running N steps on two fresh instances with the same seed in an
// interleaved fashion: each instance's state evolves independently of the
// other's calls.
func TestXoshiro256Independence(t *testing.T) {
	const n = 500

	solo := NewXoshiro256SSFromSeed(7)
	var soloLast uint64
	for i := 0; i < n; i++ {
		soloLast = solo.NextUint64()
	}

	interleavedA := NewXoshiro256SSFromSeed(7)
	interleavedB := NewXoshiro256SSFromSeed(99)
	var lastA uint64
	for i := 0; i < n; i++ {
		lastA = interleavedA.NextUint64()
		interleavedB.NextUint64()
	}

	if soloLast != lastA {
		t.Fatalf("interleaved use perturbed instance A: %d != %d", soloLast, lastA)
	}
}

// TestXoshiro256NextRealMoments checks that NextReal's mean and variance
// are close to the uniform(0,1) theoretical values, at a sample size kept
// small enough for routine test runs.
func TestXoshiro256NextRealMoments(t *testing.T) {
	g := NewXoshiro256SSFromSeed(123)
	const nSamples = 200000
	var sum, sumSq float64
	for i := 0; i < nSamples; i++ {
		x := g.NextReal()
		if x < 0 || x >= 1 {
			t.Fatalf("NextReal out of range: %v", x)
		}
		sum += x
		sumSq += x * x
	}
	mean := sum / nSamples
	variance := sumSq/nSamples - mean*mean

	if diff := mean - 0.5; diff < -0.01 || diff > 0.01 {
		t.Errorf("mean %.5f too far from 0.5", mean)
	}
	if diff := variance - 1.0/12.0; diff < -0.01 || diff > 0.01 {
		t.Errorf("variance %.5f too far from 1/12", variance)
	}
}

func TestLecuyerUniformReproducibility(t *testing.T) {
	a := NewLecuyerUniform(55)
	b := NewLecuyerUniform(55)
	for i := 0; i < 1000; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("draw %d mismatch: %v != %v", i, va, vb)
		}
		if va <= 0 || va >= 1 {
			t.Fatalf("draw %d out of open interval (0,1): %v", i, va)
		}
	}
}

func TestDynamicMTCreatorWhitelist(t *testing.T) {
	creator := NewDynamicMTCreator(1)
	if _, err := creator.Create(32, 999, 0); err == nil {
		t.Fatal("expected IllegalArgument for unsupported exponent")
	}
	if _, err := creator.Create(16, 607, 0); err == nil {
		t.Fatal("expected IllegalArgument for unsupported word size")
	}
	params, err := creator.Create(32, 607, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Exponent != 607 || params.WordSize != 32 {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestDynamicMTStreamReproducibility(t *testing.T) {
	creator := NewDynamicMTCreator(1)
	params, err := creator.Create(32, 521, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := NewDynamicMT(params, 12345)
	b := NewDynamicMT(params, 12345)
	for i := 0; i < 2000; i++ {
		if va, vb := a.NextUint32(), b.NextUint32(); va != vb {
			t.Fatalf("draw %d mismatch: %d != %d", i, va, vb)
		}
	}
}
