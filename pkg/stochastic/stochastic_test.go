package stochastic

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBlackScholesProcessExpectation(t *testing.T) {
	p := NewBlackScholesProcess(100, 0.05, 0.02, 0.2)
	got := p.Expectation(0, 100, 1.0)
	want := 100 * math.Exp((0.05-0.02)*1.0)
	if math.Abs(got-want) > 1e-10 {
		t.Fatalf("Expectation = %v, want %v", got, want)
	}
}

func TestBlackScholesProcessEvolveMatchesLogEuler(t *testing.T) {
	p := NewBlackScholesProcess(100, 0.05, 0.0, 0.2)
	got := p.Evolve(0, 100, 1.0, 0.5)
	drift := (0.05 - 0.0 - 0.5*0.2*0.2) * 1.0
	want := 100 * math.Exp(drift+0.2*0.5)
	if math.Abs(got-want) > 1e-10 {
		t.Fatalf("Evolve = %v, want %v", got, want)
	}
}

func TestGeneralizedBlackScholesExpectationIsRiskNeutralDrift(t *testing.T) {
	forward := func(float64) float64 { return 0.05 }
	div := func(float64) float64 { return 0.01 }
	localVol := func(t, x float64) float64 { return 0.25 }
	p := NewGeneralizedBlackScholesProcess(50, forward, div, localVol)
	got := p.Expectation(0, 50, 2.0)
	want := 50 * math.Exp((0.05-0.01)*2.0)
	if math.Abs(got-want) > 1e-10 {
		t.Fatalf("Expectation = %v, want %v (must not include the Ito correction)", got, want)
	}
}

func TestOrnsteinUhlenbeckExactMoments(t *testing.T) {
	p := NewOrnsteinUhlenbeckProcess(1.0, 0.5, 0.3, nil)
	mean := p.Expectation(0, 1.0, 10.0)
	want := 1.0 * math.Exp(-0.5*10.0)
	if math.Abs(mean-want) > 1e-12 {
		t.Fatalf("Expectation = %v, want exact mean %v", mean, want)
	}
	stdShort := p.StdDeviation(0, 1.0, 1e-8)
	wantShort := 0.3 * math.Sqrt(1e-8)
	if math.Abs(stdShort-wantShort)/wantShort > 1e-3 {
		t.Fatalf("short-dt StdDeviation = %v, want ~%v", stdShort, wantShort)
	}
}

func TestOrnsteinUhlenbeckZeroSpeedDegenerates(t *testing.T) {
	p := NewOrnsteinUhlenbeckProcess(2.0, 0, 0.4, nil)
	if got := p.Expectation(0, 2.0, 5.0); got != 2.0 {
		t.Fatalf("zero-speed Expectation should equal x0, got %v", got)
	}
	want := 0.4 * math.Sqrt(5.0)
	if got := p.StdDeviation(0, 2.0, 5.0); math.Abs(got-want) > 1e-12 {
		t.Fatalf("zero-speed StdDeviation = %v, want %v", got, want)
	}
}

func TestExtOUWithJumpsExpectationIncludesCompensator(t *testing.T) {
	base := NewOrnsteinUhlenbeckProcess(0, 1.0, 0.2, nil)
	p := NewExtOUWithJumpsProcess(base, 2.0, 0.5, 1.0, 0.1)
	got := p.Expectation(0, 0.1, 0.01)
	want := base.Expectation(0, 0.1-0.1, 0.01) + 0.1*math.Exp(-2.0*0.01) + 1.0*0.5*0.01
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Expectation = %v, want %v including the jump compensator", got, want)
	}
}

func TestHestonFellerCondition(t *testing.T) {
	satisfied := NewHestonProcess(0.04, 2.0, 0.04, 0.2)
	if !satisfied.FellerCondition() {
		t.Fatalf("expected Feller condition satisfied for kappa=2,theta=0.04,xi=0.2")
	}
	violated := NewHestonProcess(0.04, 0.1, 0.04, 2.0)
	if violated.FellerCondition() {
		t.Fatalf("expected Feller condition violated for kappa=0.1,xi=2.0")
	}
}

func TestHestonEvolveTruncatesNegativeVariance(t *testing.T) {
	p := NewHestonProcess(0.0001, 1.0, 0.04, 2.0)
	got := p.Evolve(0, 0.0001, 1.0, -10)
	if math.IsNaN(got) {
		t.Fatalf("Evolve produced NaN from a large negative shock")
	}
	// The shock above leaves the variance negative; the next step must
	// truncate it at zero inside the square root rather than produce NaN.
	next := p.Evolve(0, got, 1.0, 0.5)
	if math.IsNaN(next) {
		t.Fatalf("Evolve produced NaN from negative variance %v", got)
	}
}

func TestGemanRoncoroniSeasonalOverlay(t *testing.T) {
	seasonal := func(t float64) float64 { return math.Sin(2 * math.Pi * t) }
	p := NewGemanRoncoroniProcess(0, 1.0, 0.1, 0.2, 0.05, seasonal)
	if got, want := p.X0(), seasonal(0); math.Abs(got-want) > 1e-12 {
		t.Fatalf("X0 = %v, want seasonal(0) = %v", got, want)
	}
}

func TestCorrelatedNoiseRejectsNonPositiveDefinite(t *testing.T) {
	bad := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	if _, err := NewCorrelatedNoise(bad); err == nil {
		t.Fatalf("expected an error for a non-positive-definite correlation matrix")
	}
}

func TestCorrelatedNoiseTransformIdentityIsNoOp(t *testing.T) {
	identity := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	noise, err := NewCorrelatedNoise(identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := noise.Transform([]float64{0.7, -1.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.7, -1.3}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Transform with identity correlation = %v, want %v", got, want)
		}
	}
}

func TestCorrelatedNoisePreservesCorrelation(t *testing.T) {
	rho := 0.6
	corr := mat.NewSymDense(2, []float64{1, rho, rho, 1})
	noise, err := NewCorrelatedNoise(corr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// With iid draws (1,0) the rotated first component must equal 1 (L[0][0]=1)
	// and the second component must equal rho (L[1][0]=rho), reproducing the
	// correlation matrix's own entries.
	got, err := noise.Transform([]float64{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got[0]-1) > 1e-10 {
		t.Fatalf("first rotated component = %v, want 1", got[0])
	}
	if math.Abs(got[1]-rho) > 1e-10 {
		t.Fatalf("second rotated component = %v, want %v", got[1], rho)
	}
}

func TestCorrelatedNoiseRejectsDimensionMismatch(t *testing.T) {
	identity := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	noise, err := NewCorrelatedNoise(identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := noise.Transform([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected a dimension-mismatch error")
	}
}

func TestIndependentNDRejectsDimensionMismatch(t *testing.T) {
	components := []Process1D{
		NewBlackScholesProcess(100, 0.05, 0, 0.2),
	}
	corr := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	if _, err := NewIndependentND(components, corr); err == nil {
		t.Fatalf("expected an error when correlation dimension does not match component count")
	}
}

func TestIndependentNDEvolveAndExpectationShapes(t *testing.T) {
	components := []Process1D{
		NewBlackScholesProcess(100, 0.05, 0, 0.2),
		NewOrnsteinUhlenbeckProcess(0.03, 0.5, 0.01, nil),
	}
	corr := mat.NewSymDense(2, []float64{1, 0.4, 0.4, 1})
	p, err := NewIndependentND(components, corr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", p.Size())
	}
	x0 := p.X0()
	if len(x0) != 2 || x0[0] != 100 || x0[1] != 0.03 {
		t.Fatalf("X0() = %v, want [100 0.03]", x0)
	}
	exp := p.Expectation(0, x0, 1.0)
	if len(exp) != 2 {
		t.Fatalf("Expectation() length = %d, want 2", len(exp))
	}
	evolved := p.Evolve(0, x0, 1.0, []float64{0.1, -0.2})
	if len(evolved) != 2 {
		t.Fatalf("Evolve() length = %d, want 2", len(evolved))
	}
	cov := p.Covariance(0, x0, 1.0)
	r, c := cov.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("Covariance() dims = (%d,%d), want (2,2)", r, c)
	}
}
