package volatility

import (
	"math"
	"sort"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/blackformula"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/normaldist"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// densityTol absorbs floating round-off in the "good strike" test: a strike
// K is good iff d(K) in [-1,0] (inclusive) and the centered
// finite-difference density at K is >= -densityTol.
const densityTol = 1e-12

// KahaleSmileSection reconstructs an arbitrage-free call-price curve from a
// possibly arbitrageable input smile: a scan marks the strikes with
// admissible call-price slope and density, a displaced-lognormal tail is
// fit to the left of the first good strike and an exponential tail to the
// right of the last, and the interior linearly interpolates implied
// standard deviations across the strikes marked good.
type KahaleSmileSection struct {
	forward      float64
	exerciseTime float64
	discount     float64
	strikes      []float64
	callPrices   []float64
	goodIdx      []int // indices into strikes/callPrices that are "good"
	leftCore     float64
	rightCore    float64
	leftSigma    float64 // displaced-lognormal vol fit to the left tail
	leftShift    float64 // displaced-lognormal shift fit to the left tail
	rightA       float64 // exponential-tail coefficient a*exp(-b*K)
	rightB       float64
}

// NewKahaleSmileSection builds the arbitrage-free reconstruction from an
// input smile sampled at strikes (which must be sorted ascending and have
// at least 5 points so centered finite differences are defined away from
// the array boundary).
func NewKahaleSmileSection(source SmileSection, strikes []float64) (*KahaleSmileSection, error) {
	if len(strikes) < 5 {
		return nil, qlerrors.NewIllegalArgument("kahale: need at least 5 sampled strikes, got %d", len(strikes))
	}
	sorted := append([]float64(nil), strikes...)
	sort.Float64s(sorted)

	callPrices := make([]float64, len(sorted))
	for i, k := range sorted {
		c, err := source.CallPrice(k)
		if err != nil {
			return nil, err
		}
		callPrices[i] = c
	}

	k := &KahaleSmileSection{
		forward:      source.Forward(),
		exerciseTime: source.ExerciseTime(),
		discount:     callPriceDiscount(source),
		strikes:      sorted,
		callPrices:   callPrices,
	}

	if err := k.scanGoodStrikes(); err != nil {
		return nil, err
	}
	if err := k.fitLeftTail(); err != nil {
		return nil, err
	}
	if err := k.fitRightTail(); err != nil {
		return nil, err
	}
	return k, nil
}

// callPriceDiscount recovers the discount factor implicit in a SmileSection
// by pricing a deep-in-the-money call, whose price approaches
// discount*(forward-strike) in the zero-vol limit; used because
// SmileSection does not expose discount directly.
func callPriceDiscount(source SmileSection) float64 {
	deepStrike := source.MinStrike()
	c, err := source.CallPrice(deepStrike)
	if err != nil || source.Forward() <= deepStrike {
		return 1.0
	}
	d := c / (source.Forward() - deepStrike)
	if d <= 0 || d > 1 {
		return 1.0
	}
	return d
}

// scanGoodStrikes computes, at each interior strike, the centered
// finite-difference derivative d(K) and density g(K), marking the strike
// good when d(K) in [-1,0] and g(K) >= -densityTol.
func (k *KahaleSmileSection) scanGoodStrikes() error {
	n := len(k.strikes)
	for i := 1; i < n-1; i++ {
		h1 := k.strikes[i] - k.strikes[i-1]
		h2 := k.strikes[i+1] - k.strikes[i]
		d := (k.callPrices[i+1] - k.callPrices[i-1]) / (h1 + h2)
		g := 2 * (h1*k.callPrices[i+1] - (h1+h2)*k.callPrices[i] + h2*k.callPrices[i-1]) / (h1 * h2 * (h1 + h2))
		if d >= -1 && d <= 0 && g >= -densityTol {
			k.goodIdx = append(k.goodIdx, i)
		}
	}
	if len(k.goodIdx) == 0 {
		return qlerrors.NewIllegalResult("kahale: no arbitrage-free core strikes found in input smile")
	}
	k.leftCore = k.strikes[k.goodIdx[0]]
	k.rightCore = k.strikes[k.goodIdx[len(k.goodIdx)-1]]
	return nil
}

func (k *KahaleSmileSection) indexOf(strike float64) int {
	for i, s := range k.strikes {
		if s == strike {
			return i
		}
	}
	return -1
}

func (k *KahaleSmileSection) valueAndSlope(strike float64) (value, slope float64) {
	i := k.indexOf(strike)
	value = k.callPrices[i]
	switch {
	case i == 0:
		slope = (k.callPrices[i+1] - k.callPrices[i]) / (k.strikes[i+1] - k.strikes[i])
	case i == len(k.strikes)-1:
		slope = (k.callPrices[i] - k.callPrices[i-1]) / (k.strikes[i] - k.strikes[i-1])
	default:
		slope = (k.callPrices[i+1] - k.callPrices[i-1]) / (k.strikes[i+1] - k.strikes[i-1])
	}
	return
}

// displacedLognormalPrice evaluates f*N(d1)-(K+s)*N(d2) with
// d1=(ln(f/(K+s))+0.5*sigma^2*T)/(sigma*sqrt(T)), d2=d1-sigma*sqrt(T), the
// displaced-lognormal tail model used for the left wing.
func (k *KahaleSmileSection) displacedLognormalPrice(strike, sigma, shift float64) float64 {
	stdDev := sigma * math.Sqrt(k.exerciseTime)
	if stdDev <= 0 {
		return math.Max(k.forward-strike, 0)
	}
	d1 := (math.Log(k.forward/(strike+shift)) + 0.5*stdDev*stdDev) / stdDev
	d2 := d1 - stdDev
	return k.forward*normaldist.CDF(d1) - (strike+shift)*normaldist.CDF(d2)
}

// fitLeftTail solves the 2-parameter (sigma, shift) displaced-lognormal
// system matching value and slope at leftCore via a damped 2-D Newton
// iteration with a finite-difference Jacobian — small enough a system that
// a full nonlinear-least-squares machinery (pkg/calibration's
// Levenberg-Marquardt) is not needed here.
func (k *KahaleSmileSection) fitLeftTail() error {
	targetValue, targetSlope := k.valueAndSlope(k.leftCore)
	sigma, shift := 0.2, 0.0
	residual := func(sigma, shift float64) (rv, rs float64) {
		h := 1e-4
		v := k.displacedLognormalPrice(k.leftCore, sigma, shift)
		vPlus := k.displacedLognormalPrice(k.leftCore+h, sigma, shift)
		slope := (vPlus - v) / h
		return v - targetValue, slope - targetSlope
	}
	const maxIter = 50
	for iter := 0; iter < maxIter; iter++ {
		rv, rs := residual(sigma, shift)
		if math.Abs(rv) < 1e-10 && math.Abs(rs) < 1e-8 {
			break
		}
		const eps = 1e-6
		rvSigma, rsSigma := residual(sigma+eps, shift)
		rvShift, rsShift := residual(sigma, shift+eps)
		j11, j21 := (rvSigma-rv)/eps, (rsSigma-rs)/eps
		j12, j22 := (rvShift-rv)/eps, (rsShift-rs)/eps
		det := j11*j22 - j12*j21
		if math.Abs(det) < 1e-14 {
			break
		}
		dSigma := (rv*j22 - rs*j12) / det
		dShift := (rs*j11 - rv*j21) / det
		sigma -= dSigma
		shift -= dShift
		if sigma <= 0 {
			sigma = 1e-4
		}
	}
	k.leftSigma, k.leftShift = sigma, shift
	return nil
}

// fitRightTail solves the closed-form exponential tail a*exp(-b*K) matching
// value and slope at rightCore: b=-slope/value, a=value*exp(b*rightCore).
func (k *KahaleSmileSection) fitRightTail() error {
	value, slope := k.valueAndSlope(k.rightCore)
	if value <= 0 {
		return qlerrors.NewIllegalResult("kahale: non-positive call price %g at right core strike %g", value, k.rightCore)
	}
	b := -slope / value
	a := value * math.Exp(b*k.rightCore)
	k.rightA, k.rightB = a, b
	return nil
}

func (k *KahaleSmileSection) Forward() float64      { return k.forward }
func (k *KahaleSmileSection) ExerciseTime() float64 { return k.exerciseTime }
func (k *KahaleSmileSection) MinStrike() float64    { return k.strikes[0] }
func (k *KahaleSmileSection) MaxStrike() float64    { return k.strikes[len(k.strikes)-1] }
func (k *KahaleSmileSection) LeftCoreStrike() float64  { return k.leftCore }
func (k *KahaleSmileSection) RightCoreStrike() float64 { return k.rightCore }

// CallPrice evaluates the reconstructed arbitrage-free call price at
// strike: the left/right tail fits outside the core strikes, and linear
// interpolation of implied standard deviations across the good-strike
// subset inside.
func (k *KahaleSmileSection) CallPrice(strike float64) (float64, error) {
	switch {
	case strike < k.leftCore:
		return k.displacedLognormalPrice(strike, k.leftSigma, k.leftShift), nil
	case strike > k.rightCore:
		return k.rightA * math.Exp(-k.rightB*strike), nil
	default:
		stdDev, err := k.interiorStdDev(strike)
		if err != nil {
			return 0, err
		}
		return blackformula.Price(blackformula.Call, k.forward, strike, stdDev, k.discount)
	}
}

// interiorStdDev linearly interpolates the total standard deviation
// (vol*sqrt(T)) implied by the good-strike subset's call prices.
func (k *KahaleSmileSection) interiorStdDev(strike float64) (float64, error) {
	goodStdDevs := make([]float64, len(k.goodIdx))
	goodStrikes := make([]float64, len(k.goodIdx))
	for i, idx := range k.goodIdx {
		goodStrikes[i] = k.strikes[idx]
		sd, err := blackformula.ImpliedStdDev(blackformula.Call, k.forward, k.strikes[idx], k.discount, k.callPrices[idx], 1e-8)
		if err != nil {
			return 0, err
		}
		goodStdDevs[i] = sd
	}
	if strike <= goodStrikes[0] {
		return goodStdDevs[0], nil
	}
	if strike >= goodStrikes[len(goodStrikes)-1] {
		return goodStdDevs[len(goodStdDevs)-1], nil
	}
	for i := 0; i < len(goodStrikes)-1; i++ {
		if strike >= goodStrikes[i] && strike <= goodStrikes[i+1] {
			w := (strike - goodStrikes[i]) / (goodStrikes[i+1] - goodStrikes[i])
			return goodStdDevs[i] + w*(goodStdDevs[i+1]-goodStdDevs[i]), nil
		}
	}
	return goodStdDevs[len(goodStdDevs)-1], nil
}

// Volatility inverts CallPrice into a Black-76 implied volatility.
func (k *KahaleSmileSection) Volatility(strike float64) (float64, error) {
	c, err := k.CallPrice(strike)
	if err != nil {
		return 0, err
	}
	stdDev, err := blackformula.ImpliedStdDev(blackformula.Call, k.forward, strike, k.discount, c, 1e-8)
	if err != nil {
		return 0, err
	}
	return stdDev / math.Sqrt(k.exerciseTime), nil
}
