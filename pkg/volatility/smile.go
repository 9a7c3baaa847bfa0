// Package volatility implements the volatility-surface layer: a
// SmileSection contract, a Black-vol-quoted reference implementation, the
// Kahale arbitrage-free smile reconstruction, and a swaption volatility
// cube over (option-tenor x swap-tenor x strike-spread).
package volatility

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/blackformula"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// SmileSection is a single-expiry slice of a volatility surface: given a
// strike, it reports the Black-76 implied volatility and the corresponding
// call premium.
type SmileSection interface {
	Forward() float64
	ExerciseTime() float64
	MinStrike() float64
	MaxStrike() float64
	Volatility(strike float64) (float64, error)
	CallPrice(strike float64) (float64, error)
}

// VolFunc supplies the Black-76 implied volatility at a strike.
type VolFunc func(strike float64) (float64, error)

// BlackVolSmileSection is a SmileSection quoted directly in Black-76
// volatility: CallPrice is derived by feeding Volatility(strike)*sqrt(T)
// into blackformula.Price.
type BlackVolSmileSection struct {
	forward      float64
	exerciseTime float64
	discount     float64
	minStrike    float64
	maxStrike    float64
	vol          VolFunc
}

// NewBlackVolSmileSection builds a smile section quoted in Black-76
// volatility over [minStrike, maxStrike].
func NewBlackVolSmileSection(forward, exerciseTime, discount, minStrike, maxStrike float64, vol VolFunc) (*BlackVolSmileSection, error) {
	if exerciseTime <= 0 {
		return nil, qlerrors.NewIllegalArgument("volatility: exercise time must be positive, got %g", exerciseTime)
	}
	if minStrike <= 0 || maxStrike <= minStrike {
		return nil, qlerrors.NewIllegalArgument("volatility: invalid strike range [%g, %g]", minStrike, maxStrike)
	}
	return &BlackVolSmileSection{forward: forward, exerciseTime: exerciseTime, discount: discount, minStrike: minStrike, maxStrike: maxStrike, vol: vol}, nil
}

func (s *BlackVolSmileSection) Forward() float64      { return s.forward }
func (s *BlackVolSmileSection) ExerciseTime() float64 { return s.exerciseTime }
func (s *BlackVolSmileSection) MinStrike() float64    { return s.minStrike }
func (s *BlackVolSmileSection) MaxStrike() float64    { return s.maxStrike }

func (s *BlackVolSmileSection) Volatility(strike float64) (float64, error) {
	if strike < s.minStrike || strike > s.maxStrike {
		return 0, qlerrors.NewIllegalArgument("volatility: strike %g outside smile range [%g, %g]", strike, s.minStrike, s.maxStrike)
	}
	return s.vol(strike)
}

func (s *BlackVolSmileSection) CallPrice(strike float64) (float64, error) {
	vol, err := s.Volatility(strike)
	if err != nil {
		return 0, err
	}
	stdDev := vol * math.Sqrt(s.exerciseTime)
	return blackformula.Price(blackformula.Call, s.forward, strike, stdDev, s.discount)
}

// DigitalOptionPrice finite-differences a SmileSection's call prices into
// the discounted digital price -dc/dK, using a centered difference of
// width 2*gap clamped to the smile's strike range. For an arbitrage-free
// smile the result lies in [0, discount] and is non-increasing in strike.
func DigitalOptionPrice(s SmileSection, strike, gap float64) (float64, error) {
	if gap <= 0 {
		return 0, qlerrors.NewIllegalArgument("volatility: digital gap must be positive, got %g", gap)
	}
	lo := math.Max(strike-gap, s.MinStrike())
	hi := math.Min(strike+gap, s.MaxStrike())
	if hi <= lo {
		return 0, qlerrors.NewIllegalArgument("volatility: strike %g leaves no room for a width-%g difference in [%g, %g]", strike, gap, s.MinStrike(), s.MaxStrike())
	}
	cLo, err := s.CallPrice(lo)
	if err != nil {
		return 0, err
	}
	cHi, err := s.CallPrice(hi)
	if err != nil {
		return 0, err
	}
	return (cLo - cHi) / (hi - lo), nil
}

// Density finite-differences a SmileSection's call prices into the implied
// risk-neutral density d2c/dK2 at strike. Non-negative for an
// arbitrage-free smile.
func Density(s SmileSection, strike, gap float64) (float64, error) {
	if gap <= 0 {
		return 0, qlerrors.NewIllegalArgument("volatility: density gap must be positive, got %g", gap)
	}
	if strike-gap < s.MinStrike() || strike+gap > s.MaxStrike() {
		return 0, qlerrors.NewIllegalArgument("volatility: strike %g too close to the smile boundary for a width-%g difference", strike, gap)
	}
	cLo, err := s.CallPrice(strike - gap)
	if err != nil {
		return 0, err
	}
	c, err := s.CallPrice(strike)
	if err != nil {
		return 0, err
	}
	cHi, err := s.CallPrice(strike + gap)
	if err != nil {
		return 0, err
	}
	return (cHi - 2*c + cLo) / (gap * gap), nil
}

// FlatSmileSection is a degenerate SmileSection with a single constant
// volatility at every strike, useful as a test fixture and as the reference
// smile in flat calibration baskets.
type FlatSmileSection struct {
	base *BlackVolSmileSection
}

// NewFlatSmileSection builds a flat-vol smile over [minStrike, maxStrike].
func NewFlatSmileSection(forward, exerciseTime, discount, vol, minStrike, maxStrike float64) (*FlatSmileSection, error) {
	base, err := NewBlackVolSmileSection(forward, exerciseTime, discount, minStrike, maxStrike, func(float64) (float64, error) { return vol, nil })
	if err != nil {
		return nil, err
	}
	return &FlatSmileSection{base: base}, nil
}

func (s *FlatSmileSection) Forward() float64               { return s.base.Forward() }
func (s *FlatSmileSection) ExerciseTime() float64           { return s.base.ExerciseTime() }
func (s *FlatSmileSection) MinStrike() float64              { return s.base.MinStrike() }
func (s *FlatSmileSection) MaxStrike() float64              { return s.base.MaxStrike() }
func (s *FlatSmileSection) Volatility(k float64) (float64, error) { return s.base.Volatility(k) }
func (s *FlatSmileSection) CallPrice(k float64) (float64, error)  { return s.base.CallPrice(k) }
