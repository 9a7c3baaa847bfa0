// Package blackformula supplies the minimal Black-76 lognormal premium and
// implied-volatility leaf that pkg/engine's calibration helpers and
// pkg/volatility's smile sections build their premia on. The formula is
// stated on a forward and a discount factor — the form calibration helpers
// actually consume — and is not re-exposed as a general option-pricing API.
package blackformula

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/normaldist"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/solvers1d"
)

// OptionType distinguishes calls from puts.
type OptionType int

const (
	Call OptionType = iota
	Put
)

// d1d2 computes the Black-76 d1, d2 pair for a forward F, strike K, and
// total standard deviation stdDev = vol*sqrt(T).
func d1d2(forward, strike, stdDev float64) (d1, d2 float64) {
	d1 = (math.Log(forward/strike) + 0.5*stdDev*stdDev) / stdDev
	d2 = d1 - stdDev
	return
}

// Price returns the Black-76 premium of a European option on a forward:
//
//	call = df * (F*N(d1) - K*N(d2))
//	put  = df * (K*N(-d2) - F*N(-d1))
//
// stdDev is the total standard deviation over the option's life
// (vol*sqrt(T)); discount is the discount factor to the option's payment
// date.
func Price(optType OptionType, forward, strike, stdDev, discount float64) (float64, error) {
	if forward <= 0 || strike <= 0 {
		return 0, qlerrors.NewIllegalArgument("blackformula: forward and strike must be positive, got forward=%g strike=%g", forward, strike)
	}
	if stdDev < 0 {
		return 0, qlerrors.NewIllegalArgument("blackformula: stdDev must be non-negative, got %g", stdDev)
	}
	if stdDev == 0 {
		intrinsic := math.Max(forward-strike, 0)
		if optType == Put {
			intrinsic = math.Max(strike-forward, 0)
		}
		return discount * intrinsic, nil
	}
	d1, d2 := d1d2(forward, strike, stdDev)
	if optType == Call {
		return discount * (forward*normaldist.CDF(d1) - strike*normaldist.CDF(d2)), nil
	}
	return discount * (strike*normaldist.CDF(-d2) - forward*normaldist.CDF(-d1)), nil
}

// Vega returns d(price)/d(stdDev), the Black-76 vega per unit of
// vol*sqrt(T); multiply by sqrt(T) for the derivative with respect to vol.
func Vega(forward, strike, stdDev, discount float64) float64 {
	if stdDev <= 0 {
		return 0
	}
	d1, _ := d1d2(forward, strike, stdDev)
	return discount * forward * normaldist.PDF(d1)
}

// impliedStdDevObjective adapts Price into a solvers1d.ObjectiveFunction
// whose zero is the target premium.
type impliedStdDevObjective struct {
	optType       OptionType
	forward       float64
	strike        float64
	discount      float64
	targetPremium float64
}

func (o impliedStdDevObjective) Value(stdDev float64) float64 {
	price, err := Price(o.optType, o.forward, o.strike, stdDev, o.discount)
	if err != nil {
		return math.NaN()
	}
	return price - o.targetPremium
}

// ImpliedStdDev solves for the total standard deviation (vol*sqrt(T)) that
// reproduces premium, via Brent's method over pkg/solvers1d bracketed away
// from the stdDev=0 singularity.
func ImpliedStdDev(optType OptionType, forward, strike, discount, premium, accuracy float64) (float64, error) {
	if premium < 0 {
		return 0, qlerrors.NewIllegalArgument("blackformula: premium must be non-negative, got %g", premium)
	}
	obj := impliedStdDevObjective{optType: optType, forward: forward, strike: strike, discount: discount, targetPremium: premium}

	guess := math.Sqrt(2*math.Pi) * premium / (discount * forward) // standard ATM vol*sqrt(T) approximation
	var brent solvers1d.Brent
	root, err := brent.SolveWithBracket(solvers1d.FuncObjective(obj.Value), accuracy, guess, 1e-8, 10.0)
	if err != nil {
		return 0, qlerrors.NewIllegalResult("blackformula: implied standard deviation did not converge: %v", err)
	}
	return root, nil
}
