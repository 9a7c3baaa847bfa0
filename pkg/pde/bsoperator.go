package pde

import "github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"

// NewBlackScholesOperator builds the spatial generator A of the
// Black-Scholes PDE dV/dtau = A V (tau = time-to-maturity), discretized by
// central differences on a uniform price grid spot[0..n-1]:
//
//	A_i = 0.5*sigma^2*S_i^2*d2/dS2 + r*S_i*d/dS - r
//
// the textbook finite-difference generator for a flat-rate, flat-vol GBM
// underlying. rate and vol may be constant or themselves functions of time
// via SetTimeSetter, installed by the caller after construction.
func NewBlackScholesOperator(spot []float64, rate, vol float64) (*TridiagonalOperator, error) {
	n := len(spot)
	op, err := NewTridiagonalOperator(n)
	if err != nil {
		return nil, err
	}
	if err := fillBlackScholesRows(op, spot, rate, vol); err != nil {
		return nil, err
	}
	return op, nil
}

func fillBlackScholesRows(op *TridiagonalOperator, spot []float64, rate, vol float64) error {
	n := len(spot)
	for i := 1; i < n-1; i++ {
		dSDown := spot[i] - spot[i-1]
		dSUp := spot[i+1] - spot[i]
		if dSDown <= 0 || dSUp <= 0 {
			return qlerrors.NewIllegalArgument("pde: spot grid must be strictly increasing at index %d", i)
		}
		// Non-uniform three-point central differences: with h- = dSDown,
		// h+ = dSUp, the standard weights reduce to the uniform-grid
		// formulas when h- = h+.
		sig2S2 := vol * vol * spot[i] * spot[i]
		rS := rate * spot[i]

		d2Low := 2 / (dSDown * (dSDown + dSUp))
		d2Mid := -2 / (dSDown * dSUp)
		d2High := 2 / (dSUp * (dSDown + dSUp))

		d1Low := -dSUp / (dSDown * (dSDown + dSUp))
		d1Mid := (dSUp - dSDown) / (dSDown * dSUp)
		d1High := dSDown / (dSUp * (dSDown + dSUp))

		low := 0.5*sig2S2*d2Low + rS*d1Low
		mid := 0.5*sig2S2*d2Mid + rS*d1Mid - rate
		high := 0.5*sig2S2*d2High + rS*d1High
		op.SetRow(i, low, mid, high)
	}
	// Boundary rows are placeholders until a BoundaryCondition overrides
	// them (or corrects the array directly post-step); zero rows leave the
	// boundary value unchanged under the identity contribution added by the
	// evolvers below.
	op.SetFirstRow(0, 0)
	op.SetLastRow(0, 0)
	return nil
}

// RebuildBlackScholesOperator recomputes op's rows in place for a new
// (rate, vol) pair, used by a SetTimeSetter closure that pulls
// time-dependent rate/vol off a term structure at each rollback step.
func RebuildBlackScholesOperator(op *TridiagonalOperator, spot []float64, rate, vol float64) error {
	return fillBlackScholesRows(op, spot, rate, vol)
}
