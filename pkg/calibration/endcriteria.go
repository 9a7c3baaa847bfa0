// Package calibration implements the secondary-calibration machinery: a
// Levenberg-Marquardt minimizer driving a set of Black-vol pricing-error
// helpers toward the market, governed by an EndCriteria stopping rule. The
// damped normal-equations solve at each step goes through gonum's mat
// package (no LM routine ships in gonum/optimize itself).
package calibration

import "github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"

// EndCriteria bounds a calibration loop: it stops on whichever of
// MaxIterations, RootEpsilon, FunctionEpsilon, or GradientNormEpsilon fires
// first.
type EndCriteria struct {
	MaxIterations       int
	RootEpsilon         float64
	FunctionEpsilon     float64
	GradientNormEpsilon float64
}

// DefaultEndCriteria returns reasonable defaults for a calibration loop
// over a handful of Black-vol helpers.
func DefaultEndCriteria() EndCriteria {
	return EndCriteria{
		MaxIterations:       1000,
		RootEpsilon:         1e-8,
		FunctionEpsilon:     1e-8,
		GradientNormEpsilon: 1e-8,
	}
}

// Validate checks that the criteria are usable.
func (c EndCriteria) Validate() error {
	if c.MaxIterations <= 0 {
		return qlerrors.NewIllegalArgument("calibration: MaxIterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// StopReason names which EndCriteria condition terminated a minimization.
type StopReason int

const (
	None StopReason = iota
	MaxIterationsReached
	StationaryPoint
	StationaryFunctionValue
	StationaryGradient
)

func (r StopReason) String() string {
	switch r {
	case MaxIterationsReached:
		return "MaxIterationsReached"
	case StationaryPoint:
		return "StationaryPoint"
	case StationaryFunctionValue:
		return "StationaryFunctionValue"
	case StationaryGradient:
		return "StationaryGradient"
	default:
		return "None"
	}
}
