// Package solvers1d implements the 1-D root-solver framework: a bracketing
// procedure shared by every concrete method, followed by one of several
// convergence algorithms (bisection, false position, secant, Newton,
// safeguarded Newton, Brent, Ridder) operating on an ObjectiveFunction. A
// shared bracketing routine, an evaluation budget, and enforced domain
// bounds are common to every solver, while each concrete type supplies only
// its own convergence step.
package solvers1d

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlsettings"
)

// DefaultMaxEvaluations is the bracketing and convergence budget applied
// when a solver is not given an explicit MaxEvaluations, matching
// QuantLib's MAX_FUNCTION_EVALUATIONS.
const DefaultMaxEvaluations = 100

// ObjectiveFunction is the function whose zero a Solver1D-family type
// searches for.
type ObjectiveFunction interface {
	Value(x float64) float64
}

// DifferentiableObjectiveFunction additionally supplies f'(x), required by
// Newton and NewtonSafe.
type DifferentiableObjectiveFunction interface {
	ObjectiveFunction
	Derivative(x float64) float64
}

// FuncObjective adapts a plain func(float64) float64 to ObjectiveFunction.
type FuncObjective func(float64) float64

func (f FuncObjective) Value(x float64) float64 { return f(x) }

// DifferentiableFuncObjective adapts a pair of plain functions to
// DifferentiableObjectiveFunction.
type DifferentiableFuncObjective struct {
	F  func(float64) float64
	Fp func(float64) float64
}

func (d DifferentiableFuncObjective) Value(x float64) float64      { return d.F(x) }
func (d DifferentiableFuncObjective) Derivative(x float64) float64 { return d.Fp(x) }

// BaseSolver holds the state shared by every concrete 1-D solver: the
// current bracket, the running root estimate, the evaluation budget, and
// optional enforced domain bounds.
type BaseSolver struct {
	root, xMin, xMax, fxMin, fxMax    float64
	maxEvaluations                    int
	evaluationNumber                  int
	lowBound, hiBound                 float64
	lowBoundEnforced, hiBoundEnforced bool
}

// SetMaxEvaluations overrides the default evaluation budget; evaluations
// must be positive.
func (b *BaseSolver) SetMaxEvaluations(evaluations int) error {
	if evaluations <= 0 {
		return qlerrors.NewIllegalArgument("solvers1d: max evaluations must be positive, got %d", evaluations)
	}
	b.maxEvaluations = evaluations
	return nil
}

// SetLowBound enforces a lower bound on the solver's domain.
func (b *BaseSolver) SetLowBound(lowBound float64) {
	b.lowBound = lowBound
	b.lowBoundEnforced = true
}

// SetHiBound enforces an upper bound on the solver's domain.
func (b *BaseSolver) SetHiBound(hiBound float64) {
	b.hiBound = hiBound
	b.hiBoundEnforced = true
}

func (b *BaseSolver) enforceBounds(x float64) float64 {
	if b.lowBoundEnforced && x < b.lowBound {
		return b.lowBound
	}
	if b.hiBoundEnforced && x > b.hiBound {
		return b.hiBound
	}
	return x
}

// maxEvaluationsError reports exhaustion of the convergence-loop budget,
// the Go counterpart of QuantLib's "maximum number of function evaluations
// exceeded" Error.
func maxEvaluationsError(solverName string, evaluations int) error {
	return qlerrors.NewIllegalResult("%s: maximum number of function evaluations (%d) exceeded", solverName, evaluations)
}

func (b *BaseSolver) budget() int {
	if b.maxEvaluations <= 0 {
		return DefaultMaxEvaluations
	}
	return b.maxEvaluations
}

// bracket expands symmetrically around guess by step, doubling the step on
// each failed attempt, until f changes sign between xMin and xMax or the
// evaluation budget is exhausted.
func (b *BaseSolver) bracket(f ObjectiveFunction, guess, step float64) error {
	budget := b.budget()
	b.root = guess
	b.xMin = b.enforceBounds(guess - step)
	fMin := f.Value(b.xMin)
	b.xMax = b.enforceBounds(guess + step)
	fMax := f.Value(b.xMax)
	b.evaluationNumber = 2
	tracing := qlsettings.Instance().EnableTracing()

	for {
		if (fMin > 0 && fMax < 0) || (fMin < 0 && fMax > 0) {
			b.fxMin, b.fxMax = fMin, fMax
			if tracing {
				log.Debug().Int("evaluations", b.evaluationNumber).Float64("xMin", b.xMin).Float64("xMax", b.xMax).Msg("solvers1d: bracket found")
			}
			return nil
		}
		if b.evaluationNumber >= budget {
			return qlerrors.NewIllegalArgument(
				"solvers1d: unable to bracket a root after %d function evaluations (last bracket [%g, %g])",
				b.evaluationNumber, b.xMin, b.xMax)
		}
		step *= 2
		b.xMin = b.enforceBounds(guess - step)
		fMin = f.Value(b.xMin)
		b.xMax = b.enforceBounds(guess + step)
		fMax = f.Value(b.xMax)
		b.evaluationNumber += 2
		if tracing {
			log.Debug().Int("evaluations", b.evaluationNumber).Float64("xMin", b.xMin).Float64("xMax", b.xMax).Msg("solvers1d: widening bracket")
		}
	}
}

// bracketBetween validates a caller-supplied bracket [xMin, xMax] without
// any scanning: f(xMin) and f(xMax) must straddle zero. If one endpoint is
// an exact root, exact reports true and root holds that endpoint, letting
// callers short-circuit before running a convergence loop.
func (b *BaseSolver) bracketBetween(f ObjectiveFunction, guess, xMin, xMax float64) (root float64, exact bool, err error) {
	if xMin >= xMax {
		return 0, false, qlerrors.NewIllegalArgument("solvers1d: invalid bracket [%g, %g]", xMin, xMax)
	}
	fMin := f.Value(xMin)
	fMax := f.Value(xMax)
	b.evaluationNumber = 2
	if fMin == 0 {
		return xMin, true, nil
	}
	if fMax == 0 {
		return xMax, true, nil
	}
	if !((fMin < 0 && fMax > 0) || (fMin > 0 && fMax < 0)) {
		return 0, false, qlerrors.NewIllegalArgument("solvers1d: root not bracketed by [%g, %g]", xMin, xMax)
	}
	b.xMin, b.xMax, b.fxMin, b.fxMax = xMin, xMax, fMin, fMax
	b.root = guess
	return 0, false, nil
}
