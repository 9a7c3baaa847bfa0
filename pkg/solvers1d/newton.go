package solvers1d

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// Newton performs plain Newton-Raphson iteration using
// DifferentiableObjectiveFunction.Derivative, with no safeguard against
// stepping outside the bracket — callers whose objective may have a
// poorly-behaved derivative should prefer NewtonSafe.
type Newton struct {
	BaseSolver
}

func (s *Newton) Solve(f DifferentiableObjectiveFunction, xAccuracy, guess, step float64) (float64, error) {
	if err := s.bracket(f, guess, step); err != nil {
		return 0, err
	}
	return s.solveImpl(f, xAccuracy)
}

func (s *Newton) SolveWithBracket(f DifferentiableObjectiveFunction, xAccuracy, guess, xMin, xMax float64) (float64, error) {
	if root, exact, err := s.bracketBetween(f, guess, xMin, xMax); exact || err != nil {
		return root, err
	}
	return s.solveImpl(f, xAccuracy)
}

func (s *Newton) solveImpl(f DifferentiableObjectiveFunction, xAccuracy float64) (float64, error) {
	budget := s.budget()
	froot := f.Value(s.root)
	droot := f.Derivative(s.root)
	s.evaluationNumber++
	for s.evaluationNumber <= budget {
		if droot == 0 {
			return 0, qlerrors.NewIllegalResult("Newton: zero derivative encountered at x=%g", s.root)
		}
		dx := froot / droot
		s.root -= dx
		froot = f.Value(s.root)
		droot = f.Derivative(s.root)
		s.evaluationNumber++
		if math.Abs(dx) < xAccuracy {
			return s.root, nil
		}
	}
	return 0, maxEvaluationsError("Newton", s.evaluationNumber)
}
