package calibration

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlsettings"
)

// Problem is the least-squares objective a Minimize call drives to zero: a
// parameter vector maps to a residual vector whose squared norm is
// minimized.
type Problem interface {
	Residuals(params []float64) ([]float64, error)
}

// Result carries a minimization's outcome.
type Result struct {
	Params       []float64
	ResidualNorm float64
	Iterations   int
	StopReason   StopReason
}

// Minimize runs a Levenberg-Marquardt iteration from initial, solving the
// damped normal equations (J^T J + lambda*diag(J^T J))*dx = -J^T r at each
// step via gonum/mat, the standard LM step since gonum/optimize ships no LM
// routine of its own. A zero diagonal entry of J^T J is damped by lambda
// alone. The Jacobian is estimated by forward finite differences.
func Minimize(problem Problem, initial []float64, criteria EndCriteria) (Result, error) {
	if err := criteria.Validate(); err != nil {
		return Result{}, err
	}
	n := len(initial)
	if n == 0 {
		return Result{}, qlerrors.NewIllegalArgument("calibration: initial parameter vector is empty")
	}

	params := append([]float64(nil), initial...)
	lambda := 1e-3
	const lambdaUp, lambdaDown = 10.0, 0.1

	residuals, err := problem.Residuals(params)
	if err != nil {
		return Result{}, err
	}
	cost := sumSquares(residuals)
	tracing := qlsettings.Instance().EnableTracing()

	for iter := 0; iter < criteria.MaxIterations; iter++ {
		jac, err := jacobian(problem, params, residuals)
		if err != nil {
			return Result{}, err
		}
		m := len(residuals)
		jMat := mat.NewDense(m, n, jac)

		var jtj mat.Dense
		jtj.Mul(jMat.T(), jMat)

		var jtr mat.VecDense
		jtr.MulVec(jMat.T(), mat.NewVecDense(m, residuals))

		gradNorm := mat.Norm(&jtr, 2)
		if gradNorm < criteria.GradientNormEpsilon {
			return Result{Params: params, ResidualNorm: math.Sqrt(cost), Iterations: iter, StopReason: StationaryGradient}, nil
		}

		damped := mat.NewDense(n, n, nil)
		damped.Copy(&jtj)
		for i := 0; i < n; i++ {
			d := damped.At(i, i)
			scale := d
			if scale == 0 {
				// No weighted residual depends on this parameter (e.g. only
				// zero-weight helpers touch it): damp it by lambda alone so
				// the system stays solvable and its step is zero.
				scale = 1
			}
			damped.Set(i, i, d+lambda*scale)
		}

		var negJtr mat.VecDense
		negJtr.ScaleVec(-1, &jtr)

		var step mat.VecDense
		if err := step.SolveVec(damped, &negJtr); err != nil {
			lambda *= lambdaUp
			if tracing {
				log.Debug().Int("iteration", iter).Msg("calibration: singular normal equations, increasing damping")
			}
			continue
		}

		trial := make([]float64, n)
		for i := range trial {
			trial[i] = params[i] + step.AtVec(i)
		}
		trialResiduals, err := problem.Residuals(trial)
		if err != nil {
			return Result{}, err
		}
		trialCost := sumSquares(trialResiduals)

		if trialCost < cost {
			stepNorm := vectorNorm(step.RawVector().Data)
			paramNorm := vectorNorm(params)
			improvedEnough := math.Abs(cost-trialCost) > criteria.FunctionEpsilon*cost || iter == 0

			params = trial
			residuals = trialResiduals
			cost = trialCost
			lambda *= lambdaDown
			if tracing {
				log.Debug().Int("iteration", iter).Float64("cost", cost).Float64("lambda", lambda).Msg("calibration: accepted LM step")
			}

			if stepNorm < criteria.RootEpsilon*(paramNorm+criteria.RootEpsilon) {
				return Result{Params: params, ResidualNorm: math.Sqrt(cost), Iterations: iter + 1, StopReason: StationaryPoint}, nil
			}
			if !improvedEnough {
				return Result{Params: params, ResidualNorm: math.Sqrt(cost), Iterations: iter + 1, StopReason: StationaryFunctionValue}, nil
			}
		} else {
			lambda *= lambdaUp
			if tracing {
				log.Debug().Int("iteration", iter).Float64("lambda", lambda).Msg("calibration: rejected LM step")
			}
		}
	}
	return Result{Params: params, ResidualNorm: math.Sqrt(cost), Iterations: criteria.MaxIterations, StopReason: MaxIterationsReached}, nil
}

func sumSquares(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func vectorNorm(v []float64) float64 {
	return math.Sqrt(sumSquares(v))
}

// jacobian estimates d(residuals)/d(params) by forward finite differences,
// reusing the already-computed base residual vector.
func jacobian(problem Problem, params, base []float64) ([]float64, error) {
	n := len(params)
	m := len(base)
	jac := make([]float64, m*n)
	for j := 0; j < n; j++ {
		h := 1e-6 * math.Max(1, math.Abs(params[j]))
		perturbed := append([]float64(nil), params...)
		perturbed[j] += h
		shifted, err := problem.Residuals(perturbed)
		if err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			jac[i*n+j] = (shifted[i] - base[i]) / h
		}
	}
	return jac, nil
}
