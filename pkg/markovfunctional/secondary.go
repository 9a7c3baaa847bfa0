package markovfunctional

import (
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/calibration"
)

// CalibrateVolatilities runs the secondary calibration: a
// Levenberg-Marquardt minimization of sum_i w_i*(modelPrice_i -
// marketPrice_i)^2 over the per-step driving volatilities, under the given
// EndCriteria. Each trial parameter vector is pushed into the model via
// SetStepVolatilities followed by a full Calibrate pass, so every helper's
// ModelPrice sees a numeraire map consistent with the trial volatilities.
//
// On success the model is left calibrated at the returned parameter vector;
// on error the model retains whatever trial state was set last — the
// partial-state policy every calibration in this kernel follows (a failure
// does not roll back earlier work, the caller decides whether to keep it).
func (m *Model) CalibrateVolatilities(helpers []calibration.Helper, criteria calibration.EndCriteria) (calibration.Result, error) {
	// LM trial steps are free to wander below zero; volatilities are floored
	// rather than failing the whole minimization, the same infeasible-trial
	// handling the SABR fit uses.
	floor := func(params []float64) []float64 {
		out := make([]float64, len(params))
		for i, v := range params {
			if v < 1e-6 {
				v = 1e-6
			}
			out[i] = v
		}
		return out
	}
	problem := &calibration.HelperSetProblem{
		Helpers: helpers,
		Update: func(params []float64) error {
			if err := m.SetStepVolatilities(floor(params)); err != nil {
				return err
			}
			return m.Calibrate()
		},
	}
	result, err := calibration.Minimize(problem, m.StepVolatilities(), criteria)
	if err != nil {
		return calibration.Result{}, err
	}
	result.Params = floor(result.Params)
	if err := m.SetStepVolatilities(result.Params); err != nil {
		return calibration.Result{}, err
	}
	if err := m.Calibrate(); err != nil {
		return calibration.Result{}, err
	}
	return result, nil
}
