// Package engine implements the pricing-engine glue: Calculator
// implementations (instrument.Calculator) that consume a calibrated
// markovfunctional.Model purely through its Numeraire(t,y), ZeroBond(t,T,y),
// and Forward(t,T,y) adapter, never reaching into the model's internal
// calibration state.
package engine

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// quadrature caches Gauss-Hermite nodes/weights, the same quadrature family
// pkg/markovfunctional uses internally for its own backward induction, used
// here by every Calculator in this package to price a payoff against the
// model's calibrated y-distribution at a single expiry.
type quadrature struct {
	nodes   []float64
	weights []float64
}

func newQuadrature(n int) quadrature {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Hermite{}.FixedLocations(x, w, math.Inf(-1), math.Inf(1))
	return quadrature{nodes: x, weights: w}
}

// expectGaussian returns E[f(Z)] for Z ~ N(mean, std^2).
func (q quadrature) expectGaussian(mean, std float64, f func(z float64) float64) float64 {
	if std <= 0 {
		return f(mean)
	}
	const invSqrtPi = 0.5641895835477563
	sum := 0.0
	for i, x := range q.nodes {
		sum += q.weights[i] * f(mean+math.Sqrt2*std*x)
	}
	return sum * invSqrtPi
}

// defaultQuadraturePoints matches markovfunctional.DefaultSettings's
// GaussHermitePoints, so an engine built against a default-settings model
// integrates at the same order the model itself was calibrated with.
const defaultQuadraturePoints = 32
