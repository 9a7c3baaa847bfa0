package markovfunctional

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// gaussHermite caches the physicists'-convention nodes/weights for a fixed
// point count, reused across every expectation this package computes — the
// quadrature order (settings.GaussHermitePoints) is fixed once per model,
// so there is no benefit recomputing it per call.
type gaussHermite struct {
	nodes   []float64
	weights []float64
}

// newGaussHermite builds an n-point rule via gonum's quad.Hermite, the
// quadrature the calibration's backward integration step runs on.
func newGaussHermite(n int) gaussHermite {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Hermite{}.FixedLocations(x, w, math.Inf(-1), math.Inf(1))
	return gaussHermite{nodes: x, weights: w}
}

// ExpectGaussian returns E[f(Z)] for Z ~ N(mean, std^2), via the standard
// change of variables z = mean + sqrt(2)*std*x turning a Gauss-Hermite rule
// (weight e^{-x^2}) into a Gaussian-density expectation:
// E[f(Z)] = (1/sqrt(pi)) * sum_k w_k * f(mean + sqrt(2)*std*x_k).
func (g gaussHermite) ExpectGaussian(mean, std float64, f func(z float64) float64) float64 {
	if std <= 0 {
		return f(mean)
	}
	const invSqrtPi = 0.5641895835477563
	sum := 0.0
	for i, x := range g.nodes {
		z := mean + math.Sqrt2*std*x
		sum += g.weights[i] * f(z)
	}
	return sum * invSqrtPi
}
