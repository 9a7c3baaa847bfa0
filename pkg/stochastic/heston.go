package stochastic

import "math"

// HestonProcess is the square-root stochastic-variance model:
//
//	dS = (r-q)*S*dt + sqrt(v)*S*dW1
//	dv = kappa*(theta-v)*dt + xi*sqrt(v)*dW2,  corr(dW1,dW2) = rho
//
// This type models the variance leg only (a Process1D over v). IndependentND
// can pair it with another Process1D under a 2x2 correlation matrix, which
// correlates the two legs' noise; the package has no log-price process that
// reads this variance path, so each leg evolves on its own state only.
type HestonProcess struct {
	v0, kappa, theta, xi float64
}

// NewHestonProcess builds the variance-leg process: initial variance v0,
// mean-reversion speed kappa, long-run variance theta, vol-of-vol xi.
func NewHestonProcess(v0, kappa, theta, xi float64) *HestonProcess {
	return &HestonProcess{v0: v0, kappa: kappa, theta: theta, xi: xi}
}

func (p *HestonProcess) X0() float64 { return p.v0 }

func (p *HestonProcess) Drift(t, v float64) float64 {
	return p.kappa * (p.theta - v)
}

func (p *HestonProcess) Diffusion(t, v float64) float64 {
	if v <= 0 {
		return 0
	}
	return p.xi * math.Sqrt(v)
}

// Expectation uses the closed-form mean of the CIR process:
// theta + (v0-theta)*e^(-kappa*dt).
func (p *HestonProcess) Expectation(t0, v0, dt float64) float64 {
	return p.theta + (v0-p.theta)*math.Exp(-p.kappa*dt)
}

// StdDeviation uses the exact CIR conditional variance formula.
func (p *HestonProcess) StdDeviation(t0, v0, dt float64) float64 {
	ekt := math.Exp(-p.kappa * dt)
	variance := v0*p.xi*p.xi*ekt*(1-ekt)/p.kappa +
		p.theta*p.xi*p.xi*(1-ekt)*(1-ekt)/(2*p.kappa)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Evolve uses a full-truncation Euler scheme: negative variance excursions
// are truncated to zero before computing drift/diffusion for the next step,
// the standard fix for the CIR process's boundary behavior under discrete
// time-stepping (Lord, Koekkoek & Van Dijk).
func (p *HestonProcess) Evolve(t0, v0, dt, dw float64) float64 {
	vPlus := math.Max(v0, 0)
	next := v0 + p.Drift(t0, vPlus)*dt + p.Diffusion(t0, vPlus)*math.Sqrt(dt)*dw
	return next
}

// FellerCondition reports whether 2*kappa*theta >= xi^2, the condition under
// which the CIR variance process almost surely stays strictly positive.
func (p *HestonProcess) FellerCondition() bool {
	return 2*p.kappa*p.theta >= p.xi*p.xi
}
