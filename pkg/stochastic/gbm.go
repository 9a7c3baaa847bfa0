package stochastic

import "math"

// BlackScholesProcess is geometric Brownian motion with a flat risk-free
// rate, flat dividend yield, and flat volatility: dS = (r-q)*S*dt + sigma*S*dW.
// It overrides Evolve with the exact log-Euler step rather than the default
// Euler scheme, since GBM admits an exact simulation.
type BlackScholesProcess struct {
	x0            float64
	riskFreeRate  float64
	dividendYield float64
	volatility    float64
}

// NewBlackScholesProcess builds a flat-parameter GBM process.
func NewBlackScholesProcess(x0, riskFreeRate, dividendYield, volatility float64) *BlackScholesProcess {
	return &BlackScholesProcess{x0: x0, riskFreeRate: riskFreeRate, dividendYield: dividendYield, volatility: volatility}
}

func (p *BlackScholesProcess) X0() float64 { return p.x0 }

func (p *BlackScholesProcess) Drift(t, x float64) float64 {
	return (p.riskFreeRate - p.dividendYield - 0.5*p.volatility*p.volatility)
}

func (p *BlackScholesProcess) Diffusion(t, x float64) float64 {
	return p.volatility
}

func (p *BlackScholesProcess) Expectation(t0, x0, dt float64) float64 {
	return x0 * math.Exp((p.riskFreeRate-p.dividendYield)*dt)
}

func (p *BlackScholesProcess) StdDeviation(t0, x0, dt float64) float64 {
	return x0 * math.Sqrt(math.Exp(p.volatility*p.volatility*dt)-1) * math.Exp((p.riskFreeRate-p.dividendYield)*dt)
}

// Evolve applies the log-Euler GBM step: x(t0)*exp(drift*dt +
// diffusion*sqrt(dt)*dw), exact for constant parameters — one of the
// processes that overrides the default expectation+stdDeviation*dw evolve
// with an exact simulation scheme.
func (p *BlackScholesProcess) Evolve(t0, x0, dt, dw float64) float64 {
	return x0 * math.Exp(p.Drift(t0, x0)*dt+p.Diffusion(t0, x0)*math.Sqrt(dt)*dw)
}

// LocalVolFunc supplies sigma(t,x) for a local-volatility GBM variant.
type LocalVolFunc func(t, x float64) float64

// GeneralizedBlackScholesProcess is GBM with a term-structure risk-free
// rate, term-structure dividend yield, and a local-volatility surface. Rate
// and dividend are instantaneous-forward functions of time; local vol is
// evaluated at each step's (t,x).
type GeneralizedBlackScholesProcess struct {
	x0            float64
	forwardRate   func(t float64) float64
	forwardDiv    func(t float64) float64
	localVol      LocalVolFunc
}

// NewGeneralizedBlackScholesProcess builds a local-vol/term-structure GBM.
func NewGeneralizedBlackScholesProcess(x0 float64, forwardRate, forwardDiv func(float64) float64, localVol LocalVolFunc) *GeneralizedBlackScholesProcess {
	return &GeneralizedBlackScholesProcess{x0: x0, forwardRate: forwardRate, forwardDiv: forwardDiv, localVol: localVol}
}

func (p *GeneralizedBlackScholesProcess) X0() float64 { return p.x0 }

func (p *GeneralizedBlackScholesProcess) Drift(t, x float64) float64 {
	sigma := p.localVol(t, x)
	return p.forwardRate(t) - p.forwardDiv(t) - 0.5*sigma*sigma
}

func (p *GeneralizedBlackScholesProcess) Diffusion(t, x float64) float64 {
	return p.localVol(t, x)
}

func (p *GeneralizedBlackScholesProcess) Expectation(t0, x0, dt float64) float64 {
	return x0 * math.Exp((p.forwardRate(t0)-p.forwardDiv(t0))*dt)
}

func (p *GeneralizedBlackScholesProcess) StdDeviation(t0, x0, dt float64) float64 {
	sigma := p.localVol(t0, x0)
	return sigma * math.Sqrt(dt) * x0
}

// Evolve applies the exact log-Euler step using the local-vol/term-structure
// drift and diffusion evaluated at (t0,x0), exact under the frozen-coefficient
// assumption over [t0, t0+dt] standard for local-vol Euler schemes.
func (p *GeneralizedBlackScholesProcess) Evolve(t0, x0, dt, dw float64) float64 {
	return x0 * math.Exp(p.Drift(t0, x0)*dt+p.Diffusion(t0, x0)*math.Sqrt(dt)*dw)
}
