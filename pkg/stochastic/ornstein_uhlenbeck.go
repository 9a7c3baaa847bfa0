package stochastic

import "math"

// LevelFunc supplies an externally-driven, time-dependent mean-reversion
// level for OrnsteinUhlenbeckProcess.
type LevelFunc func(t float64) float64

// OrnsteinUhlenbeckProcess is dx = speed*(level(t)-x)*dt + volatility*dW,
// admitting an exact Gaussian transition: mean and variance are known in
// closed form for any dt, so Expectation/StdDeviation are exact rather than
// Euler approximations.
type OrnsteinUhlenbeckProcess struct {
	x0         float64
	speed      float64
	volatility float64
	level      LevelFunc
}

// NewOrnsteinUhlenbeckProcess builds an OU process with mean-reversion speed
// a, volatility sigma, initial value x0, and level(t) giving the
// (possibly time-dependent) reversion target.
func NewOrnsteinUhlenbeckProcess(x0, speed, volatility float64, level LevelFunc) *OrnsteinUhlenbeckProcess {
	if level == nil {
		level = func(float64) float64 { return 0 }
	}
	return &OrnsteinUhlenbeckProcess{x0: x0, speed: speed, volatility: volatility, level: level}
}

func (p *OrnsteinUhlenbeckProcess) X0() float64 { return p.x0 }

func (p *OrnsteinUhlenbeckProcess) Drift(t, x float64) float64 {
	return p.speed * (p.level(t) - x)
}

func (p *OrnsteinUhlenbeckProcess) Diffusion(t, x float64) float64 {
	return p.volatility
}

// Expectation returns the exact conditional mean: level + (x0-level)*e^(-a*dt),
// using the level evaluated at the start of the interval (consistent with a
// piecewise-frozen level over short calibration steps).
func (p *OrnsteinUhlenbeckProcess) Expectation(t0, x0, dt float64) float64 {
	lvl := p.level(t0)
	if p.speed == 0 {
		return x0
	}
	return lvl + (x0-lvl)*math.Exp(-p.speed*dt)
}

// StdDeviation returns the exact conditional standard deviation:
// sigma*sqrt((1-e^(-2*a*dt))/(2*a)), degenerating to sigma*sqrt(dt) as a->0.
func (p *OrnsteinUhlenbeckProcess) StdDeviation(t0, x0, dt float64) float64 {
	if p.speed == 0 {
		return p.volatility * math.Sqrt(dt)
	}
	return p.volatility * math.Sqrt((1-math.Exp(-2*p.speed*dt))/(2*p.speed))
}

func (p *OrnsteinUhlenbeckProcess) Evolve(t0, x0, dt, dw float64) float64 {
	return DefaultEvolve(p, t0, x0, dt, dw)
}

// Speed and Volatility expose the process's parameters for calibration
// routines (e.g. pkg/markovfunctional needs speed/vol to size its y-grid).
func (p *OrnsteinUhlenbeckProcess) Speed() float64      { return p.speed }
func (p *OrnsteinUhlenbeckProcess) Volatility() float64 { return p.volatility }
