package stochastic

import "math"

// ExtOUWithJumpsProcess is an Ornstein-Uhlenbeck base with an added
// compound-Poisson jump component: jumps arrive at intensity lambda with
// exponentially distributed size of mean 1/eta. The jump
// component's own state y_t (cumulative jump contribution, starting at y0)
// mean-reverts at its own speed jumpSpeed, a common simplification for
// power-price spike models in the Geman-Roncoroni style.
//
// X0() and Expectation() report the combined observable x+y, while Drift()
// and Diffusion() are those of the OU base alone. EvolveWithJump advances
// the combined value with explicit jump draws for callers that handle jump
// times themselves.
type ExtOUWithJumpsProcess struct {
	base        *OrnsteinUhlenbeckProcess
	jumpSpeed   float64 // mean reversion speed of the jump component
	jumpMean    float64 // 1/eta, mean jump size
	intensity   float64 // lambda, jump arrival intensity per unit time
	y0          float64
}

// NewExtOUWithJumpsProcess builds the jump-diffusion process from an OU base
// and jump parameters.
func NewExtOUWithJumpsProcess(base *OrnsteinUhlenbeckProcess, jumpSpeed, jumpMean, intensity, y0 float64) *ExtOUWithJumpsProcess {
	return &ExtOUWithJumpsProcess{base: base, jumpSpeed: jumpSpeed, jumpMean: jumpMean, intensity: intensity, y0: y0}
}

func (p *ExtOUWithJumpsProcess) X0() float64 { return p.base.X0() + p.y0 }

func (p *ExtOUWithJumpsProcess) Drift(t, x float64) float64 {
	return p.base.Drift(t, x)
}

func (p *ExtOUWithJumpsProcess) Diffusion(t, x float64) float64 {
	return p.base.Diffusion(t, x)
}

// Expectation returns E[x+y], where the jump component's expectation decays
// at jumpSpeed from its current value plus the expected jump contribution
// arriving over dt (intensity*jumpMean*dt, the compensator for a compound
// Poisson process with exponential jumps).
func (p *ExtOUWithJumpsProcess) Expectation(t0, x0, dt float64) float64 {
	baseExp := p.base.Expectation(t0, x0-p.y0, dt)
	yDecay := p.y0 * math.Exp(-p.jumpSpeed*dt)
	expectedNewJumps := p.intensity * p.jumpMean * dt
	return baseExp + yDecay + expectedNewJumps
}

func (p *ExtOUWithJumpsProcess) StdDeviation(t0, x0, dt float64) float64 {
	// Combine the OU base's Gaussian variance with the compound-Poisson
	// jump variance (intensity * E[J^2] * dt, with J ~ Exp(eta) giving
	// E[J^2] = 2*jumpMean^2), added independently.
	baseStd := p.base.StdDeviation(t0, x0, dt)
	jumpVar := p.intensity * 2 * p.jumpMean * p.jumpMean * dt
	return math.Sqrt(baseStd*baseStd + jumpVar)
}

func (p *ExtOUWithJumpsProcess) Evolve(t0, x0, dt, dw float64) float64 {
	return DefaultEvolve(p, t0, x0, dt, dw)
}

// EvolveWithJump advances the process by dt given a Gaussian draw dw for the
// diffusion part and an independent uniform draw jumpU used to decide
// whether a jump occurs (Bernoulli(intensity*dt) approximation for small dt)
// and, if so, a second uniform draw jumpExpDraw, mapped through the
// exponential inverse CDF, for its magnitude.
func (p *ExtOUWithJumpsProcess) EvolveWithJump(t0, x0, dt, dw, jumpU, jumpExpDraw float64) float64 {
	diffused := p.base.Evolve(t0, x0-p.y0, dt, dw)
	y := p.y0 * math.Exp(-p.jumpSpeed*dt)
	if jumpU < p.intensity*dt {
		y += p.jumpMean * (-math.Log(1 - jumpExpDraw)) // inverse-CDF exponential draw scaled by mean
	}
	return diffused + y
}
