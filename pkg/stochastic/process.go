// Package stochastic implements the stochastic process contract — drift,
// diffusion, expectation, stdDeviation, evolve — for 1-D and N-D state,
// with concrete GBM, Ornstein-Uhlenbeck, ExtOU-with-Jumps, Heston, and
// Geman-Roncoroni processes.
package stochastic

// Process1D is the contract every scalar stochastic process implements.
// Evolve defaults to expectation + stdDeviation*noise, via DefaultEvolve,
// but processes with an exact simulation scheme (e.g. GBM's log-Euler) may
// override it directly.
type Process1D interface {
	// X0 returns the process's initial value.
	X0() float64
	// Drift returns the drift term at (t,x).
	Drift(t, x float64) float64
	// Diffusion returns the diffusion term at (t,x).
	Diffusion(t, x float64) float64
	// Expectation returns E[x(t0+dt) | x(t0)=x0] under the discretization
	// this process uses (exact where available, else Euler).
	Expectation(t0, x0, dt float64) float64
	// StdDeviation returns the standard deviation of x(t0+dt) | x(t0)=x0.
	StdDeviation(t0, x0, dt float64) float64
	// Evolve advances x0 at t0 by dt given a standard normal draw dw.
	Evolve(t0, x0, dt, dw float64) float64
}

// DefaultEvolve implements the default evolve contract:
// expectation(t0,x0,dt) + stdDeviation(t0,x0,dt) * dw. Processes with no
// better-than-Euler scheme implement their own Evolve method as a one-line
// call to this helper, passing themselves so Expectation/StdDeviation
// dispatch through any overrides.
func DefaultEvolve(p Process1D, t0, x0, dt, dw float64) float64 {
	return p.Expectation(t0, x0, dt) + p.StdDeviation(t0, x0, dt)*dw
}
