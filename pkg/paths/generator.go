package paths

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/stochastic"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/timegrid"
)

// NormalSequence is the contract a PathGenerator needs from its noise
// source: a single call returns one standard-normal deviate per grid step
// plus the draw's importance weight, matching
// normaldist.InverseCumulativeSequence's NextSequence when dimension equals
// the number of steps.
type NormalSequence interface {
	NextSequence() ([]float64, float64)
}

// PathGenerator produces a sequence of Path samples by walking a Process1D
// forward step by step across a TimeGrid: at each step, pull one
// standard-normal deviate from the sequence source and apply
// Process1D.Evolve.
type PathGenerator struct {
	process stochastic.Process1D
	grid    timegrid.TimeGrid
	noise   NormalSequence
	brownianBridge bool
}

// NewPathGenerator builds a sequential generator. If brownianBridge is true,
// the generator reorders the grid's increments via a Brownian-bridge
// construction so that the path's most important (long-horizon) variance is
// resolved by the first draws — the standard technique for pairing
// low-discrepancy sequences with path generation.
func NewPathGenerator(process stochastic.Process1D, grid timegrid.TimeGrid, noise NormalSequence, brownianBridge bool) (*PathGenerator, error) {
	if grid.Size() < 2 {
		return nil, qlerrors.NewIllegalArgument("path generator: time grid must have at least 2 points, got %d", grid.Size())
	}
	return &PathGenerator{process: process, grid: grid, noise: noise, brownianBridge: brownianBridge}, nil
}

// Next draws one full path and its importance weight.
func (g *PathGenerator) Next() (Path, float64) {
	deviates, weight := g.noise.NextSequence()
	path := NewPath(g.grid)
	path.Set(0, g.process.X0())

	if g.brownianBridge {
		deviates = bridgeOrder(deviates, g.grid.Times())
	}

	x := g.process.X0()
	t := g.grid.At(0)
	for i := 1; i < g.grid.Size(); i++ {
		dt := g.grid.At(i) - t
		x = g.process.Evolve(t, x, dt, deviates[i-1])
		path.Set(i, x)
		t = g.grid.At(i)
	}
	return path, weight
}

// bridgeOrder implements a Brownian-bridge construction over the driving
// Brownian motion at the grid's own times: the first deviate sets the
// terminal value W(times[n]), the second bisects the widest unbuilt
// interval conditional on its two endpoints, and so on, converting a
// sequence of independent standard normals (consumed in "importance" order,
// most significant first) into the increments a sequential evolve needs.
// times must start at 0 (times[0] is the path's origin).
func bridgeOrder(deviates []float64, times []float64) []float64 {
	n := len(deviates)
	w := make([]float64, n+1) // W at each grid time, W[0]=0
	built := make([]bool, n+1)
	built[0] = true

	type segment struct{ lo, hi int }
	segments := []segment{{0, n}}
	deviateIdx := 0

	// First deviate sets W at the final grid time directly.
	w[n] = deviates[deviateIdx] * math.Sqrt(times[n]-times[0])
	built[n] = true
	deviateIdx++

	for deviateIdx < n {
		// Bisect the widest unbuilt interval next (a simple, deterministic
		// stand-in for a precomputed direction-integer table).
		bestIdx := -1
		bestWidth := 0
		for i, s := range segments {
			if s.hi-s.lo > bestWidth {
				bestWidth = s.hi - s.lo
				bestIdx = i
			}
		}
		if bestIdx < 0 || bestWidth < 2 {
			break
		}
		s := segments[bestIdx]
		mid := (s.lo + s.hi) / 2
		tLo, tMid, tHi := times[s.lo], times[mid], times[s.hi]
		meanW := w[s.lo] + (tMid-tLo)/(tHi-tLo)*(w[s.hi]-w[s.lo])
		condVar := (tMid - tLo) * (tHi - tMid) / (tHi - tLo)
		w[mid] = meanW + deviates[deviateIdx]*math.Sqrt(condVar)
		built[mid] = true
		deviateIdx++

		segments[bestIdx] = segment{s.lo, mid}
		segments = append(segments, segment{mid, s.hi})
	}

	// Any point left unbuilt by the bisection loop takes the value of the
	// point before it, without additional randomness.
	for i := 1; i <= n; i++ {
		if !built[i] {
			w[i] = w[i-1]
			built[i] = true
		}
	}

	// Evolve consumes unit-variance deviates and scales by the process's own
	// stdDeviation(dt), so each Brownian increment is normalized back to a
	// standard normal.
	increments := make([]float64, n)
	for i := 0; i < n; i++ {
		dt := times[i+1] - times[i]
		increments[i] = (w[i+1] - w[i]) / math.Sqrt(dt)
	}
	return increments
}
