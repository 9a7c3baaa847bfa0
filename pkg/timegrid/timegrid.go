// Package timegrid provides TimeGrid, an ordered sequence of non-negative
// real times t0 < t1 < ... < tn with optional mandatory-point insertion and
// nearest-index lookup, immutable after construction.
package timegrid

import (
	"sort"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// TimeGrid is an immutable, strictly increasing sequence of non-negative
// times.
type TimeGrid struct {
	times []float64
	dt    []float64
}

// New builds a uniform grid of n+1 points (n steps) from 0 to end.
func New(end float64, steps int) (TimeGrid, error) {
	if end <= 0 {
		return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: end time must be positive, got %v", end)
	}
	if steps <= 0 {
		return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: steps must be positive, got %d", steps)
	}
	times := make([]float64, steps+1)
	dt := end / float64(steps)
	for i := range times {
		times[i] = float64(i) * dt
	}
	times[steps] = end
	return build(times)
}

// NewWithMandatoryPoints builds a grid spanning [0, end] that must contain
// every point in mandatoryPoints, subdivided to approximately steps total
// intervals (QuantLib's mandatory-point insertion behavior): points are
// sorted, deduplicated, 0 and end are implicitly included, and the regions
// between consecutive mandatory points are subdivided roughly uniformly
// based on each region's share of the total span.
func NewWithMandatoryPoints(end float64, steps int, mandatoryPoints []float64) (TimeGrid, error) {
	if end <= 0 {
		return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: end time must be positive, got %v", end)
	}
	if steps <= 0 {
		return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: steps must be positive, got %d", steps)
	}

	points := map[float64]struct{}{0: {}, end: {}}
	for _, p := range mandatoryPoints {
		if p < 0 || p > end {
			return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: mandatory point %v out of [0,%v]", p, end)
		}
		points[p] = struct{}{}
	}
	sorted := make([]float64, 0, len(points))
	for p := range points {
		sorted = append(sorted, p)
	}
	sort.Float64s(sorted)

	var times []float64
	times = append(times, sorted[0])
	remainingSteps := steps
	for i := 0; i < len(sorted)-1; i++ {
		lo, hi := sorted[i], sorted[i+1]
		segmentsLeft := len(sorted) - 1 - i
		segSteps := remainingSteps / segmentsLeft
		if segSteps < 1 {
			segSteps = 1
		}
		dt := (hi - lo) / float64(segSteps)
		for k := 1; k <= segSteps; k++ {
			t := lo + dt*float64(k)
			if k == segSteps {
				t = hi
			}
			times = append(times, t)
		}
		remainingSteps -= segSteps
	}
	return build(times)
}

func build(times []float64) (TimeGrid, error) {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: times must be strictly increasing, got %v then %v", times[i-1], times[i])
		}
	}
	if times[0] < 0 {
		return TimeGrid{}, qlerrors.NewIllegalArgument("timegrid: times must be non-negative, got %v", times[0])
	}
	dt := make([]float64, len(times)-1)
	for i := range dt {
		dt[i] = times[i+1] - times[i]
	}
	return TimeGrid{times: times, dt: dt}, nil
}

// Size returns the number of grid points.
func (g TimeGrid) Size() int { return len(g.times) }

// At returns the i-th grid time.
func (g TimeGrid) At(i int) float64 { return g.times[i] }

// Times returns a copy of the full time sequence.
func (g TimeGrid) Times() []float64 {
	out := make([]float64, len(g.times))
	copy(out, g.times)
	return out
}

// Dt returns the step size between grid point i and i+1.
func (g TimeGrid) Dt(i int) float64 { return g.dt[i] }

// Back returns the last grid time.
func (g TimeGrid) Back() float64 { return g.times[len(g.times)-1] }

// Index returns the index of the nearest grid point to t.
func (g TimeGrid) Index(t float64) int {
	i := sort.SearchFloat64s(g.times, t)
	if i == 0 {
		return 0
	}
	if i == len(g.times) {
		return len(g.times) - 1
	}
	if g.times[i]-t < t-g.times[i-1] {
		return i
	}
	return i - 1
}
