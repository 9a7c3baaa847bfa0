// Package paths generates sample paths of stochastic processes over a
// fixed time grid: a sequential, step-by-step generator applying a
// Process1D/ProcessND's Evolve at each grid point, plus a Brownian-bridge
// variant that front-loads path variance for low-discrepancy sequences, and
// a multi-path generator for ProcessND with Cholesky-rotated noise.
package paths

import (
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/timegrid"
)

// Path is a single realized trajectory of a scalar process over a TimeGrid:
// one value per grid point, including the initial value at t=0.
type Path struct {
	grid   timegrid.TimeGrid
	values []float64
}

// NewPath allocates a path over grid with all values zeroed.
func NewPath(grid timegrid.TimeGrid) Path {
	return Path{grid: grid, values: make([]float64, grid.Size())}
}

// Length returns the number of grid points (including t=0).
func (p Path) Length() int { return len(p.values) }

// Time returns the grid time at index i.
func (p Path) Time(i int) float64 { return p.grid.At(i) }

// Value returns the path's value at index i.
func (p Path) Value(i int) float64 { return p.values[i] }

// Set assigns the path's value at index i.
func (p *Path) Set(i int, v float64) { p.values[i] = v }

// Values exposes the raw value slice (read-only use expected).
func (p Path) Values() []float64 { return p.values }

// Front and Back return the path's initial and final values.
func (p Path) Front() float64 { return p.values[0] }
func (p Path) Back() float64  { return p.values[len(p.values)-1] }

// MultiPath is a collection of Path, one per ProcessND component, sharing
// a single TimeGrid.
type MultiPath struct {
	grid  timegrid.TimeGrid
	asset []Path
}

// NewMultiPath allocates a MultiPath of the given dimension over grid.
func NewMultiPath(dimension int, grid timegrid.TimeGrid) (MultiPath, error) {
	if dimension <= 0 {
		return MultiPath{}, qlerrors.NewIllegalArgument("multi-path: dimension must be positive, got %d", dimension)
	}
	asset := make([]Path, dimension)
	for i := range asset {
		asset[i] = NewPath(grid)
	}
	return MultiPath{grid: grid, asset: asset}, nil
}

// AssetCount returns the number of component paths.
func (m MultiPath) AssetCount() int { return len(m.asset) }

// Asset returns the i-th component path.
func (m MultiPath) Asset(i int) Path { return m.asset[i] }

// SetAsset replaces the i-th component path.
func (m *MultiPath) SetAsset(i int, p Path) { m.asset[i] = p }

// Length returns the number of grid points shared by all component paths.
func (m MultiPath) Length() int { return m.grid.Size() }
