package paths

import (
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/stochastic"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/timegrid"
)

// MultiPathGenerator produces MultiPath samples by walking a ProcessND
// forward step by step: at each step it draws one size(process)-dimensional
// iid standard-normal vector from the noise source and passes it to
// ProcessND.Evolve, which applies the Cholesky rotation internally.
type MultiPathGenerator struct {
	process stochastic.ProcessND
	grid    timegrid.TimeGrid
	noise   NormalSequence
}

// NewMultiPathGenerator builds a sequential ND generator. noise must supply
// vectors of dimension process.Size() on each NextSequence call.
func NewMultiPathGenerator(process stochastic.ProcessND, grid timegrid.TimeGrid, noise NormalSequence) (*MultiPathGenerator, error) {
	if grid.Size() < 2 {
		return nil, qlerrors.NewIllegalArgument("multi-path generator: time grid must have at least 2 points, got %d", grid.Size())
	}
	return &MultiPathGenerator{process: process, grid: grid, noise: noise}, nil
}

// Next draws one full MultiPath and the product of per-step importance
// weights.
func (g *MultiPathGenerator) Next() (MultiPath, float64, error) {
	dim := g.process.Size()
	mp, err := NewMultiPath(dim, g.grid)
	if err != nil {
		return MultiPath{}, 0, err
	}
	for i := 0; i < dim; i++ {
		a := mp.Asset(i)
		a.Set(0, g.process.X0()[i])
		mp.SetAsset(i, a)
	}

	x := g.process.X0()
	t := g.grid.At(0)
	weight := 1.0
	for step := 1; step < g.grid.Size(); step++ {
		dt := g.grid.At(step) - t
		dw, w := g.noise.NextSequence()
		weight *= w
		x = g.process.Evolve(t, x, dt, dw)
		for i := 0; i < dim; i++ {
			a := mp.Asset(i)
			a.Set(step, x[i])
			mp.SetAsset(i, a)
		}
		t = g.grid.At(step)
	}
	return mp, weight, nil
}
