package stochastic

import (
	"gonum.org/v1/gonum/mat"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// ProcessND is the vector-valued counterpart of Process1D: parallel methods
// for vector-valued state, plus a correlation matrix used at each step to
// transform an iid noise vector.
type ProcessND interface {
	// Size returns the dimension of the state vector.
	Size() int
	X0() []float64
	Drift(t float64, x []float64) []float64
	// Diffusion returns the (size x size) diffusion matrix at (t,x); for
	// independent components this is diagonal.
	Diffusion(t float64, x []float64) *mat.Dense
	Expectation(t0 float64, x0 []float64, dt float64) []float64
	// Covariance returns the (size x size) covariance of the step.
	Covariance(t0 float64, x0 []float64, dt float64) *mat.Dense
	Evolve(t0 float64, x0 []float64, dt float64, dw []float64) []float64
}

// CorrelatedNoise transforms an iid standard-normal vector into a
// correlated draw via Cholesky factorization of the correlation matrix,
// which must be symmetric positive-definite.
type CorrelatedNoise struct {
	chol *mat.Cholesky
	size int
}

// NewCorrelatedNoise factorizes the given correlation matrix (must be
// symmetric positive-definite) via gonum's Cholesky, returning an
// IllegalArgument error otherwise.
func NewCorrelatedNoise(correlation *mat.SymDense) (*CorrelatedNoise, error) {
	n := correlation.SymmetricDim()
	var chol mat.Cholesky
	ok := chol.Factorize(correlation)
	if !ok {
		return nil, qlerrors.NewIllegalArgument("correlated noise: correlation matrix is not symmetric positive-definite")
	}
	return &CorrelatedNoise{chol: &chol, size: n}, nil
}

// Size returns the noise vector's dimension.
func (c *CorrelatedNoise) Size() int { return c.size }

// Transform maps an iid standard-normal vector iid into a correlated draw
// L*iid, where L is the lower Cholesky factor of the correlation matrix.
func (c *CorrelatedNoise) Transform(iid []float64) ([]float64, error) {
	if len(iid) != c.size {
		return nil, qlerrors.NewIllegalArgument("correlated noise: expected dimension %d, got %d", c.size, len(iid))
	}
	var l mat.TriDense
	c.chol.LTo(&l)
	x := mat.NewVecDense(c.size, iid)
	var out mat.VecDense
	out.MulVec(&l, x)
	result := make([]float64, c.size)
	for i := 0; i < c.size; i++ {
		result[i] = out.AtVec(i)
	}
	return result, nil
}

// IndependentND composes independent Process1D components into a ProcessND
// with a given correlation structure, the common construction for a basket
// of processes driven by correlated Brownian motions (e.g. a Heston
// variance leg correlated with its log-price leg).
type IndependentND struct {
	components []Process1D
	noise      *CorrelatedNoise
}

// NewIndependentND builds a ProcessND from per-component Process1D
// implementations and their correlation matrix.
func NewIndependentND(components []Process1D, correlation *mat.SymDense) (*IndependentND, error) {
	if correlation.SymmetricDim() != len(components) {
		return nil, qlerrors.NewIllegalArgument("independent ND process: correlation dimension %d does not match %d components", correlation.SymmetricDim(), len(components))
	}
	noise, err := NewCorrelatedNoise(correlation)
	if err != nil {
		return nil, err
	}
	return &IndependentND{components: components, noise: noise}, nil
}

func (p *IndependentND) Size() int { return len(p.components) }

func (p *IndependentND) X0() []float64 {
	out := make([]float64, len(p.components))
	for i, c := range p.components {
		out[i] = c.X0()
	}
	return out
}

func (p *IndependentND) Drift(t float64, x []float64) []float64 {
	out := make([]float64, len(p.components))
	for i, c := range p.components {
		out[i] = c.Drift(t, x[i])
	}
	return out
}

func (p *IndependentND) Diffusion(t float64, x []float64) *mat.Dense {
	n := len(p.components)
	d := mat.NewDense(n, n, nil)
	for i, c := range p.components {
		d.Set(i, i, c.Diffusion(t, x[i]))
	}
	return d
}

func (p *IndependentND) Expectation(t0 float64, x0 []float64, dt float64) []float64 {
	out := make([]float64, len(p.components))
	for i, c := range p.components {
		out[i] = c.Expectation(t0, x0[i], dt)
	}
	return out
}

func (p *IndependentND) Covariance(t0 float64, x0 []float64, dt float64) *mat.Dense {
	n := len(p.components)
	sigma := make([]float64, n)
	for i, c := range p.components {
		sigma[i] = c.StdDeviation(t0, x0[i], dt)
	}
	var corr mat.SymDense
	p.noise.chol.ToSym(&corr)
	cov := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cov.Set(i, j, sigma[i]*sigma[j]*corr.At(i, j))
		}
	}
	return cov
}

// Evolve transforms dw through the Cholesky-rotated correlation and applies
// each component's own Evolve with the rotated noise.
func (p *IndependentND) Evolve(t0 float64, x0 []float64, dt float64, dw []float64) []float64 {
	rotated, err := p.noise.Transform(dw)
	if err != nil {
		rotated = dw
	}
	out := make([]float64, len(p.components))
	for i, c := range p.components {
		out[i] = c.Evolve(t0, x0[i], dt, rotated[i])
	}
	return out
}
