package pde

import "github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"

// Operator is a linear map L over a discretized Array: it supports
// application in forward mode (ApplyTo), implicit inversion (SolveFor,
// solving (this)x = rhs), and time-setting for operators whose coefficients
// depend on t.
type Operator interface {
	Size() int
	ApplyTo(a Array) Array
	SolveFor(rhs Array) (Array, error)
	SetTime(t float64)
}

// TridiagonalOperator is the concrete Operator every finite-difference
// scheme in this package composes: a banded linear map with one sub-, one
// main-, and one super-diagonal per row, the standard discretization shape
// for a 1-D second-order spatial operator. Composition (sum, scalar
// multiple, identity) is exact banded-matrix algebra.
type TridiagonalOperator struct {
	low, mid, high []float64
	timeSetter     func(t float64, op *TridiagonalOperator)
}

// NewTridiagonalOperator allocates a zeroed operator of size n (n >= 3).
func NewTridiagonalOperator(n int) (*TridiagonalOperator, error) {
	if n < 3 {
		return nil, qlerrors.NewIllegalArgument("pde: tridiagonal operator needs at least 3 grid points, got %d", n)
	}
	return &TridiagonalOperator{low: make([]float64, n), mid: make([]float64, n), high: make([]float64, n)}, nil
}

// Identity returns the n-point identity operator.
func Identity(n int) (*TridiagonalOperator, error) {
	op, err := NewTridiagonalOperator(n)
	if err != nil {
		return nil, err
	}
	for i := range op.mid {
		op.mid[i] = 1
	}
	return op, nil
}

// Size returns the number of grid points the operator acts on.
func (op *TridiagonalOperator) Size() int { return len(op.mid) }

// SetRow sets the low/mid/high coefficients for row i (0 < i < Size()-1;
// the first and last rows are set by SetFirstRow/SetLastRow since they have
// no sub- or super-diagonal entry respectively, typically overwritten again
// by a BoundaryCondition).
func (op *TridiagonalOperator) SetRow(i int, low, mid, high float64) {
	op.low[i], op.mid[i], op.high[i] = low, mid, high
}

// SetFirstRow sets the operator's boundary row at index 0 (no sub-diagonal
// entry; low[0] is unused).
func (op *TridiagonalOperator) SetFirstRow(mid, high float64) {
	op.mid[0], op.high[0] = mid, high
}

// SetLastRow sets the operator's boundary row at the last index (no
// super-diagonal entry; high[n-1] is unused).
func (op *TridiagonalOperator) SetLastRow(low, mid float64) {
	n := len(op.mid)
	op.low[n-1], op.mid[n-1] = low, mid
}

// SetTimeSetter installs a callback invoked by SetTime, for operators whose
// coefficients are rebuilt from a process/term-structure at each rollback
// step (e.g. a local-volatility or term-structure-driven generator).
func (op *TridiagonalOperator) SetTimeSetter(fn func(t float64, op *TridiagonalOperator)) {
	op.timeSetter = fn
}

// SetTime rebuilds the operator's coefficients for time t via the installed
// time setter; a no-op for time-independent operators.
func (op *TridiagonalOperator) SetTime(t float64) {
	if op.timeSetter != nil {
		op.timeSetter(t, op)
	}
}

// ApplyTo computes L*a, the banded mat-vec product.
func (op *TridiagonalOperator) ApplyTo(a Array) Array {
	n := len(op.mid)
	out := make(Array, n)
	out[0] = op.mid[0]*a[0] + op.high[0]*a[1]
	for i := 1; i < n-1; i++ {
		out[i] = op.low[i]*a[i-1] + op.mid[i]*a[i] + op.high[i]*a[i+1]
	}
	out[n-1] = op.low[n-1]*a[n-2] + op.mid[n-1]*a[n-1]
	return out
}

// SolveFor solves (this)*x = rhs by the Thomas algorithm, the standard
// O(n) tridiagonal solve every implicit/Crank-Nicolson step reduces to.
func (op *TridiagonalOperator) SolveFor(rhs Array) (Array, error) {
	n := len(op.mid)
	if len(rhs) != n {
		return nil, qlerrors.NewIllegalArgument("pde: rhs length %d does not match operator size %d", len(rhs), n)
	}
	cPrime := make([]float64, n)
	dPrime := make([]float64, n)

	if op.mid[0] == 0 {
		return nil, qlerrors.NewAssertionFailure("pde: singular tridiagonal system at row 0")
	}
	cPrime[0] = op.high[0] / op.mid[0]
	dPrime[0] = rhs[0] / op.mid[0]

	for i := 1; i < n; i++ {
		denom := op.mid[i] - op.low[i]*cPrime[i-1]
		if denom == 0 {
			return nil, qlerrors.NewAssertionFailure("pde: singular tridiagonal system at row %d", i)
		}
		if i < n-1 {
			cPrime[i] = op.high[i] / denom
		}
		dPrime[i] = (rhs[i] - op.low[i]*dPrime[i-1]) / denom
	}

	x := make(Array, n)
	x[n-1] = dPrime[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dPrime[i] - cPrime[i]*x[i+1]
	}
	return x, nil
}

// Add returns the operator sum a+b, row-by-row coefficient addition.
func Add(a, b *TridiagonalOperator) (*TridiagonalOperator, error) {
	if a.Size() != b.Size() {
		return nil, qlerrors.NewIllegalArgument("pde: cannot add operators of size %d and %d", a.Size(), b.Size())
	}
	n := a.Size()
	out, err := NewTridiagonalOperator(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		out.low[i] = a.low[i] + b.low[i]
		out.mid[i] = a.mid[i] + b.mid[i]
		out.high[i] = a.high[i] + b.high[i]
	}
	return out, nil
}

// ScaleBy returns op scaled by c: every coefficient multiplied by c.
func (op *TridiagonalOperator) ScaleBy(c float64) *TridiagonalOperator {
	n := op.Size()
	out := &TridiagonalOperator{low: make([]float64, n), mid: make([]float64, n), high: make([]float64, n)}
	for i := 0; i < n; i++ {
		out.low[i] = op.low[i] * c
		out.mid[i] = op.mid[i] * c
		out.high[i] = op.high[i] * c
	}
	return out
}
