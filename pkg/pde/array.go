// Package pde implements the generic finite-difference engine: a linear
// Operator over a discretized value Array, evolvers (ExplicitEuler,
// ImplicitEuler, CrankNicolson, Hundsdorfer) that advance an Array by a
// timestep, StepConditions applied after each step, boundary conditions at
// the grid edges, and the FiniteDifferenceModel.Rollback driver tying them
// together. Vector algebra is plain eager []float64 arithmetic.
package pde

import "github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"

// Array is the discretized value vector a PDE operator acts on: one value
// per spatial grid point.
type Array []float64

// NewArray allocates a zeroed Array of size n.
func NewArray(n int) Array {
	return make(Array, n)
}

// Clone returns an independent copy of a.
func (a Array) Clone() Array {
	out := make(Array, len(a))
	copy(out, a)
	return out
}

// Add returns a+b elementwise.
func (a Array) Add(b Array) Array {
	out := make(Array, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns a-b elementwise.
func (a Array) Sub(b Array) Array {
	out := make(Array, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Scale returns a scaled by c.
func (a Array) Scale(c float64) Array {
	out := make(Array, len(a))
	for i := range a {
		out[i] = a[i] * c
	}
	return out
}

// AxpyTo returns a + c*b (the classic axpy combination), used by the
// evolvers to blend explicit and implicit half-steps.
func (a Array) AxpyTo(c float64, b Array) (Array, error) {
	if len(a) != len(b) {
		return nil, qlerrors.NewIllegalArgument("pde: array length mismatch %d vs %d", len(a), len(b))
	}
	out := make(Array, len(a))
	for i := range a {
		out[i] = a[i] + c*b[i]
	}
	return out, nil
}
