package pde

// Kind distinguishes the three boundary-condition behaviors.
type Kind int

const (
	// None applies no correction at this boundary.
	None Kind = iota
	// Neumann stores the value of (f1-f0) at the lower boundary (or
	// (f[n-1]-f[n-2]) at the upper), not the derivative itself.
	Neumann
	// Dirichlet fixes the boundary value directly.
	Dirichlet
)

// Side identifies which end of the grid a BoundaryCondition applies to.
type Side int

const (
	Lower Side = iota
	Upper
)

// BoundaryCondition pins the Array's value at one edge of the grid after
// every evolver step.
type BoundaryCondition struct {
	Side  Side
	Kind  Kind
	Value float64
}

// Apply enforces bc on a in place. Dirichlet overwrites the edge value
// outright; Neumann reconstructs it from the adjacent interior point using
// the stored (f1-f0) difference, never a derivative.
func (bc BoundaryCondition) Apply(a Array) {
	n := len(a)
	switch bc.Kind {
	case Dirichlet:
		if bc.Side == Lower {
			a[0] = bc.Value
		} else {
			a[n-1] = bc.Value
		}
	case Neumann:
		if bc.Side == Lower {
			a[0] = a[1] - bc.Value
		} else {
			a[n-1] = a[n-2] + bc.Value
		}
	case None:
		// leave the evolved value as computed
	}
}

// ApplyAll applies every condition in conds, in order, to a.
func ApplyAll(conds []BoundaryCondition, a Array) {
	for _, bc := range conds {
		bc.Apply(a)
	}
}
