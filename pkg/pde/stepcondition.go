package pde

import "github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"

// StepCondition is an in-place mapping applied to the value Array at each
// rollback step; FiniteDifferenceModel.Rollback applies it AFTER evolution,
// never before.
type StepCondition interface {
	ApplyTo(a Array, t float64)
}

// AmericanExerciseCondition enforces early exercise against a fixed
// intrinsic-value profile: a[i] := max(a[i], intrinsic[i]).
type AmericanExerciseCondition struct {
	Intrinsic Array
}

func (c AmericanExerciseCondition) ApplyTo(a Array, t float64) {
	for i := range a {
		if c.Intrinsic[i] > a[i] {
			a[i] = c.Intrinsic[i]
		}
	}
}

// BarrierKnockOutCondition overwrites the array with rebate beyond a
// barrier index, the grid-point realization of a discrete barrier
// knock-out.
type BarrierKnockOutCondition struct {
	// BarrierIndex is the first (Up) or last (Down) knocked-out grid index;
	// it and every point beyond it are set to Rebate.
	BarrierIndex int
	Up           bool
	Rebate       float64
}

func (c BarrierKnockOutCondition) ApplyTo(a Array, t float64) {
	if c.Up {
		for i := c.BarrierIndex; i < len(a); i++ {
			a[i] = c.Rebate
		}
		return
	}
	for i := 0; i <= c.BarrierIndex; i++ {
		a[i] = c.Rebate
	}
}

// ShoutCondition floors the grid against a caller-supplied lock-in array:
// each value below LockedIn[i] is raised to it. It takes no snapshot and
// tracks no running maximum itself; the caller updates LockedIn between
// rollback calls (it is not state this type owns, since a single
// StepCondition instance is shared across every time step of one rollback).
type ShoutCondition struct {
	LockedIn Array
}

func (c ShoutCondition) ApplyTo(a Array, t float64) {
	for i := range a {
		if c.LockedIn[i] > a[i] {
			a[i] = c.LockedIn[i]
		}
	}
}

// DividendCondition shifts the grid values at t to reflect a discrete
// dividend drop of Amount at a single ex-dividend date: value(S) after the
// drop equals value(S-Amount) before it, reconstructed on the same grid by
// linear interpolation since S-Amount generally falls between grid points.
type DividendCondition struct {
	Spot   []float64
	Amount float64
	ExDate float64
	tol    float64
}

// NewDividendCondition builds a condition firing only when ApplyTo's t
// matches ExDate within tol.
func NewDividendCondition(spot []float64, amount, exDate, tol float64) DividendCondition {
	return DividendCondition{Spot: spot, Amount: amount, ExDate: exDate, tol: tol}
}

func (c DividendCondition) ApplyTo(a Array, t float64) {
	if absDiff(t, c.ExDate) > c.tol {
		return
	}
	shifted := make(Array, len(a))
	for i, s := range c.Spot {
		shifted[i] = interpolateAt(c.Spot, a, s-c.Amount)
	}
	copy(a, shifted)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// interpolateAt linearly interpolates (x,y) samples at query x, clamping
// to the endpoints outside [x[0], x[n-1]].
func interpolateAt(x []float64, y Array, query float64) float64 {
	n := len(x)
	if query <= x[0] {
		return y[0]
	}
	if query >= x[n-1] {
		return y[n-1]
	}
	for i := 0; i < n-1; i++ {
		if query >= x[i] && query <= x[i+1] {
			w := (query - x[i]) / (x[i+1] - x[i])
			return y[i] + w*(y[i+1]-y[i])
		}
	}
	return y[n-1]
}

// CompositeStepCondition applies a sequence of StepConditions in order,
// letting a rollback combine e.g. a dividend drop with American exercise.
type CompositeStepCondition struct {
	Conditions []StepCondition
}

func (c CompositeStepCondition) ApplyTo(a Array, t float64) {
	for _, cond := range c.Conditions {
		cond.ApplyTo(a, t)
	}
}

// NewCompositeStepCondition validates and wraps a non-empty sequence of
// StepConditions.
func NewCompositeStepCondition(conds ...StepCondition) (CompositeStepCondition, error) {
	if len(conds) == 0 {
		return CompositeStepCondition{}, qlerrors.NewIllegalArgument("pde: composite step condition needs at least one member")
	}
	return CompositeStepCondition{Conditions: conds}, nil
}
