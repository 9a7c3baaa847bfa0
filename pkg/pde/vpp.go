package pde

import "github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"

// VPPPhase enumerates the virtual-power-plant operating phases: a unit can
// be fully on, fully off, or off while still ramping through a minimum
// dwell time in either direction before it may switch again.
type VPPPhase int

const (
	PhaseOff VPPPhase = iota
	PhaseOn
	PhaseOffMinUp   // off, but still inside the prior on-phase's minimum-up commitment
	PhaseOffMinDown // off, and inside the minimum-down dwell before it may turn on again
)

// vppPhaseCount is the number of phases VPPStepCondition tracks.
const vppPhaseCount = 4

// VPPStepCondition is a state-machine overlay: each grid point carries one
// value per VPPPhase (an extended state vector); a rollback step evaluates
// every admissible phase transition at each grid point and retains the best
// (maximum) continuation value, charging a fixed startup cost on the
// off-to-on transition. The phases are carried as parallel Arrays mutated
// in lockstep by one ApplyTo call per rollback step.
type VPPStepCondition struct {
	// SparkSpread is the instantaneous power-minus-fuel margin at each grid
	// point, added to the On-phase value at every step (the running cash
	// flow of operating).
	SparkSpread Array
	StartupCost float64

	// State holds one Array per phase, indexed by VPPPhase; all four must
	// have the same length as SparkSpread. ApplyTo mutates State in place.
	State [vppPhaseCount]Array
}

// NewVPPStepCondition allocates a VPPStepCondition over n grid points, all
// phases initialized to zero continuation value.
func NewVPPStepCondition(sparkSpread Array, startupCost float64) (*VPPStepCondition, error) {
	n := len(sparkSpread)
	if n == 0 {
		return nil, qlerrors.NewIllegalArgument("pde: VPP step condition needs a non-empty spark-spread grid")
	}
	var state [vppPhaseCount]Array
	for p := range state {
		state[p] = NewArray(n)
	}
	return &VPPStepCondition{SparkSpread: sparkSpread, StartupCost: startupCost, State: state}, nil
}

// ApplyTo evaluates every admissible transition at each grid point and
// keeps the best resulting value per phase:
//
//   - On:          stay on (+spark spread this step), or was OffMinDown
//     completing its dwell and switches on (paying StartupCost).
//   - Off:         stay off, or was On and switches off.
//   - OffMinUp:    was On and must still honor a minimum-up commitment
//     (modeled here as a single forced dwell step back into Off once
//     entered, since the grid-overlay does not track a separate countdown
//     per remaining dwell day).
//   - OffMinDown:  was Off and is now inside its minimum-down dwell before
//     it may turn back on; after one ApplyTo it rolls into Off, from which
//     a later transition to On is permitted.
//
// After advancing the phases, ApplyTo overwrites a in place with the
// unconstrained best value across all four phases at each grid point, so a
// rollback driven through FiniteDifferenceModel.Rollback reads the VPP's
// optimal value straight off the returned array like any other
// StepCondition's result.
func (c *VPPStepCondition) ApplyTo(a Array, t float64) {
	n := len(c.SparkSpread)
	nextOn := make(Array, n)
	nextOff := make(Array, n)
	nextOffMinUp := make(Array, n)
	nextOffMinDown := make(Array, n)

	for i := 0; i < n; i++ {
		stayOn := c.State[PhaseOn][i] + c.SparkSpread[i]
		switchOffFromOn := c.State[PhaseOffMinUp][i]
		nextOn[i] = stayOn
		nextOffMinUp[i] = switchOffFromOn

		stayOff := c.State[PhaseOff][i]
		switchOnFromOffMinDown := c.State[PhaseOn][i] - c.StartupCost
		best := stayOff
		if switchOnFromOffMinDown > best {
			best = switchOnFromOffMinDown
		}
		// Off may also be entered directly from OffMinDown once its dwell
		// completes, carrying the same value forward.
		fromDwell := c.State[PhaseOffMinDown][i]
		if fromDwell > best {
			best = fromDwell
		}
		nextOff[i] = best

		nextOffMinDown[i] = c.State[PhaseOff][i]
	}

	c.State[PhaseOn] = nextOn
	c.State[PhaseOff] = nextOff
	c.State[PhaseOffMinUp] = nextOffMinUp
	c.State[PhaseOffMinDown] = nextOffMinDown

	copy(a, c.BestValue())
}

// BestValue returns, at each grid point, the maximum value across all four
// phases — the VPP's unconstrained optimal value, read out once the
// rollback driver reaches the valuation date.
func (c *VPPStepCondition) BestValue() Array {
	n := len(c.SparkSpread)
	out := make(Array, n)
	for i := 0; i < n; i++ {
		best := c.State[PhaseOff][i]
		for p := 1; p < vppPhaseCount; p++ {
			if c.State[p][i] > best {
				best = c.State[p][i]
			}
		}
		out[i] = best
	}
	return out
}
