package pde

import (
	"github.com/rs/zerolog/log"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlsettings"
)

// FiniteDifferenceModel is the rollback driver: it wraps a single Evolver
// and repeatedly steps an Array backward from tFrom to tTo, applying
// boundary conditions and an optional StepCondition after each step (never
// before).
type FiniteDifferenceModel struct {
	evolver    Evolver
	boundaries []BoundaryCondition
}

// NewFiniteDifferenceModel builds a driver over evolver, with boundary
// conditions applied to the array after every step.
func NewFiniteDifferenceModel(evolver Evolver, boundaries ...BoundaryCondition) *FiniteDifferenceModel {
	return &FiniteDifferenceModel{evolver: evolver, boundaries: boundaries}
}

// Rollback advances array from tFrom to tTo (tFrom must be strictly later
// than tTo) over the given number of steps: it computes dt =
// (tFrom-tTo)/steps, calls the evolver's SetStep(dt), then for each step
// advances the array and applies cond (if non-nil) with the current t.
// Step conditions run AFTER evolution.
func (m *FiniteDifferenceModel) Rollback(array Array, tFrom, tTo float64, steps int, cond StepCondition) (Array, error) {
	if tFrom <= tTo {
		return nil, qlerrors.NewIllegalArgument("pde: rollback requires tFrom > tTo, got tFrom=%g tTo=%g", tFrom, tTo)
	}
	if steps <= 0 {
		return nil, qlerrors.NewIllegalArgument("pde: rollback requires a positive step count, got %d", steps)
	}
	dt := (tFrom - tTo) / float64(steps)
	m.evolver.SetStep(dt)
	tracing := qlsettings.Instance().EnableTracing()
	if tracing {
		log.Debug().Float64("tFrom", tFrom).Float64("tTo", tTo).Int("steps", steps).Float64("dt", dt).Msg("pde: rollback starting")
	}

	current := array.Clone()
	t := tFrom
	for i := 0; i < steps; i++ {
		next, err := m.evolver.Step(current, t)
		if err != nil {
			return nil, err
		}
		t -= dt
		ApplyAll(m.boundaries, next)
		if cond != nil {
			cond.ApplyTo(next, t)
		}
		current = next
		if tracing {
			log.Debug().Int("step", i).Float64("t", t).Msg("pde: rollback step complete")
		}
	}
	return current, nil
}
