package engine

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/markovfunctional"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// SwaptionModel is the adapter subset Gaussian1dSwaptionEngine consumes,
// identical in shape to CapFloorModel — the two engines are kept as
// distinct types even though a coterminal swaption against a one-period
// markovfunctional.Model calibration basket degenerates to the same
// single-period payoff a caplet prices: the swap's
// annuity is the single period's zero bond, and the swap rate is that
// period's forward rate. A model calibrated against a genuinely
// multi-period coterminal swap basket would need ZeroBond/Forward calls at
// every accrual date in the underlying swap; this engine only ever calls
// them at the one (expiry, expiry+tenor) pair the model was calibrated at.
type SwaptionModel interface {
	StdDevAt(t float64) (float64, error)
	NumeraireAtOrigin() float64
	Numeraire(t, y float64) (float64, error)
	ZeroBond(t, T, y float64) (float64, error)
	Forward(t, T, y float64) (float64, error)
}

var _ SwaptionModel = (*markovfunctional.Model)(nil)

// Gaussian1dSwaptionEngine prices a European swaption under a calibrated
// Markov-functional model. isPayer selects a payer swaption (call on the
// swap rate) vs. a receiver swaption (put on the swap rate).
type Gaussian1dSwaptionEngine struct {
	model         SwaptionModel
	expiry, tenor float64
	strike        float64
	notional      float64
	isPayer       bool
	quad          quadrature

	npv float64
}

// NewGaussian1dSwaptionEngine builds an engine pricing a swaption exercising
// at expiry into a swap accruing over [expiry, expiry+tenor], struck at
// strike, on the given notional, under model.
func NewGaussian1dSwaptionEngine(model SwaptionModel, expiry, tenor, strike, notional float64, isPayer bool) (*Gaussian1dSwaptionEngine, error) {
	if model == nil {
		return nil, qlerrors.NewIllegalArgument("engine: model must not be nil")
	}
	if tenor <= 0 {
		return nil, qlerrors.NewIllegalArgument("engine: tenor must be positive, got %g", tenor)
	}
	if notional <= 0 {
		return nil, qlerrors.NewIllegalArgument("engine: notional must be positive, got %g", notional)
	}
	return &Gaussian1dSwaptionEngine{
		model: model, expiry: expiry, tenor: tenor, strike: strike, notional: notional, isPayer: isPayer,
		quad: newQuadrature(defaultQuadraturePoints),
	}, nil
}

// PerformTermStructureCalculations computes the swaption NPV as NPV = N(0) *
// E_0[annuity(y) * max(sign*(swapRate(y)-strike),0) / N(expiry,y)], with
// annuity(y) = tenor * zeroBond(y) and swapRate(y) = forward(y) for this
// one-period underlying (see SwaptionModel's doc comment).
func (e *Gaussian1dSwaptionEngine) PerformTermStructureCalculations() error {
	std, err := e.model.StdDevAt(e.expiry)
	if err != nil {
		return err
	}
	maturity := e.expiry + e.tenor
	anchor := e.model.NumeraireAtOrigin()
	sign := 1.0
	if !e.isPayer {
		sign = -1.0
	}

	var evalErr error
	expectation := e.quad.expectGaussian(0, std, func(y float64) float64 {
		if evalErr != nil {
			return 0
		}
		swapRate, err := e.model.Forward(e.expiry, maturity, y)
		if err != nil {
			evalErr = err
			return 0
		}
		bond, err := e.model.ZeroBond(e.expiry, maturity, y)
		if err != nil {
			evalErr = err
			return 0
		}
		n, err := e.model.Numeraire(e.expiry, y)
		if err != nil {
			evalErr = err
			return 0
		}
		annuity := e.tenor * bond
		payoff := annuity * math.Max(sign*(swapRate-e.strike), 0)
		return payoff / n
	})
	if evalErr != nil {
		return evalErr
	}
	e.npv = e.notional * anchor * expectation
	return nil
}

func (e *Gaussian1dSwaptionEngine) UsesSwaptionVolatility() bool          { return false }
func (e *Gaussian1dSwaptionEngine) PerformSwaptionVolCalculations() error { return nil }
func (e *Gaussian1dSwaptionEngine) UsesForwardVolatility() bool           { return false }
func (e *Gaussian1dSwaptionEngine) PerformForwardVolCalculations() error  { return nil }
func (e *Gaussian1dSwaptionEngine) NeedsFinalCalculations() bool          { return false }
func (e *Gaussian1dSwaptionEngine) PerformFinalCalculations() error       { return nil }

// NPV returns the most recently computed swaption value.
func (e *Gaussian1dSwaptionEngine) NPV() float64 { return e.npv }
