package engine

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/blackformula"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/calibration"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// CapFloorHelper exposes a caplet/floorlet's pricing error against a model,
// the concrete calibration.Helper this package supplies for the secondary
// per-volStep calibration: MarketPrice is the quoted premium, ModelPrice
// reprices the instrument through a Gaussian1dCapFloorEngine on each call,
// so it tracks whatever trial volatilities the calibration last pushed into
// the model.
type CapFloorHelper struct {
	engine      *Gaussian1dCapFloorEngine
	marketPrice float64
	weight      float64
}

// NewCapFloorHelper wraps engine as a calibration helper targeting
// marketPrice with the given least-squares weight.
func NewCapFloorHelper(engine *Gaussian1dCapFloorEngine, marketPrice, weight float64) (*CapFloorHelper, error) {
	if engine == nil {
		return nil, qlerrors.NewIllegalArgument("engine: helper needs a non-nil engine")
	}
	if marketPrice < 0 {
		return nil, qlerrors.NewIllegalArgument("engine: helper market price must be non-negative, got %g", marketPrice)
	}
	if weight < 0 {
		return nil, qlerrors.NewIllegalArgument("engine: helper weight must be non-negative, got %g", weight)
	}
	return &CapFloorHelper{engine: engine, marketPrice: marketPrice, weight: weight}, nil
}

// NewCapFloorHelperFromBlackVol builds a helper whose market price is the
// Black-76 premium implied by a quoted volatility — the "Black-vol helper"
// form the secondary calibration is usually fed, with the quote arriving as
// a vol rather than a premium. discount is the discount factor to the
// caplet's payment date and tau its accrual fraction.
func NewCapFloorHelperFromBlackVol(engine *Gaussian1dCapFloorEngine, forward, strike, expiry, tau, discount, blackVol, weight float64) (*CapFloorHelper, error) {
	if engine == nil {
		return nil, qlerrors.NewIllegalArgument("engine: helper needs a non-nil engine")
	}
	optType := blackformula.Call
	if !engine.isCap {
		optType = blackformula.Put
	}
	premium, err := blackformula.Price(optType, forward, strike, blackVol*math.Sqrt(expiry), discount)
	if err != nil {
		return nil, err
	}
	return NewCapFloorHelper(engine, engine.notional*tau*premium, weight)
}

var _ calibration.Helper = (*CapFloorHelper)(nil)

// ModelPrice reprices the caplet under the model's current state.
func (h *CapFloorHelper) ModelPrice() (float64, error) {
	if err := h.engine.PerformTermStructureCalculations(); err != nil {
		return 0, err
	}
	return h.engine.NPV(), nil
}

// MarketPrice returns the quoted premium this helper targets.
func (h *CapFloorHelper) MarketPrice() float64 { return h.marketPrice }

// Weight returns this helper's least-squares weight.
func (h *CapFloorHelper) Weight() float64 { return h.weight }
