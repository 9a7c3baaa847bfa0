package termstructure

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/observer"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
)

// ImpliedTermStructure re-bases a curve at a later asOf date: at query date
// d it returns base.Discount(d)/base.Discount(asOf). It re-forwards the
// base curve's observer events, so a recalculation of base propagates
// through unchanged.
type ImpliedTermStructure struct {
	bounds
	base  TermStructure
	asOf  qldate.Date
	proxy *observer.Proxy
}

// NewImpliedTermStructure builds a curve implied from base as of asOf.
func NewImpliedTermStructure(base TermStructure, asOf qldate.Date) *ImpliedTermStructure {
	t := &ImpliedTermStructure{
		bounds: bounds{referenceDate: asOf, maxDate: base.MaxDate()},
		base:   base,
		asOf:   asOf,
	}
	t.proxy = observer.NewProxy(func() { t.obs.NotifyAll() })
	base.Observable().Register(t.proxy)
	return t
}

func (t *ImpliedTermStructure) Discount(d qldate.Date) (float64, error) {
	if err := t.checkDate(d); err != nil {
		return 0, err
	}
	dfD, err := t.base.Discount(d)
	if err != nil {
		return 0, err
	}
	dfAsOf, err := t.base.Discount(t.asOf)
	if err != nil {
		return 0, err
	}
	return dfD / dfAsOf, nil
}

func (t *ImpliedTermStructure) ZeroYield(d qldate.Date) (float64, error) {
	df, err := t.Discount(d)
	if err != nil {
		return 0, err
	}
	dt := t.yearFraction(d)
	if dt == 0 {
		return t.base.ZeroYield(d)
	}
	return -math.Log(df) / dt, nil
}

func (t *ImpliedTermStructure) Forward(d qldate.Date) (float64, error) {
	return t.base.Forward(d)
}

// SpreadedTermStructure adds a constant continuously-compounded spread to a
// base curve's zero yield.
type SpreadedTermStructure struct {
	bounds
	base   TermStructure
	spread float64
	proxy  *observer.Proxy
}

// NewSpreadedTermStructure builds a curve whose zero yield is
// base.ZeroYield(d)+spread at every date.
func NewSpreadedTermStructure(base TermStructure, spread float64) *SpreadedTermStructure {
	t := &SpreadedTermStructure{
		bounds: bounds{referenceDate: base.ReferenceDate(), maxDate: base.MaxDate()},
		base:   base,
		spread: spread,
	}
	t.proxy = observer.NewProxy(func() { t.obs.NotifyAll() })
	base.Observable().Register(t.proxy)
	return t
}

func (t *SpreadedTermStructure) ZeroYield(d qldate.Date) (float64, error) {
	if err := t.checkDate(d); err != nil {
		return 0, err
	}
	r, err := t.base.ZeroYield(d)
	if err != nil {
		return 0, err
	}
	return r + t.spread, nil
}

func (t *SpreadedTermStructure) Discount(d qldate.Date) (float64, error) {
	r, err := t.ZeroYield(d)
	if err != nil {
		return 0, err
	}
	return math.Exp(-r * t.yearFraction(d)), nil
}

func (t *SpreadedTermStructure) Forward(d qldate.Date) (float64, error) {
	f, err := t.base.Forward(d)
	if err != nil {
		return 0, err
	}
	return f + t.spread, nil
}
