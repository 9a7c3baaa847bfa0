// Package termstructure implements the term-structure adapter hierarchy:
// zeroYield, discount, and forward are mutually derivable, so a concrete
// curve need only supply one of the three; the other two follow from the
// formulas below.
package termstructure

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/observer"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// TermStructure is the common contract every curve adapter satisfies: three
// pure queries plus the observable it notifies on recalculation.
type TermStructure interface {
	ReferenceDate() qldate.Date
	MaxDate() qldate.Date
	ZeroYield(d qldate.Date) (float64, error)
	Discount(d qldate.Date) (float64, error)
	Forward(d qldate.Date) (float64, error)
	Observable() *observer.Observable
}

// bounds holds the shared reference/settlement and validity window every
// adapter enforces before evaluating its formulas.
type bounds struct {
	referenceDate qldate.Date
	maxDate       qldate.Date
	obs           observer.Observable
}

func (b *bounds) ReferenceDate() qldate.Date   { return b.referenceDate }
func (b *bounds) MaxDate() qldate.Date         { return b.maxDate }
func (b *bounds) Observable() *observer.Observable { return &b.obs }

// checkDate enforces the invariant that querying outside [referenceDate,
// maxDate] is a failure the caller must decide whether to catch.
func (b *bounds) checkDate(d qldate.Date) error {
	if d.Before(b.referenceDate) || d.After(b.maxDate) {
		return qlerrors.NewIllegalArgument("termstructure: date %s outside valid range [%s, %s]", d, b.referenceDate, b.maxDate)
	}
	return nil
}

func (b *bounds) yearFraction(d qldate.Date) float64 {
	return qldate.YearFractionAct365F(b.referenceDate, d)
}

// ZeroYieldFunc supplies the continuously-compounded zero rate at d.
type ZeroYieldFunc func(d qldate.Date) (float64, error)

// ZeroYieldTermStructure derives discount and forward from a supplied
// zero-yield function.
type ZeroYieldTermStructure struct {
	bounds
	zero ZeroYieldFunc
}

// NewZeroYieldTermStructure builds an adapter over a zero-yield function.
func NewZeroYieldTermStructure(referenceDate, maxDate qldate.Date, zero ZeroYieldFunc) *ZeroYieldTermStructure {
	return &ZeroYieldTermStructure{bounds: bounds{referenceDate: referenceDate, maxDate: maxDate}, zero: zero}
}

func (t *ZeroYieldTermStructure) ZeroYield(d qldate.Date) (float64, error) {
	if err := t.checkDate(d); err != nil {
		return 0, err
	}
	return t.zero(d)
}

// Discount: exp(-r(d)*t(d)).
func (t *ZeroYieldTermStructure) Discount(d qldate.Date) (float64, error) {
	r, err := t.ZeroYield(d)
	if err != nil {
		return 0, err
	}
	return math.Exp(-r * t.yearFraction(d)), nil
}

// Forward (instantaneous): r(d) + t(d)*(r(d+1)-r(d))/dt(d,d+1), the standard
// f = z + t*dz/dt finite-difference approximation to the forward-rate
// derivative.
func (t *ZeroYieldTermStructure) Forward(d qldate.Date) (float64, error) {
	rd, err := t.ZeroYield(d)
	if err != nil {
		return 0, err
	}
	dPlus, err := d.AddDays(1)
	if err != nil {
		return 0, err
	}
	if dPlus.After(t.maxDate) {
		dPlus = d
	}
	rdPlus, err := t.zero(dPlus)
	if err != nil {
		return 0, err
	}
	dt := qldate.YearFractionAct365F(d, dPlus)
	if dt == 0 {
		return rd, nil
	}
	return rd + t.yearFraction(d)*(rdPlus-rd)/dt, nil
}

// DiscountFunc supplies the discount factor to d.
type DiscountFunc func(d qldate.Date) (float64, error)

// DiscountTermStructure derives zero-yield and forward from a supplied
// discount function.
type DiscountTermStructure struct {
	bounds
	discount DiscountFunc
}

// NewDiscountTermStructure builds an adapter over a discount function.
func NewDiscountTermStructure(referenceDate, maxDate qldate.Date, discount DiscountFunc) *DiscountTermStructure {
	return &DiscountTermStructure{bounds: bounds{referenceDate: referenceDate, maxDate: maxDate}, discount: discount}
}

func (t *DiscountTermStructure) Discount(d qldate.Date) (float64, error) {
	if err := t.checkDate(d); err != nil {
		return 0, err
	}
	return t.discount(d)
}

// ZeroYield: -log(df)/t.
func (t *DiscountTermStructure) ZeroYield(d qldate.Date) (float64, error) {
	if d.Equal(t.referenceDate) {
		return t.nearReferenceZero()
	}
	df, err := t.Discount(d)
	if err != nil {
		return 0, err
	}
	dt := t.yearFraction(d)
	return -math.Log(df) / dt, nil
}

// nearReferenceZero approximates the zero rate exactly at the reference
// date via a short forward step, since t(referenceDate)=0 makes the direct
// formula a 0/0 indeterminate form.
func (t *DiscountTermStructure) nearReferenceZero() (float64, error) {
	dPlus, err := t.referenceDate.AddDays(1)
	if err != nil {
		return 0, err
	}
	df, err := t.discount(dPlus)
	if err != nil {
		return 0, err
	}
	dt := qldate.YearFractionAct365F(t.referenceDate, dPlus)
	return -math.Log(df) / dt, nil
}

// Forward: log(df(d)/df(d+1)) / dt(d,d+1).
func (t *DiscountTermStructure) Forward(d qldate.Date) (float64, error) {
	dfD, err := t.Discount(d)
	if err != nil {
		return 0, err
	}
	dPlus, err := d.AddDays(1)
	if err != nil {
		return 0, err
	}
	if dPlus.After(t.maxDate) {
		dPlus = d
	}
	dfDPlus, err := t.discount(dPlus)
	if err != nil {
		return 0, err
	}
	dt := qldate.YearFractionAct365F(d, dPlus)
	if dt == 0 {
		return 0, qlerrors.NewIllegalResult("termstructure: degenerate one-day interval computing forward at %s", d)
	}
	return math.Log(dfD/dfDPlus) / dt, nil
}

// ForwardFunc supplies the instantaneous forward rate at d.
type ForwardFunc func(d qldate.Date) (float64, error)

// ForwardTermStructure derives zero-yield (by trapezoidal integration) and
// discount (via zero-yield) from a supplied forward function.
type ForwardTermStructure struct {
	bounds
	forward           ForwardFunc
	integrationPoints int
}

// NewForwardTermStructure builds an adapter over a forward-rate function.
// integrationPoints controls the trapezoidal rule's resolution between the
// reference date and a query date; 50 is a reasonable default.
func NewForwardTermStructure(referenceDate, maxDate qldate.Date, forward ForwardFunc, integrationPoints int) *ForwardTermStructure {
	if integrationPoints <= 0 {
		integrationPoints = 50
	}
	return &ForwardTermStructure{bounds: bounds{referenceDate: referenceDate, maxDate: maxDate}, forward: forward, integrationPoints: integrationPoints}
}

func (t *ForwardTermStructure) Forward(d qldate.Date) (float64, error) {
	if err := t.checkDate(d); err != nil {
		return 0, err
	}
	return t.forward(d)
}

// ZeroYield: trapezoidal integration of the forward curve from the
// reference date to d, divided by t(d).
func (t *ForwardTermStructure) ZeroYield(d qldate.Date) (float64, error) {
	if d.Equal(t.referenceDate) {
		return t.forward(d)
	}
	totalDays := qldate.DaysBetween(t.referenceDate, d)
	if totalDays <= 0 {
		return 0, qlerrors.NewIllegalArgument("termstructure: query date %s not after reference date %s", d, t.referenceDate)
	}
	n := t.integrationPoints
	if n > totalDays {
		n = totalDays
	}
	step := float64(totalDays) / float64(n)
	integral := 0.0
	prevDate := t.referenceDate
	prevF, err := t.forward(prevDate)
	if err != nil {
		return 0, err
	}
	for i := 1; i <= n; i++ {
		offset := int(math.Round(float64(i) * step))
		if offset > totalDays {
			offset = totalDays
		}
		curDate, err := t.referenceDate.AddDays(offset)
		if err != nil {
			return 0, err
		}
		curF, err := t.forward(curDate)
		if err != nil {
			return 0, err
		}
		dt := qldate.YearFractionAct365F(prevDate, curDate)
		integral += 0.5 * (prevF + curF) * dt
		prevDate, prevF = curDate, curF
	}
	return integral / t.yearFraction(d), nil
}

// Discount: exp(-zeroYield(d)*t(d)), via ZeroYield.
func (t *ForwardTermStructure) Discount(d qldate.Date) (float64, error) {
	r, err := t.ZeroYield(d)
	if err != nil {
		return 0, err
	}
	return math.Exp(-r * t.yearFraction(d)), nil
}
