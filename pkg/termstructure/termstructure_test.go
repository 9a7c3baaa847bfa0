package termstructure

import (
	"math"
	"testing"
	"time"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/observer"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
)

func mustDate(t *testing.T, y int, m time.Month, d int) qldate.Date {
	t.Helper()
	date, err := qldate.New(y, m, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return date
}

func TestZeroYieldTermStructureDerivesDiscount(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	curve := NewZeroYieldTermStructure(ref, max, func(d qldate.Date) (float64, error) { return 0.05, nil })
	q := mustDate(t, 2021, time.January, 1)
	df, err := curve.Discount(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Exp(-0.05 * qldate.YearFractionAct365F(ref, q))
	if math.Abs(df-want) > 1e-10 {
		t.Fatalf("Discount = %v, want %v", df, want)
	}
}

func TestZeroYieldTermStructureFlatForward(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	curve := NewZeroYieldTermStructure(ref, max, func(d qldate.Date) (float64, error) { return 0.05, nil })
	q := mustDate(t, 2021, time.January, 1)
	f, err := curve.Forward(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(f-0.05) > 1e-8 {
		t.Fatalf("flat-rate Forward = %v, want 0.05", f)
	}
}

func TestZeroYieldTermStructureRejectsOutOfRange(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2021, time.January, 1)
	curve := NewZeroYieldTermStructure(ref, max, func(d qldate.Date) (float64, error) { return 0.05, nil })
	outside := mustDate(t, 2025, time.January, 1)
	if _, err := curve.ZeroYield(outside); err == nil {
		t.Fatalf("expected an out-of-range error")
	}
}

func TestDiscountTermStructureDerivesZeroYield(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	r := 0.03
	curve := NewDiscountTermStructure(ref, max, func(d qldate.Date) (float64, error) {
		return math.Exp(-r * qldate.YearFractionAct365F(ref, d)), nil
	})
	q := mustDate(t, 2025, time.January, 1)
	got, err := curve.ZeroYield(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-r) > 1e-6 {
		t.Fatalf("ZeroYield = %v, want %v", got, r)
	}
}

func TestForwardTermStructureIntegratesToZeroYield(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	curve := NewForwardTermStructure(ref, max, func(d qldate.Date) (float64, error) { return 0.04, nil }, 50)
	q := mustDate(t, 2023, time.January, 1)
	got, err := curve.ZeroYield(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.04) > 1e-6 {
		t.Fatalf("flat-forward integrated ZeroYield = %v, want 0.04", got)
	}
}

func TestImpliedTermStructurePropagatesNotifications(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	rate := 0.05
	base := NewZeroYieldTermStructure(ref, max, func(d qldate.Date) (float64, error) { return rate, nil })
	asOf := mustDate(t, 2021, time.January, 1)
	implied := NewImpliedTermStructure(base, asOf)

	notified := false
	listener := observer.NewProxy(func() { notified = true })
	implied.Observable().Register(listener)

	base.Observable().NotifyAll()
	if !notified {
		t.Fatalf("expected implied curve to re-forward base's notification")
	}
}

func TestImpliedTermStructureMatchesRatio(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	base := NewZeroYieldTermStructure(ref, max, func(d qldate.Date) (float64, error) { return 0.05, nil })
	asOf := mustDate(t, 2021, time.January, 1)
	implied := NewImpliedTermStructure(base, asOf)
	q := mustDate(t, 2022, time.January, 1)

	got, err := implied.Discount(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dfQ, _ := base.Discount(q)
	dfAsOf, _ := base.Discount(asOf)
	want := dfQ / dfAsOf
	if math.Abs(got-want) > 1e-10 {
		t.Fatalf("Discount = %v, want %v", got, want)
	}
}

func TestSpreadedTermStructureAddsConstantSpread(t *testing.T) {
	ref := mustDate(t, 2020, time.January, 1)
	max := mustDate(t, 2030, time.January, 1)
	base := NewZeroYieldTermStructure(ref, max, func(d qldate.Date) (float64, error) { return 0.05, nil })
	spreaded := NewSpreadedTermStructure(base, 0.01)
	q := mustDate(t, 2022, time.January, 1)
	got, err := spreaded.ZeroYield(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.06) > 1e-10 {
		t.Fatalf("ZeroYield = %v, want 0.06", got)
	}
}
