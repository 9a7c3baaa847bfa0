package engine

import (
	"math"
	"testing"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/calibration"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/instrument"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/markovfunctional"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/volatility"
)

// buildFlatModel calibrates a small flat-yield, flat-vol basket, mirroring
// pkg/markovfunctional's own flat-basket fixture, so this package can test
// its engines against a model without depending on markovfunctional's test
// file (unexported helpers do not cross package boundaries).
func buildFlatModel(t *testing.T) (*markovfunctional.Model, []markovfunctional.Expiry) {
	t.Helper()
	const (
		flatRate = 0.03
		flatVol  = 0.20
		tau      = 1.0
	)
	discount := func(T float64) float64 { return math.Exp(-flatRate * T) }

	expiries := make([]markovfunctional.Expiry, 5)
	for i := 0; i < 5; i++ {
		tExp := float64(i + 1)
		dExp := discount(tExp)
		dPay := discount(tExp + tau)
		forward := (dExp/dPay - 1) / tau

		smile, err := volatility.NewFlatSmileSection(forward, tExp, dPay, flatVol, 1e-4, 2.0)
		if err != nil {
			t.Fatalf("NewFlatSmileSection: %v", err)
		}
		expiries[i] = markovfunctional.Expiry{
			Time: tExp, Tenor: tau, Forward: forward, Discount: dExp, MarketZeroRate: flatRate, Smile: smile,
		}
	}

	model, err := markovfunctional.NewModel(markovfunctional.DefaultSettings(), 0.01, 0.01, expiries)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := model.Calibrate(); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	return model, expiries
}

func TestGaussian1dCapFloorEngineMatchesModelATMPremium(t *testing.T) {
	model, expiries := buildFlatModel(t)
	settings := markovfunctional.DefaultSettings()

	atmIdx := -1
	for c, moneyness := range settings.SmileMoneynessCheckpoints {
		if moneyness == 1.0 {
			atmIdx = c
		}
	}
	if atmIdx < 0 {
		t.Fatal("expected an ATM checkpoint")
	}

	for i, e := range expiries {
		calc, err := NewGaussian1dCapFloorEngine(model, e.Time, e.Tenor, e.Forward, 1.0, true)
		if err != nil {
			t.Fatalf("NewGaussian1dCapFloorEngine: %v", err)
		}
		settlement, err := qldate.New(2020, 1, 1)
		if err != nil {
			t.Fatal(err)
		}
		base := instrument.NewBase("CAPLET", "flat-basket caplet", settlement, calc)

		npv, err := base.NPV()
		if err != nil {
			t.Fatalf("NPV: %v", err)
		}

		want := model.Outputs.ModelCallPremium[i][atmIdx]
		if diff := math.Abs(npv - want); diff > 1e-9 {
			t.Errorf("expiry %d: engine NPV %.10f vs model-reported premium %.10f, diff %.2e", i, npv, want, diff)
		}
	}
}

func TestGaussian1dCapFloorEngineCallPutParity(t *testing.T) {
	model, e := buildFlatModel(t)
	exp := e[0]

	call, err := NewGaussian1dCapFloorEngine(model, exp.Time, exp.Tenor, exp.Forward, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	put, err := NewGaussian1dCapFloorEngine(model, exp.Time, exp.Tenor, exp.Forward, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := call.PerformTermStructureCalculations(); err != nil {
		t.Fatal(err)
	}
	if err := put.PerformTermStructureCalculations(); err != nil {
		t.Fatal(err)
	}

	// Put-call parity: call - put = discounted forward swap value at the
	// ATM strike, which is exactly zero when struck at the forward.
	if diff := math.Abs(call.NPV() - put.NPV()); diff > 1e-6 {
		t.Errorf("ATM call-put diff %.2e should be ~0, call=%.8f put=%.8f", diff, call.NPV(), put.NPV())
	}
}

func TestGaussian1dSwaptionEngineMatchesCapFloorForOnePeriod(t *testing.T) {
	model, e := buildFlatModel(t)
	exp := e[2]

	capFloor, err := NewGaussian1dCapFloorEngine(model, exp.Time, exp.Tenor, exp.Forward*0.95, 1_000_000, true)
	if err != nil {
		t.Fatal(err)
	}
	swaption, err := NewGaussian1dSwaptionEngine(model, exp.Time, exp.Tenor, exp.Forward*0.95, 1_000_000, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := capFloor.PerformTermStructureCalculations(); err != nil {
		t.Fatal(err)
	}
	if err := swaption.PerformTermStructureCalculations(); err != nil {
		t.Fatal(err)
	}

	// A one-period swap's annuity equals the caplet's accrual-weighted
	// discount factor, so a payer swaption and an in-the-money caplet here
	// price identically (see SwaptionModel's doc comment).
	if diff := math.Abs(capFloor.NPV() - swaption.NPV()); diff > 1e-6 {
		t.Errorf("one-period swaption/capfloor NPV mismatch: %.8f vs %.8f", capFloor.NPV(), swaption.NPV())
	}
}

func TestCalibrateVolatilitiesRecoversMarketPremia(t *testing.T) {
	model, expiries := buildFlatModel(t)

	// Record the calibrated model's own ATM premia as the "market", then
	// perturb the step volatilities so the secondary calibration has work to
	// do recovering them.
	helpers := make([]calibration.Helper, len(expiries))
	targets := make([]float64, len(expiries))
	for i, e := range expiries {
		eng, err := NewGaussian1dCapFloorEngine(model, e.Time, e.Tenor, e.Forward, 1.0, true)
		if err != nil {
			t.Fatal(err)
		}
		if err := eng.PerformTermStructureCalculations(); err != nil {
			t.Fatal(err)
		}
		targets[i] = eng.NPV()
		h, err := NewCapFloorHelper(eng, targets[i], 1.0)
		if err != nil {
			t.Fatal(err)
		}
		helpers[i] = h
	}

	perturbed := model.StepVolatilities()
	for i := range perturbed {
		perturbed[i] *= 1.5
	}
	if err := model.SetStepVolatilities(perturbed); err != nil {
		t.Fatal(err)
	}
	if err := model.Calibrate(); err != nil {
		t.Fatal(err)
	}

	criteria := calibration.DefaultEndCriteria()
	criteria.MaxIterations = 20
	result, err := model.CalibrateVolatilities(helpers, criteria)
	if err != nil {
		t.Fatalf("CalibrateVolatilities: %v", err)
	}

	// The primary calibration re-fits the numeraire map at every trial
	// vector, so the premia's dependence on the step volatilities is second
	// order (through the numeraire bootstrap, not the smile fit); the check
	// here is that the secondary calibration lands the premia back at the
	// market within the same tolerance the primary calibration itself
	// guarantees, not a tighter one.
	for i, h := range helpers {
		repriced, err := h.ModelPrice()
		if err != nil {
			t.Fatal(err)
		}
		if diff := math.Abs(repriced - targets[i]); diff > 1e-4 {
			t.Errorf("helper %d: repriced premium %.8f vs market %.8f after %d iterations, diff %.2e", i, repriced, targets[i], result.Iterations, diff)
		}
	}
}

func TestCapFloorHelperRejectsInvalidInputs(t *testing.T) {
	model, e := buildFlatModel(t)
	eng, err := NewGaussian1dCapFloorEngine(model, e[0].Time, e[0].Tenor, e[0].Forward, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCapFloorHelper(nil, 1.0, 1.0); err == nil {
		t.Fatal("expected an error for a nil engine")
	}
	if _, err := NewCapFloorHelper(eng, -1.0, 1.0); err == nil {
		t.Fatal("expected an error for a negative market price")
	}
	if _, err := NewCapFloorHelper(eng, 1.0, -1.0); err == nil {
		t.Fatal("expected an error for a negative weight")
	}
}

func TestGaussian1dCapFloorEngineRejectsInvalidInputs(t *testing.T) {
	model, _ := buildFlatModel(t)
	if _, err := NewGaussian1dCapFloorEngine(model, 1.0, 0, 0.03, 1.0, true); err == nil {
		t.Fatal("expected an error for non-positive tenor")
	}
	if _, err := NewGaussian1dCapFloorEngine(model, 1.0, 1.0, 0.03, 0, true); err == nil {
		t.Fatal("expected an error for non-positive notional")
	}
	if _, err := NewGaussian1dCapFloorEngine(nil, 1.0, 1.0, 0.03, 1.0, true); err == nil {
		t.Fatal("expected an error for a nil model")
	}
}
