package volatility

import (
	"math"
	"testing"
)

func TestSABRVolatilityAtmReducesToBackbone(t *testing.T) {
	params := SABRParams{Alpha: 0.2, Beta: 1.0, Nu: 0, Rho: 0}
	vol, err := SABRVolatility(0.03, 0.03, 1e-9, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// with beta=1, nu=0 and vanishing expiry the expansion collapses to
	// alpha itself
	if math.Abs(vol-0.2) > 1e-8 {
		t.Fatalf("ATM SABR vol = %v, want 0.2", vol)
	}
}

func TestSABRVolatilityRejectsBadParams(t *testing.T) {
	if _, err := SABRVolatility(0.03, 0.03, 1, SABRParams{Alpha: -0.1, Beta: 0.5, Nu: 0.2, Rho: 0}); err == nil {
		t.Fatalf("expected an error for negative alpha")
	}
	if _, err := SABRVolatility(0.03, 0.03, 1, SABRParams{Alpha: 0.1, Beta: 0.5, Nu: 0.2, Rho: 1.5}); err == nil {
		t.Fatalf("expected an error for rho outside (-1, 1)")
	}
}

func TestCalibrateSABRRecoversGeneratedSmile(t *testing.T) {
	truth := SABRParams{Alpha: 0.04, Beta: 0.5, Nu: 0.3, Rho: -0.3}
	forward, expiry := 0.03, 2.0
	strikes := []float64{0.015, 0.02, 0.025, 0.03, 0.035, 0.04, 0.05}
	vols := make([]float64, len(strikes))
	for i, k := range strikes {
		v, err := SABRVolatility(k, forward, expiry, truth)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		vols[i] = v
	}

	guess := SABRParams{Alpha: 0.03, Beta: 0.5, Nu: 0.2, Rho: 0}
	fitted, err := CalibrateSABR(strikes, vols, forward, expiry, guess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, k := range strikes {
		v, err := SABRVolatility(k, forward, expiry, fitted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(v-vols[i]) > 1e-5 {
			t.Fatalf("fitted vol at strike %v = %v, want %v", k, v, vols[i])
		}
	}
}

func flatCubeFixture() ([]float64, []float64, [][]float64, []float64, [][][]float64) {
	optionTimes := []float64{1, 2, 5}
	swapLengths := []float64{1, 5, 10}
	atmVols := make([][]float64, len(optionTimes))
	volSpreads := make([][][]float64, len(optionTimes))
	strikeSpreads := []float64{-0.01, 0, 0.01}
	for i := range optionTimes {
		atmVols[i] = []float64{0.2, 0.2, 0.2}
		volSpreads[i] = make([][]float64, len(swapLengths))
		for j := range swapLengths {
			volSpreads[i][j] = []float64{0.02, 0, 0.01}
		}
	}
	return optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads
}

func TestLinearCubeInterpolatesAtmAndSpread(t *testing.T) {
	optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads := flatCubeFixture()
	cube, err := NewLinearSwaptionVolatilityCube(optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads,
		func(optionTime, swapLength float64) float64 { return 0.03 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	atm, err := cube.AtmVolatility(3, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(atm-0.2) > 1e-12 {
		t.Fatalf("ATM vol = %v, want 0.2", atm)
	}

	// at the ATM strike the quoted spread is zero
	vol, err := cube.Volatility(2, 5, 0.03)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(vol-0.2) > 1e-12 {
		t.Fatalf("ATM-strike vol = %v, want 0.2", vol)
	}

	// halfway between the 0 and +0.01 spreads the smile adds half the
	// quoted +0.01 spread of 0.01
	vol, err = cube.Volatility(2, 5, 0.035)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(vol-0.205) > 1e-12 {
		t.Fatalf("mid-spread vol = %v, want 0.205", vol)
	}
}

func TestLinearCubeFlatExtrapolatesOutsideTenors(t *testing.T) {
	optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads := flatCubeFixture()
	atmVols[0][0] = 0.25
	cube, err := NewLinearSwaptionVolatilityCube(optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads,
		func(optionTime, swapLength float64) float64 { return 0.03 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	atm, err := cube.AtmVolatility(0.5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(atm-0.25) > 1e-12 {
		t.Fatalf("extrapolated ATM vol = %v, want the corner quote 0.25", atm)
	}
}

func TestCubeValidatesDimensions(t *testing.T) {
	optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads := flatCubeFixture()
	atmVols[1] = atmVols[1][:2]
	if _, err := NewLinearSwaptionVolatilityCube(optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads,
		func(optionTime, swapLength float64) float64 { return 0.03 }); err == nil {
		t.Fatalf("expected an error for a ragged ATM matrix")
	}
}

func TestSABRCubeSmileSectionMatchesQuotes(t *testing.T) {
	optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads := flatCubeFixture()
	guess := SABRParams{Alpha: 0.05, Beta: 0.5, Nu: 0.3, Rho: 0}
	cube, err := NewSABRSwaptionVolatilityCube(optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads,
		func(optionTime, swapLength float64) float64 { return 0.03 }, guess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	smile, err := cube.SmileSection(2, 5, 1.0, 0.005, 0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if smile.Forward() != 0.03 {
		t.Fatalf("smile forward = %v, want 0.03", smile.Forward())
	}
	// the fit cannot match three quotes exactly with a fixed beta, but it
	// must land close to the ATM quote
	vol, err := smile.Volatility(0.03)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(vol-0.2) > 0.02 {
		t.Fatalf("SABR-fit ATM vol = %v, want within 0.02 of the 0.2 quote", vol)
	}
}

func TestDigitalPricesNonIncreasingOnArbitrageFreeSmile(t *testing.T) {
	smile, err := NewFlatSmileSection(0.05, 1.0, 1.0, 0.2, 0.001, 0.20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const gap = 1e-5
	// The density is a second difference divided by gap^2, so round-off in
	// prices near 0.05 grows to about 1e-16*0.05/gap^2; a wider gap keeps
	// that noise far below the -1e-8 floor checked here.
	const densityGap = 1e-3
	prev := math.Inf(1)
	for k := 0.002; k <= 0.19; k += 0.002 {
		d, err := DigitalOptionPrice(smile, k, gap)
		if err != nil {
			t.Fatalf("unexpected error at strike %v: %v", k, err)
		}
		if d < -1e-10 || d > 1+1e-10 {
			t.Fatalf("digital price %v at strike %v outside [0, 1]", d, k)
		}
		if d > prev+1e-8 {
			t.Fatalf("digital price not non-increasing at strike %v: %v > %v", k, d, prev)
		}
		prev = d
		g, err := Density(smile, k, densityGap)
		if err != nil {
			t.Fatalf("unexpected error at strike %v: %v", k, err)
		}
		if g < -1e-8 {
			t.Fatalf("negative density %v at strike %v", g, k)
		}
	}
}
