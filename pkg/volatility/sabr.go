package volatility

import (
	"math"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/calibration"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// SABRParams are the four Hagan-2002 parameters of a single smile node.
type SABRParams struct {
	Alpha float64 // overall vol level, > 0
	Beta  float64 // CEV backbone exponent, in [0, 1]
	Nu    float64 // vol-of-vol, >= 0
	Rho   float64 // spot/vol correlation, in (-1, 1)
}

// Validate checks the admissible parameter region.
func (p SABRParams) Validate() error {
	if p.Alpha <= 0 {
		return qlerrors.NewIllegalArgument("sabr: alpha must be positive, got %g", p.Alpha)
	}
	if p.Beta < 0 || p.Beta > 1 {
		return qlerrors.NewIllegalArgument("sabr: beta must be in [0, 1], got %g", p.Beta)
	}
	if p.Nu < 0 {
		return qlerrors.NewIllegalArgument("sabr: nu must be non-negative, got %g", p.Nu)
	}
	if p.Rho <= -1 || p.Rho >= 1 {
		return qlerrors.NewIllegalArgument("sabr: rho must be in (-1, 1), got %g", p.Rho)
	}
	return nil
}

// SABRVolatility evaluates the Hagan et al. (2002) lognormal implied-vol
// expansion at a strike. Forward and strike must be positive.
func SABRVolatility(strike, forward, expiryTime float64, p SABRParams) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if forward <= 0 || strike <= 0 {
		return 0, qlerrors.NewIllegalArgument("sabr: forward %g and strike %g must be positive", forward, strike)
	}
	oneMinusBeta := 1 - p.Beta
	fkPow := math.Pow(forward*strike, oneMinusBeta/2)
	logFK := math.Log(forward / strike)

	// series correction in expiry, common to the ATM and away-from-ATM
	// branches
	correction := 1 + expiryTime*(oneMinusBeta*oneMinusBeta*p.Alpha*p.Alpha/(24*fkPow*fkPow)+
		p.Rho*p.Beta*p.Nu*p.Alpha/(4*fkPow)+
		(2-3*p.Rho*p.Rho)*p.Nu*p.Nu/24)

	if math.Abs(logFK) < 1e-12 {
		return p.Alpha / fkPow * correction, nil
	}

	z := p.Nu / p.Alpha * fkPow * logFK
	xz := math.Log((math.Sqrt(1-2*p.Rho*z+z*z) + z - p.Rho) / (1 - p.Rho))
	zOverX := 1.0
	if math.Abs(xz) > 1e-12 {
		zOverX = z / xz
	}

	denom := fkPow * (1 + oneMinusBeta*oneMinusBeta*logFK*logFK/24 +
		oneMinusBeta*oneMinusBeta*oneMinusBeta*oneMinusBeta*logFK*logFK*logFK*logFK/1920)
	return p.Alpha / denom * zOverX * correction, nil
}

// SABRSmileSection is a SmileSection backed by a fitted SABR parameter set.
type SABRSmileSection struct {
	base   *BlackVolSmileSection
	params SABRParams
}

// NewSABRSmileSection builds a smile section from SABR parameters over
// [minStrike, maxStrike].
func NewSABRSmileSection(forward, exerciseTime, discount, minStrike, maxStrike float64, params SABRParams) (*SABRSmileSection, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	base, err := NewBlackVolSmileSection(forward, exerciseTime, discount, minStrike, maxStrike, func(strike float64) (float64, error) {
		return SABRVolatility(strike, forward, exerciseTime, params)
	})
	if err != nil {
		return nil, err
	}
	return &SABRSmileSection{base: base, params: params}, nil
}

// Params returns the fitted parameter set.
func (s *SABRSmileSection) Params() SABRParams { return s.params }

func (s *SABRSmileSection) Forward() float64                       { return s.base.Forward() }
func (s *SABRSmileSection) ExerciseTime() float64                  { return s.base.ExerciseTime() }
func (s *SABRSmileSection) MinStrike() float64                     { return s.base.MinStrike() }
func (s *SABRSmileSection) MaxStrike() float64                     { return s.base.MaxStrike() }
func (s *SABRSmileSection) Volatility(k float64) (float64, error)  { return s.base.Volatility(k) }
func (s *SABRSmileSection) CallPrice(k float64) (float64, error)   { return s.base.CallPrice(k) }

// sabrFitProblem is the least-squares objective of a per-node SABR fit:
// residuals are model vol minus market vol at each quoted strike. Beta is
// held fixed during the fit, the market convention the cube follows; the
// free parameters are (alpha, nu, rho).
type sabrFitProblem struct {
	strikes    []float64
	marketVols []float64
	forward    float64
	expiryTime float64
	beta       float64
}

func (p *sabrFitProblem) Residuals(params []float64) ([]float64, error) {
	trial := SABRParams{Alpha: params[0], Beta: p.beta, Nu: params[1], Rho: params[2]}
	// reflect infeasible trial points back into the admissible region
	// instead of failing the whole minimization
	if trial.Alpha <= 0 {
		trial.Alpha = 1e-6
	}
	if trial.Nu < 0 {
		trial.Nu = 0
	}
	if trial.Rho <= -1 {
		trial.Rho = -0.999
	}
	if trial.Rho >= 1 {
		trial.Rho = 0.999
	}
	out := make([]float64, len(p.strikes))
	for i, k := range p.strikes {
		vol, err := SABRVolatility(k, p.forward, p.expiryTime, trial)
		if err != nil {
			return nil, err
		}
		out[i] = vol - p.marketVols[i]
	}
	return out, nil
}

// CalibrateSABR fits (alpha, nu, rho) to quoted (strike, vol) pairs by
// Levenberg-Marquardt with beta held at guess.Beta; the initial guess is
// supplied by the caller.
func CalibrateSABR(strikes, marketVols []float64, forward, expiryTime float64, guess SABRParams) (SABRParams, error) {
	if len(strikes) != len(marketVols) {
		return SABRParams{}, qlerrors.NewIllegalArgument("sabr: %d strikes vs %d vols", len(strikes), len(marketVols))
	}
	if len(strikes) < 3 {
		return SABRParams{}, qlerrors.NewIllegalArgument("sabr: need at least 3 quotes to fit (alpha, nu, rho), got %d", len(strikes))
	}
	if err := guess.Validate(); err != nil {
		return SABRParams{}, err
	}
	problem := &sabrFitProblem{
		strikes:    strikes,
		marketVols: marketVols,
		forward:    forward,
		expiryTime: expiryTime,
		beta:       guess.Beta,
	}
	result, err := calibration.Minimize(problem, []float64{guess.Alpha, guess.Nu, guess.Rho}, calibration.DefaultEndCriteria())
	if err != nil {
		return SABRParams{}, err
	}
	fitted := SABRParams{Alpha: result.Params[0], Beta: guess.Beta, Nu: result.Params[1], Rho: result.Params[2]}
	if fitted.Rho <= -1 {
		fitted.Rho = -0.999
	}
	if fitted.Rho >= 1 {
		fitted.Rho = 0.999
	}
	if err := fitted.Validate(); err != nil {
		return SABRParams{}, qlerrors.NewIllegalResult("sabr: fit left the admissible region: %v", err)
	}
	return fitted, nil
}
