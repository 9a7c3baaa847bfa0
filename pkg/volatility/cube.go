package volatility

import (
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// AtmForwardFunc supplies the ATM forward swap rate at an (option time,
// swap length) node, so the cube can translate absolute strikes into
// strike spreads.
type AtmForwardFunc func(optionTime, swapLength float64) float64

// SwaptionVolatilityCube interpolates ATM volatilities over an
// (option-tenor x swap-tenor) matrix and layers a smile on top via quoted
// strike-spread volatilities. Two interpolation variants:
// bilinear-in-tenor/linear-in-spread, or a per-node SABR fit seeded with a
// caller-supplied initial guess.
type SwaptionVolatilityCube struct {
	optionTimes   []float64
	swapLengths   []float64
	atmVols       [][]float64   // [option][swap]
	strikeSpreads []float64     // sorted ascending, relative to ATM
	volSpreads    [][][]float64 // [option][swap][spread], additive on ATM vol
	atmForward    AtmForwardFunc
	sabrGuess     *SABRParams // nil selects the linear variant
}

// NewLinearSwaptionVolatilityCube builds the linear-interpolation variant:
// bilinear in (option time, swap length), linear in strike spread.
func NewLinearSwaptionVolatilityCube(optionTimes, swapLengths []float64, atmVols [][]float64, strikeSpreads []float64, volSpreads [][][]float64, atmForward AtmForwardFunc) (*SwaptionVolatilityCube, error) {
	c := &SwaptionVolatilityCube{
		optionTimes:   optionTimes,
		swapLengths:   swapLengths,
		atmVols:       atmVols,
		strikeSpreads: strikeSpreads,
		volSpreads:    volSpreads,
		atmForward:    atmForward,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewSABRSwaptionVolatilityCube builds the SABR-fit variant: at each queried
// node the strike-spread quotes are refit by Levenberg-Marquardt starting
// from guess, and the fitted smile is evaluated at the strike.
func NewSABRSwaptionVolatilityCube(optionTimes, swapLengths []float64, atmVols [][]float64, strikeSpreads []float64, volSpreads [][][]float64, atmForward AtmForwardFunc, guess SABRParams) (*SwaptionVolatilityCube, error) {
	if err := guess.Validate(); err != nil {
		return nil, err
	}
	c, err := NewLinearSwaptionVolatilityCube(optionTimes, swapLengths, atmVols, strikeSpreads, volSpreads, atmForward)
	if err != nil {
		return nil, err
	}
	c.sabrGuess = &guess
	return c, nil
}

func (c *SwaptionVolatilityCube) validate() error {
	if err := checkSortedPositive("option times", c.optionTimes); err != nil {
		return err
	}
	if err := checkSortedPositive("swap lengths", c.swapLengths); err != nil {
		return err
	}
	if len(c.atmVols) != len(c.optionTimes) {
		return qlerrors.NewIllegalArgument("cube: %d ATM vol rows vs %d option times", len(c.atmVols), len(c.optionTimes))
	}
	for i, row := range c.atmVols {
		if len(row) != len(c.swapLengths) {
			return qlerrors.NewIllegalArgument("cube: ATM vol row %d has %d entries vs %d swap lengths", i, len(row), len(c.swapLengths))
		}
	}
	if len(c.strikeSpreads) < 2 {
		return qlerrors.NewIllegalArgument("cube: need at least 2 strike spreads, got %d", len(c.strikeSpreads))
	}
	for i := 1; i < len(c.strikeSpreads); i++ {
		if c.strikeSpreads[i] <= c.strikeSpreads[i-1] {
			return qlerrors.NewIllegalArgument("cube: strike spreads must be strictly increasing at index %d", i)
		}
	}
	if len(c.volSpreads) != len(c.optionTimes) {
		return qlerrors.NewIllegalArgument("cube: %d vol-spread rows vs %d option times", len(c.volSpreads), len(c.optionTimes))
	}
	for i, row := range c.volSpreads {
		if len(row) != len(c.swapLengths) {
			return qlerrors.NewIllegalArgument("cube: vol-spread row %d has %d entries vs %d swap lengths", i, len(row), len(c.swapLengths))
		}
		for j, node := range row {
			if len(node) != len(c.strikeSpreads) {
				return qlerrors.NewIllegalArgument("cube: vol-spread node (%d,%d) has %d entries vs %d strike spreads", i, j, len(node), len(c.strikeSpreads))
			}
		}
	}
	if c.atmForward == nil {
		return qlerrors.NewIllegalArgument("cube: ATM forward function is required")
	}
	return nil
}

func checkSortedPositive(what string, xs []float64) error {
	if len(xs) == 0 {
		return qlerrors.NewIllegalArgument("cube: %s must not be empty", what)
	}
	prev := 0.0
	for i, x := range xs {
		if x <= prev {
			return qlerrors.NewIllegalArgument("cube: %s must be positive and strictly increasing at index %d", what, i)
		}
		prev = x
	}
	return nil
}

// bracket locates i with xs[i] <= x <= xs[i+1] and the interpolation weight,
// clamping flat outside the quoted range.
func bracket(xs []float64, x float64) (int, float64) {
	if x <= xs[0] {
		return 0, 0
	}
	n := len(xs)
	if x >= xs[n-1] {
		return n - 2, 1
	}
	for i := 0; i < n-1; i++ {
		if x <= xs[i+1] {
			return i, (x - xs[i]) / (xs[i+1] - xs[i])
		}
	}
	return n - 2, 1
}

// AtmVolatility bilinearly interpolates the ATM matrix at (optionTime,
// swapLength), flat-extrapolating outside the quoted tenors.
func (c *SwaptionVolatilityCube) AtmVolatility(optionTime, swapLength float64) (float64, error) {
	if optionTime <= 0 || swapLength <= 0 {
		return 0, qlerrors.NewIllegalArgument("cube: option time %g and swap length %g must be positive", optionTime, swapLength)
	}
	if len(c.optionTimes) == 1 && len(c.swapLengths) == 1 {
		return c.atmVols[0][0], nil
	}
	i, u := bracketOrSingle(c.optionTimes, optionTime)
	j, v := bracketOrSingle(c.swapLengths, swapLength)
	return c.bilinear(c.atmVols, i, j, u, v), nil
}

func bracketOrSingle(xs []float64, x float64) (int, float64) {
	if len(xs) == 1 {
		return 0, 0
	}
	return bracket(xs, x)
}

// bilinear evaluates a [option][swap] matrix at bracketed indices, treating
// a single-row or single-column matrix as flat along the degenerate axis.
func (c *SwaptionVolatilityCube) bilinear(m [][]float64, i, j int, u, v float64) float64 {
	i2, j2 := i+1, j+1
	if i2 >= len(c.optionTimes) {
		i2 = i
	}
	if j2 >= len(c.swapLengths) {
		j2 = j
	}
	return (1-u)*(1-v)*m[i][j] + u*(1-v)*m[i2][j] + (1-u)*v*m[i][j2] + u*v*m[i2][j2]
}

// spreadVols interpolates the per-spread vol-spread vector bilinearly across
// the tenor grid, returning one additive spread per quoted strike spread.
func (c *SwaptionVolatilityCube) spreadVols(optionTime, swapLength float64) []float64 {
	i, u := bracketOrSingle(c.optionTimes, optionTime)
	j, v := bracketOrSingle(c.swapLengths, swapLength)
	out := make([]float64, len(c.strikeSpreads))
	for s := range c.strikeSpreads {
		slice := make([][]float64, len(c.optionTimes))
		for oi := range c.volSpreads {
			slice[oi] = make([]float64, len(c.swapLengths))
			for sj := range c.volSpreads[oi] {
				slice[oi][sj] = c.volSpreads[oi][sj][s]
			}
		}
		out[s] = c.bilinear(slice, i, j, u, v)
	}
	return out
}

// Volatility returns the cube's implied volatility at an absolute strike.
// The linear variant adds a linearly interpolated vol spread to the
// interpolated ATM vol; the SABR variant refits the node smile and
// evaluates it at the strike.
func (c *SwaptionVolatilityCube) Volatility(optionTime, swapLength, strike float64) (float64, error) {
	atmVol, err := c.AtmVolatility(optionTime, swapLength)
	if err != nil {
		return 0, err
	}
	forward := c.atmForward(optionTime, swapLength)
	if forward <= 0 {
		return 0, qlerrors.NewIllegalResult("cube: non-positive ATM forward %g at (%g, %g)", forward, optionTime, swapLength)
	}
	spreads := c.spreadVols(optionTime, swapLength)

	if c.sabrGuess == nil {
		i, w := bracket(c.strikeSpreads, strike-forward)
		spread := spreads[i] + w*(spreads[i+1]-spreads[i])
		vol := atmVol + spread
		if vol <= 0 {
			return 0, qlerrors.NewIllegalResult("cube: interpolated vol %g is not positive at strike %g", vol, strike)
		}
		return vol, nil
	}

	params, err := c.fitNode(forward, optionTime, atmVol, spreads)
	if err != nil {
		return 0, err
	}
	return SABRVolatility(strike, forward, optionTime, params)
}

// SmileSection exposes the cube's smile at one (optionTime, swapLength)
// node as a SmileSection over [minStrike, maxStrike].
func (c *SwaptionVolatilityCube) SmileSection(optionTime, swapLength, discount, minStrike, maxStrike float64) (SmileSection, error) {
	forward := c.atmForward(optionTime, swapLength)
	if c.sabrGuess != nil {
		atmVol, err := c.AtmVolatility(optionTime, swapLength)
		if err != nil {
			return nil, err
		}
		params, err := c.fitNode(forward, optionTime, atmVol, c.spreadVols(optionTime, swapLength))
		if err != nil {
			return nil, err
		}
		return NewSABRSmileSection(forward, optionTime, discount, minStrike, maxStrike, params)
	}
	return NewBlackVolSmileSection(forward, optionTime, discount, minStrike, maxStrike, func(strike float64) (float64, error) {
		return c.Volatility(optionTime, swapLength, strike)
	})
}

// fitNode refits the SABR smile at one node from the quoted strike-spread
// vols around the ATM forward, skipping spreads that land at non-positive
// strikes.
func (c *SwaptionVolatilityCube) fitNode(forward, optionTime, atmVol float64, spreads []float64) (SABRParams, error) {
	var strikes, vols []float64
	for s, spread := range c.strikeSpreads {
		k := forward + spread
		if k <= 0 {
			continue
		}
		strikes = append(strikes, k)
		vols = append(vols, atmVol+spreads[s])
	}
	if len(strikes) < 3 {
		return SABRParams{}, qlerrors.NewIllegalResult("cube: only %d usable strike-spread quotes at forward %g, need 3 for a SABR fit", len(strikes), forward)
	}
	return CalibrateSABR(strikes, vols, forward, optionTime, *c.sabrGuess)
}
