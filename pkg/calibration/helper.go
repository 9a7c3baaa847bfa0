package calibration

import "math"

// Helper exposes the pricing error of a single calibration instrument
// against a model at its current parameter vector.
type Helper interface {
	// ModelPrice returns the model's current price for this instrument,
	// given the model has already been updated with the trial parameters.
	ModelPrice() (float64, error)
	// MarketPrice returns the quoted market price this helper targets.
	MarketPrice() float64
	// Weight returns this helper's contribution weight in the aggregate
	// sum of squared pricing errors.
	Weight() float64
}

// UpdateFunc pushes a trial parameter vector into the model a Helper set
// prices against (e.g. per-volStep volatilities in a Markov-functional
// model).
type UpdateFunc func(params []float64) error

// HelperSetProblem adapts a slice of Helper plus an UpdateFunc into a
// Problem whose residuals are the weighted pricing errors
// sqrt(weight_i)*(modelPrice_i - marketPrice_i), so the minimized squared
// norm is sum w_i*(modelPrice_i-marketPrice_i)^2.
type HelperSetProblem struct {
	Helpers []Helper
	Update  UpdateFunc
}

// Residuals updates the model with params, then returns the weighted
// pricing-error vector.
func (p *HelperSetProblem) Residuals(params []float64) ([]float64, error) {
	if p.Update != nil {
		if err := p.Update(params); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(p.Helpers))
	for i, h := range p.Helpers {
		modelPrice, err := h.ModelPrice()
		if err != nil {
			return nil, err
		}
		w := h.Weight()
		if w < 0 {
			w = 0
		}
		out[i] = math.Sqrt(w) * (modelPrice - h.MarketPrice())
	}
	return out, nil
}
