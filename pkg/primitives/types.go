// Package primitives holds the decimal money types used at the market-data
// boundary of the pricing kernel: quoted prices, notionals, and displayed
// NPVs. The numerical core (processes, PDE, solvers, calibration) works in
// float64 throughout; decimal arithmetic is confined to values that enter or
// leave the system as external quotes, where binary floating point would
// misrepresent an exact market tick.
package primitives

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativePrice indicates a quoted price below zero.
	ErrNegativePrice = errors.New("price cannot be negative")
	// ErrNegativeNotional indicates a notional below zero.
	ErrNegativeNotional = errors.New("notional cannot be negative")
	// ErrInvalidDecimal indicates an unparseable decimal literal.
	ErrInvalidDecimal = errors.New("invalid decimal value")
)

// Decimal is the exact-arithmetic scalar backing Price and Notional.
type Decimal struct {
	value decimal.Decimal
}

// NewDecimal creates a Decimal from an int64.
func NewDecimal(value int64) Decimal {
	return Decimal{value: decimal.NewFromInt(value)}
}

// NewDecimalFromFloat creates a Decimal from a float64. Quotes arriving as
// strings should go through NewDecimalFromString instead, so the tick is
// preserved exactly.
func NewDecimalFromFloat(value float64) Decimal {
	return Decimal{value: decimal.NewFromFloat(value)}
}

// NewDecimalFromString parses a decimal literal.
func NewDecimalFromString(value string) (Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %s", ErrInvalidDecimal, err)
	}
	return Decimal{value: d}, nil
}

// ZeroDecimal returns the zero value.
func ZeroDecimal() Decimal {
	return Decimal{value: decimal.Zero}
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{value: d.value.Add(other.value)}
}

// Sub returns d - other.
func (d Decimal) Sub(other Decimal) Decimal {
	return Decimal{value: d.value.Sub(other.value)}
}

// Mul returns d * other.
func (d Decimal) Mul(other Decimal) Decimal {
	return Decimal{value: d.value.Mul(other.value)}
}

// Cmp compares d with other: -1 if d < other, 0 if equal, +1 if d > other.
func (d Decimal) Cmp(other Decimal) int {
	return d.value.Cmp(other.value)
}

// IsNegative reports whether d < 0.
func (d Decimal) IsNegative() bool {
	return d.value.IsNegative()
}

// Float64 converts to float64 for hand-off into the numerical core. The
// second result reports whether the conversion was exact.
func (d Decimal) Float64() (float64, bool) {
	return d.value.Float64()
}

// String renders the decimal without exponent notation.
func (d Decimal) String() string {
	return d.value.String()
}

// Price is a non-negative quoted market price.
type Price struct {
	value Decimal
}

// NewPrice validates and wraps a Decimal as a Price.
func NewPrice(value Decimal) (Price, error) {
	if value.IsNegative() {
		return Price{}, fmt.Errorf("%w: %s", ErrNegativePrice, value)
	}
	return Price{value: value}, nil
}

// MustPrice wraps a Decimal as a Price, panicking if it is negative. For
// known-valid constants in tests and fixtures.
func MustPrice(value Decimal) Price {
	p, err := NewPrice(value)
	if err != nil {
		panic(err)
	}
	return p
}

// Decimal returns the underlying decimal value.
func (p Price) Decimal() Decimal {
	return p.value
}

// Equal reports whether p and other quote the same value.
func (p Price) Equal(other Price) bool {
	return p.value.Cmp(other.value) == 0
}

// Float64 converts the price for comparison against a float64 NPV.
func (p Price) Float64() (float64, bool) {
	return p.value.Float64()
}

// String renders the price.
func (p Price) String() string {
	return p.value.String()
}

// Notional is a non-negative contract size.
type Notional struct {
	value Decimal
}

// NewNotional validates and wraps a Decimal as a Notional.
func NewNotional(value Decimal) (Notional, error) {
	if value.IsNegative() {
		return Notional{}, fmt.Errorf("%w: %s", ErrNegativeNotional, value)
	}
	return Notional{value: value}, nil
}

// Decimal returns the underlying decimal value.
func (n Notional) Decimal() Decimal {
	return n.value
}

// Cash returns the cash value of this notional at a unit price:
// notional * price.
func (n Notional) Cash(p Price) Decimal {
	return n.value.Mul(p.Decimal())
}

// String renders the notional.
func (n Notional) String() string {
	return n.value.String()
}
