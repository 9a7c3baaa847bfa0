package instrument

import (
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/primitives"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// PricedInstrument additionally carries an optional quoted market price,
// distinct from its model NPV. The quote itself is the one place this
// kernel crosses into decimal money arithmetic (primitives.Price, backed by
// shopspring/decimal): it is external data entering the system, not an
// intermediate of the floating-point numerical core.
type PricedInstrument struct {
	*Base
	marketPrice    primitives.Price
	hasMarketPrice bool
}

// NewPricedInstrument builds a PricedInstrument over calculator.
func NewPricedInstrument(isin, description string, settlementDate qldate.Date, calculator Calculator) *PricedInstrument {
	return &PricedInstrument{Base: NewBase(isin, description, settlementDate, calculator)}
}

// SetPrice records a quoted market price for this instrument.
func (p *PricedInstrument) SetPrice(price primitives.Price) {
	p.marketPrice = price
	p.hasMarketPrice = true
}

// Price returns the quoted market price and whether one has been set.
func (p *PricedInstrument) Price() (primitives.Price, bool) {
	return p.marketPrice, p.hasMarketPrice
}

// OTCInstrument rejects a quoted market price and aliases Price to NPV —
// there is no independently observable market quote for an over-the-counter
// instrument.
type OTCInstrument struct {
	*Base
}

// NewOTCInstrument builds an OTCInstrument over calculator.
func NewOTCInstrument(isin, description string, settlementDate qldate.Date, calculator Calculator) *OTCInstrument {
	return &OTCInstrument{Base: NewBase(isin, description, settlementDate, calculator)}
}

// SetPrice always fails: an OTC instrument has no independent market quote.
func (o *OTCInstrument) SetPrice(primitives.Price) error {
	return qlerrors.NewIllegalArgument("instrument: OTCInstrument %s does not accept a quoted market price", o.ISIN())
}

// Price aliases NPV.
func (o *OTCInstrument) Price() (float64, error) {
	return o.NPV()
}
