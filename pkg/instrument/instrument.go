// Package instrument implements the lazy-calculation instrument base: an
// instrument carries three dirty flags and three market-data slots (term
// structure, swaption vol, forward vol), each wired to its source through
// an inner observer-proxy object. NPV() runs the calculation hooks in a
// fixed order and clears the flags, deferring recomputation until the next
// NPV() call after any upstream market data changes — the only deferral
// point in the otherwise single-threaded kernel.
package instrument

import (
	"github.com/google/uuid"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/observer"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
)

// Calculator supplies the hooks Base.calculate drives in order. A concrete
// instrument type implements Calculator and passes itself to NewBase; Base
// never performs pricing math itself.
type Calculator interface {
	// PerformTermStructureCalculations recomputes whatever this instrument
	// derives from its discounting/forecasting term structure. Always run
	// first, and whenever the term-structure dirty flag is set.
	PerformTermStructureCalculations() error

	// UsesSwaptionVolatility reports whether this instrument's valuation
	// depends on a swaption volatility surface at all; when false,
	// PerformSwaptionVolCalculations is never called.
	UsesSwaptionVolatility() bool
	PerformSwaptionVolCalculations() error

	// UsesForwardVolatility reports whether this instrument's valuation
	// depends on a forward (caplet) volatility surface at all; when false,
	// PerformForwardVolCalculations is never called.
	UsesForwardVolatility() bool
	PerformForwardVolCalculations() error

	// NeedsFinalCalculations reports whether a final calculation pass runs
	// after the term-structure/volatility hooks, e.g. to combine their
	// outputs into a single NPV.
	NeedsFinalCalculations() bool
	PerformFinalCalculations() error

	// NPV returns the instrument's net present value as of the most recent
	// calculate() pass.
	NPV() float64
}

// Base is the common lazy-recalculation machinery every instrument in this
// kernel embeds: ISIN/description/settlement metadata, the three dirty
// flags, and the observer proxies that set them.
type Base struct {
	isin           string
	description    string
	settlementDate qldate.Date
	calculator     Calculator

	expired bool

	termStructureDirty bool
	swaptionVolDirty   bool
	forwardVolDirty    bool

	termStructureProxy *observer.Proxy
	swaptionVolProxy   *observer.Proxy
	forwardVolProxy    *observer.Proxy

	observable observer.Observable
}

// NewBase constructs an instrument base with all three dirty flags set, so
// the first NPV() call always performs a full calculation pass. An empty
// isin gets a generated one (uuid v4), so callers that don't track their
// own identifier scheme still get ISIN-equality comparison for free.
func NewBase(isin, description string, settlementDate qldate.Date, calculator Calculator) *Base {
	if isin == "" {
		isin = uuid.NewString()
	}
	b := &Base{
		isin:               isin,
		description:        description,
		settlementDate:     settlementDate,
		calculator:         calculator,
		termStructureDirty: true,
		swaptionVolDirty:   true,
		forwardVolDirty:    true,
	}
	b.termStructureProxy = observer.NewProxy(func() {
		b.termStructureDirty = true
		b.observable.NotifyAll()
	})
	b.swaptionVolProxy = observer.NewProxy(func() {
		b.swaptionVolDirty = true
		b.observable.NotifyAll()
	})
	b.forwardVolProxy = observer.NewProxy(func() {
		b.forwardVolDirty = true
		b.observable.NotifyAll()
	})
	return b
}

// ISIN returns the instrument's identifier.
func (b *Base) ISIN() string { return b.isin }

// Description returns the instrument's free-text description.
func (b *Base) Description() string { return b.description }

// SettlementDate returns the instrument's settlement date.
func (b *Base) SettlementDate() qldate.Date { return b.settlementDate }

// Observable exposes the instrument's own notification source, so other
// instruments (or reporting layers) can register to learn when this
// instrument's NPV may have changed.
func (b *Base) Observable() *observer.Observable { return &b.observable }

// SetExpired flags the instrument as expired; NPV() then short-circuits to
// zero without running any calculation hook.
func (b *Base) SetExpired(expired bool) { b.expired = expired }

// IsExpired reports the expired flag.
func (b *Base) IsExpired() bool { return b.expired }

// RegisterTermStructure wires the instrument's term-structure dirty flag to
// source's notifications.
func (b *Base) RegisterTermStructure(source *observer.Observable) {
	source.Register(b.termStructureProxy)
	b.termStructureDirty = true
}

// RegisterSwaptionVolatility wires the instrument's swaption-vol dirty flag
// to source's notifications.
func (b *Base) RegisterSwaptionVolatility(source *observer.Observable) {
	source.Register(b.swaptionVolProxy)
	b.swaptionVolDirty = true
}

// RegisterForwardVolatility wires the instrument's forward-vol dirty flag to
// source's notifications.
func (b *Base) RegisterForwardVolatility(source *observer.Observable) {
	source.Register(b.forwardVolProxy)
	b.forwardVolDirty = true
}

// NPV returns the instrument's net present value, recomputing it first if
// any of the three dirty flags is set (and the instrument has not expired).
func (b *Base) NPV() (float64, error) {
	if b.expired {
		return 0, nil
	}
	if err := b.calculate(); err != nil {
		return 0, err
	}
	return b.calculator.NPV(), nil
}

// calculate runs PerformTermStructureCalculations, then
// PerformSwaptionVolCalculations, then PerformForwardVolCalculations, then
// PerformFinalCalculations if NeedsFinalCalculations is true, clearing all
// three dirty flags afterward. The order is fixed. It is a no-op when
// nothing is dirty.
func (b *Base) calculate() error {
	if !b.termStructureDirty && !b.swaptionVolDirty && !b.forwardVolDirty {
		return nil
	}
	if err := b.calculator.PerformTermStructureCalculations(); err != nil {
		return err
	}
	if b.calculator.UsesSwaptionVolatility() {
		if err := b.calculator.PerformSwaptionVolCalculations(); err != nil {
			return err
		}
	}
	if b.calculator.UsesForwardVolatility() {
		if err := b.calculator.PerformForwardVolCalculations(); err != nil {
			return err
		}
	}
	if b.calculator.NeedsFinalCalculations() {
		if err := b.calculator.PerformFinalCalculations(); err != nil {
			return err
		}
	}
	b.termStructureDirty = false
	b.swaptionVolDirty = false
	b.forwardVolDirty = false
	return nil
}

// Equal reports ISIN equality, the comparison instrument handles use.
func (b *Base) Equal(other *Base) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.isin == other.isin
}
