// Package observer implements the subject→observer notification graph that
// propagates market-data updates through derived structures.
//
// Registration is idempotent, deregistration is safe to call more than once,
// and NotifyAll tolerates observers that register or deregister themselves
// during notification: such changes only take effect on the next notification
// cycle, because NotifyAll iterates a snapshot taken at its start. A panic
// inside one observer's Update does not prevent the remaining observers in
// the snapshot from being notified.
package observer

import "sync"

// Observer receives notifications when an Observable it is registered with
// changes.
type Observer interface {
	// Update is called synchronously, at the point of mutation, for every
	// Observable this Observer is currently registered with.
	Update()
}

// Observable holds a set of non-owning references to registered Observers
// and notifies them synchronously on NotifyAll.
type Observable struct {
	mu        sync.Mutex
	observers map[Observer]struct{}
}

// Register adds obs to the notification set. Registering the same Observer
// twice is a no-op.
func (o *Observable) Register(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.observers == nil {
		o.observers = make(map[Observer]struct{})
	}
	o.observers[obs] = struct{}{}
}

// Unregister removes obs from the notification set. Safe to call on an
// Observer that was never registered, or twice on the same Observer —
// deregistration is idempotent, so an Observer's destructor-equivalent
// cleanup never needs to track whether it already deregistered.
func (o *Observable) Unregister(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.observers == nil {
		return
	}
	delete(o.observers, obs)
}

// NotifyAll calls Update on every currently registered Observer. It takes a
// snapshot of the registration set before iterating, so an Observer that
// registers or deregisters itself from within Update is only affected on the
// next NotifyAll call. A panic raised by one observer's Update is recovered
// and does not prevent the remaining observers in the snapshot from being
// notified; the first such panic is re-raised once the sweep completes, and
// any later ones are dropped.
func (o *Observable) NotifyAll() {
	o.mu.Lock()
	snapshot := make([]Observer, 0, len(o.observers))
	for obs := range o.observers {
		snapshot = append(snapshot, obs)
	}
	o.mu.Unlock()

	var firstPanic interface{}
	for _, obs := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil && firstPanic == nil {
					firstPanic = r
				}
			}()
			obs.Update()
		}()
	}
	if firstPanic != nil {
		panic(firstPanic)
	}
}

// Len reports the number of currently registered observers, primarily for
// tests.
func (o *Observable) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.observers)
}

// Proxy adapts a plain func() into an Observer, for components (like
// pkg/instrument's per-market-data slots) that want to register a closure
// rather than implement Update on themselves directly.
type Proxy struct {
	fn func()
}

// NewProxy wraps fn as an Observer.
func NewProxy(fn func()) *Proxy {
	return &Proxy{fn: fn}
}

// Update invokes the wrapped closure.
func (p *Proxy) Update() {
	if p.fn != nil {
		p.fn()
	}
}
