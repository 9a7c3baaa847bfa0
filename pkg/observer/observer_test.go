package observer

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	var o Observable
	count := 0
	p := NewProxy(func() { count++ })
	o.Register(p)
	o.Register(p)
	if o.Len() != 1 {
		t.Fatalf("double registration should keep one entry, got %d", o.Len())
	}
	o.NotifyAll()
	if count != 1 {
		t.Fatalf("observer notified %d times, want 1", count)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	var o Observable
	p := NewProxy(func() {})
	o.Register(p)
	o.Unregister(p)
	o.Unregister(p)
	if o.Len() != 0 {
		t.Fatalf("expected an empty observer set, got %d", o.Len())
	}
	never := NewProxy(func() {})
	o.Unregister(never) // never registered; must not panic
}

func TestRegistrationDuringNotificationTakesEffectNextCycle(t *testing.T) {
	var o Observable
	lateCount := 0
	late := NewProxy(func() { lateCount++ })
	first := NewProxy(func() { o.Register(late) })
	o.Register(first)

	o.NotifyAll()
	if lateCount != 0 {
		t.Fatalf("observer registered mid-notification fired in the same cycle")
	}
	o.NotifyAll()
	if lateCount != 1 {
		t.Fatalf("late observer fired %d times on the next cycle, want 1", lateCount)
	}
}

func TestPanicInOneObserverDoesNotStopOthers(t *testing.T) {
	var o Observable
	notified := 0
	o.Register(NewProxy(func() { panic("boom") }))
	o.Register(NewProxy(func() { notified++ }))
	o.Register(NewProxy(func() { notified++ }))

	defer func() {
		if recover() == nil {
			t.Fatalf("the collected panic should be re-raised")
		}
		if notified != 2 {
			t.Fatalf("remaining observers notified %d times, want 2", notified)
		}
	}()
	o.NotifyAll()
}
