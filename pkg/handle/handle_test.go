package handle

import "testing"

type payload struct {
	value int
}

func TestEqualityIsIdentityBased(t *testing.T) {
	h1 := New(payload{value: 42})
	h2 := h1
	h3 := New(payload{value: 42})

	if !h1.Equals(h2) {
		t.Fatalf("copies of the same Handle must compare equal")
	}
	if h1.Equals(h3) {
		t.Fatalf("Handles over distinct payloads must not compare equal, even with equal contents")
	}
	if h1.Pointer() != h2.Pointer() {
		t.Fatalf("copies must share the identity pointer")
	}
}

func TestMutationIsVisibleThroughAllCopies(t *testing.T) {
	h1 := New(payload{value: 1})
	h2 := h1
	h1.Mutate(func(p *payload) { p.value = 7 })
	if h2.Value().value != 7 {
		t.Fatalf("mutation through one copy not visible through another: got %d", h2.Value().value)
	}
}

func TestEmptyHandle(t *testing.T) {
	e := Empty[payload]()
	if !e.IsNull() {
		t.Fatalf("Empty Handle should report null")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("dereferencing an empty Handle should panic")
		}
	}()
	_ = e.Value()
}
