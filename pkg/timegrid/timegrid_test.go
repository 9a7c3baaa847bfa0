package timegrid

import "testing"

func TestNewUniform(t *testing.T) {
	g, err := New(1.0, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Size() != 5 {
		t.Fatalf("expected 5 points, got %d", g.Size())
	}
	if g.At(0) != 0 || g.Back() != 1.0 {
		t.Fatalf("expected grid spanning [0,1], got [%v,%v]", g.At(0), g.Back())
	}
	for i := 0; i < 4; i++ {
		if got, want := g.Dt(i), 0.25; got != want {
			t.Errorf("dt[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	if _, err := New(-1, 4); err == nil {
		t.Fatal("expected error for negative end")
	}
	if _, err := New(1, 0); err == nil {
		t.Fatal("expected error for non-positive steps")
	}
}

func TestMandatoryPoints(t *testing.T) {
	g, err := NewWithMandatoryPoints(2.0, 10, []float64{0.5, 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := map[float64]bool{}
	for i := 0; i < g.Size(); i++ {
		found[g.At(i)] = true
	}
	if !found[0.5] || !found[1.5] {
		t.Fatalf("mandatory points not present in grid: %v", g.Times())
	}
}

func TestIndexNearest(t *testing.T) {
	g, _ := New(1.0, 4)
	if idx := g.Index(0.24); idx != 1 {
		t.Errorf("expected index 1 for t=0.24, got %d", idx)
	}
	if idx := g.Index(0.0); idx != 0 {
		t.Errorf("expected index 0 for t=0, got %d", idx)
	}
	if idx := g.Index(1.0); idx != 4 {
		t.Errorf("expected index 4 for t=1, got %d", idx)
	}
}
