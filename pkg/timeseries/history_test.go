package timeseries

import (
	"testing"
	"time"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlnull"
)

func mustDate(t *testing.T, y int, m time.Month, d int) qldate.Date {
	t.Helper()
	date, err := qldate.New(y, m, d)
	if err != nil {
		t.Fatalf("qldate.New(%d,%v,%d): %v", y, m, d, err)
	}
	return date
}

// TestHistoryFromDatesFillsGaps checks the gap-filling constructor on a
// two-date series with one missing day between them.
func TestHistoryFromDatesFillsGaps(t *testing.T) {
	d1 := mustDate(t, 2005, time.January, 1)
	d3 := mustDate(t, 2005, time.January, 3)

	h, err := NewHistoryFromDates([]qldate.Date{d1, d3}, []qlnull.Real{1.0, 2.0})
	if err != nil {
		t.Fatalf("NewHistoryFromDates: %v", err)
	}

	if !h.FirstDate().Equal(d1) {
		t.Errorf("FirstDate() = %s, want %s", h.FirstDate(), d1)
	}
	if !h.LastDate().Equal(d3) {
		t.Errorf("LastDate() = %s, want %s", h.LastDate(), d3)
	}
	if h.Size() != 3 {
		t.Errorf("Size() = %d, want 3", h.Size())
	}

	d2 := mustDate(t, 2005, time.January, 2)
	if !qlnull.IsRealNull(h.At(d2)) {
		t.Errorf("h[%s] = %v, want Null<double>()", d2, h.At(d2))
	}
	if v := h.At(d3); v != 2.0 {
		t.Errorf("h[%s] = %v, want 2.0", d3, v)
	}
	if v := h.At(d1); v != 1.0 {
		t.Errorf("h[%s] = %v, want 1.0", d1, v)
	}
}

func TestHistoryAtOutsideRangeIsNull(t *testing.T) {
	d1 := mustDate(t, 2005, time.January, 1)
	d2 := mustDate(t, 2005, time.January, 2)
	h, err := NewHistory(d1, d2, []qlnull.Real{1.0, 2.0})
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	before, _ := d1.AddDays(-1)
	after, _ := d2.AddDays(1)
	if !qlnull.IsRealNull(h.At(before)) {
		t.Error("expected Null<double>() before firstDate")
	}
	if !qlnull.IsRealNull(h.At(after)) {
		t.Error("expected Null<double>() after lastDate")
	}
}

func TestHistoryRejectsSizeMismatch(t *testing.T) {
	d1 := mustDate(t, 2005, time.January, 1)
	d3 := mustDate(t, 2005, time.January, 3)
	if _, err := NewHistory(d1, d3, []qlnull.Real{1.0}); err == nil {
		t.Fatal("expected an error for a values slice shorter than the date range")
	}
}

func TestHistoryFromDatesRejectsDuplicateWithDifferentValue(t *testing.T) {
	d1 := mustDate(t, 2005, time.January, 1)
	if _, err := NewHistoryFromDates([]qldate.Date{d1, d1}, []qlnull.Real{1.0, 2.0}); err == nil {
		t.Fatal("expected an error for a duplicated date with differing values")
	}
}

func TestHistoryValidValuesSkipsNulls(t *testing.T) {
	d1 := mustDate(t, 2005, time.January, 1)
	d3 := mustDate(t, 2005, time.January, 3)
	h, err := NewHistoryFromDates([]qldate.Date{d1, d3}, []qlnull.Real{1.0, 2.0})
	if err != nil {
		t.Fatalf("NewHistoryFromDates: %v", err)
	}
	dates, values := h.ValidValues()
	if len(dates) != 2 || len(values) != 2 {
		t.Fatalf("ValidValues() returned %d entries, want 2", len(dates))
	}
	if values[0] != 1.0 || values[1] != 2.0 {
		t.Errorf("ValidValues() = %v, want [1.0, 2.0]", values)
	}
}
