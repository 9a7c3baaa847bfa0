package qldate

import (
	"testing"
	"time"
)

func TestSerialRoundTrip(t *testing.T) {
	d, err := New(2005, time.January, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := FromSerial(d.Serial())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(back) {
		t.Fatalf("round trip changed the date: %s vs %s", d, back)
	}
	if d.Year() != 2005 || d.Month() != time.January || d.Day() != 3 {
		t.Fatalf("decomposition = %d-%v-%d, want 2005-January-3", d.Year(), d.Month(), d.Day())
	}
}

func TestRangeBounds(t *testing.T) {
	first, err := New(1901, time.January, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Serial() != MinSerial {
		t.Fatalf("1901-01-01 serial = %d, want %d", first.Serial(), MinSerial)
	}
	last, err := New(2199, time.December, 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.Serial() != MaxSerial {
		t.Fatalf("2199-12-31 serial = %d, want %d", last.Serial(), MaxSerial)
	}
	if _, err := New(2200, time.January, 1); err == nil {
		t.Fatalf("expected an error past the maximum date")
	}
	if _, err := FromSerial(0); err == nil {
		t.Fatalf("expected an error below the minimum serial")
	}
}

func TestDayAlgebra(t *testing.T) {
	d, _ := New(2020, time.February, 28)
	next, err := d.AddDays(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Day() != 29 {
		t.Fatalf("2020-02-28 + 1 day = %s, want the leap day", next)
	}
	week, _ := d.AddWeeks(1)
	if DaysBetween(d, week) != 7 {
		t.Fatalf("AddWeeks(1) moved %d days, want 7", DaysBetween(d, week))
	}
}

func TestMonthEndClamping(t *testing.T) {
	d, _ := New(2021, time.January, 31)
	m, err := d.AddMonths(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Month() != time.February || m.Day() != 28 {
		t.Fatalf("2021-01-31 + 1 month = %s, want clamping to 2021-02-28", m)
	}
	y, err := d.AddYears(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y.Year() != 2022 {
		t.Fatalf("AddYears(1) year = %d, want 2022", y.Year())
	}
}

func TestYearFractionAct365F(t *testing.T) {
	from, _ := New(2020, time.January, 1)
	to, _ := New(2021, time.January, 1)
	yf := YearFractionAct365F(from, to)
	want := 366.0 / 365.0 // 2020 is a leap year
	if yf != want {
		t.Fatalf("YearFractionAct365F = %v, want %v", yf, want)
	}
}

func TestComparisons(t *testing.T) {
	a, _ := New(2010, time.June, 1)
	b, _ := New(2010, time.June, 2)
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Fatalf("ordering broken for %s vs %s", a, b)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("Compare inconsistent for %s vs %s", a, b)
	}
	var null Date
	if !null.IsNull() {
		t.Fatalf("zero-value Date should be null")
	}
}
