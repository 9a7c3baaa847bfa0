// Package qldate provides calendar-independent date arithmetic over an
// integer serial-number representation: a Date is a serial number with
// algebra over day/week/month/year units.
//
// Concrete day counters and calendars are left to the caller: this package
// supplies only the serial-number algebra and a single built-in ACT/365F
// year-fraction convention, the one the term-structure adapter formulas in
// pkg/termstructure are stated against.
package qldate

import (
	"fmt"
	"time"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
)

// epoch is the Go time.Time corresponding to serial number 1 (1901-01-01),
// matching QuantLib's serial-number convention.
var epoch = time.Date(1901, time.January, 1, 0, 0, 0, 0, time.UTC)

// MinSerial and MaxSerial bound the valid Date range; every Date's serial
// number stays within [MinSerial, MaxSerial].
const (
	MinSerial = 1
	MaxSerial = 109208 // 2199-12-31
)

// Date is an immutable integer serial number with calendar-day algebra;
// the Add-family methods return new Dates.
type Date struct {
	serial int
}

// New constructs a Date from year/month/day, validating against the valid
// serial range.
func New(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Duration caps at ~292 years, short of the 299-year valid range,
	// so the day count is taken over Unix seconds instead of t.Sub(epoch).
	serial := int((t.Unix()-epoch.Unix())/86400) + MinSerial
	if serial < MinSerial || serial > MaxSerial {
		return Date{}, qlerrors.NewIllegalArgument("date %04d-%02d-%02d out of range [%d,%d]", year, month, day, MinSerial, MaxSerial)
	}
	return Date{serial: serial}, nil
}

// FromSerial constructs a Date directly from a serial number, validating the
// range invariant.
func FromSerial(serial int) (Date, error) {
	if serial < MinSerial || serial > MaxSerial {
		return Date{}, qlerrors.NewIllegalArgument("serial number %d out of range [%d,%d]", serial, MinSerial, MaxSerial)
	}
	return Date{serial: serial}, nil
}

// Serial returns the underlying serial number.
func (d Date) Serial() int { return d.serial }

// IsNull reports whether d is the zero-value Date (uninitialized).
func (d Date) IsNull() bool { return d.serial == 0 }

// Time returns the Go time.Time corresponding to d, at midnight UTC.
func (d Date) Time() time.Time {
	return epoch.AddDate(0, 0, d.serial-MinSerial)
}

// Year, Month, Day decompose the date.
func (d Date) Year() int         { return d.Time().Year() }
func (d Date) Month() time.Month { return d.Time().Month() }
func (d Date) Day() int          { return d.Time().Day() }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// AddDays returns d shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) (Date, error) {
	return FromSerial(d.serial + n)
}

// AddWeeks returns d shifted by n weeks.
func (d Date) AddWeeks(n int) (Date, error) {
	return d.AddDays(7 * n)
}

// AddMonths returns d shifted by n months, preserving day-of-month where the
// target month has enough days (else clamped to the target month's last day,
// matching standard calendar-roll semantics).
func (d Date) AddMonths(n int) (Date, error) {
	t := d.Time()
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return New(firstOfTarget.Year(), firstOfTarget.Month(), day)
}

// AddYears returns d shifted by n years.
func (d Date) AddYears(n int) (Date, error) {
	return d.AddMonths(12 * n)
}

// Before reports whether d occurs strictly before other.
func (d Date) Before(other Date) bool { return d.serial < other.serial }

// After reports whether d occurs strictly after other.
func (d Date) After(other Date) bool { return d.serial > other.serial }

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool { return d.serial == other.serial }

// Compare returns -1, 0, or 1 as d is before, equal to, or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.serial < other.serial:
		return -1
	case d.serial > other.serial:
		return 1
	default:
		return 0
	}
}

// DaysBetween returns to.Serial() - from.Serial(), the signed day count.
func DaysBetween(from, to Date) int {
	return to.serial - from.serial
}

// YearFractionAct365F returns the ACT/365 Fixed year fraction between from
// and to, the single built-in day-count convention this package supplies.
func YearFractionAct365F(from, to Date) float64 {
	return float64(DaysBetween(from, to)) / 365.0
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsNull() {
		return "null-date"
	}
	t := d.Time()
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}
