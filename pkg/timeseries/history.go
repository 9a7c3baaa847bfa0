// Package timeseries implements a date-indexed historical-data container: a
// generic repository for a set of historical data, indexed by date, with
// gaps between observations filled by qlnull's sentinel unset value.
// Storage is a plain array over the contiguous date range; callers walk it
// with index arithmetic rather than an iterator family.
package timeseries

import (
	"sort"

	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qldate"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlerrors"
	"github.com/johnayoung/go-quant-pricing-kernel/pkg/qlnull"
)

// History holds one value per calendar day between firstDate and lastDate
// inclusive; days present in the input are populated, every other day in
// the range is qlnull.RealNull().
type History struct {
	firstDate, lastDate qldate.Date
	values              []qlnull.Real
}

// NewHistory builds a History directly from a contiguous values slice
// spanning [firstDate, lastDate] inclusive, with no gaps: len(values) must
// equal the day count between them.
func NewHistory(firstDate, lastDate qldate.Date, values []qlnull.Real) (*History, error) {
	if lastDate.Before(firstDate) {
		return nil, qlerrors.NewIllegalArgument("timeseries: invalid date range for history, lastDate %s before firstDate %s", lastDate, firstDate)
	}
	wantSize := qldate.DaysBetween(firstDate, lastDate) + 1
	if len(values) != wantSize {
		return nil, qlerrors.NewIllegalArgument("timeseries: history size %d incompatible with date range [%s,%s] (want %d)", len(values), firstDate, lastDate, wantSize)
	}
	out := make([]qlnull.Real, len(values))
	copy(out, values)
	return &History{firstDate: firstDate, lastDate: lastDate, values: out}, nil
}

// NewHistoryFromDates builds a History from parallel (possibly sparse,
// must-be-sorted) dates/values slices, filling any gap between consecutive
// dates with qlnull.RealNull(): dates=[2005-01-01,2005-01-03],
// values=[1.0,2.0] yields firstDate=2005-01-01, lastDate=2005-01-03,
// size=3, with the 2005-01-02 entry null.
//
// A duplicated date is allowed only when it repeats the same value; dates
// must be sorted ascending.
func NewHistoryFromDates(dates []qldate.Date, values []qlnull.Real) (*History, error) {
	if len(dates) != len(values) {
		return nil, qlerrors.NewIllegalArgument("timeseries: different size for date (%d) and value (%d) slices", len(dates), len(values))
	}
	if len(dates) == 0 {
		return nil, qlerrors.NewIllegalArgument("timeseries: null history given")
	}
	if !sort.SliceIsSorted(dates, func(i, j int) bool { return dates[i].Before(dates[j]) }) {
		return nil, qlerrors.NewIllegalArgument("timeseries: dates must be sorted ascending")
	}

	first := dates[0]
	last := dates[0]
	lastValue := values[0]
	out := []qlnull.Real{lastValue}

	for i := 1; i < len(dates); i++ {
		d, v := dates[i], values[i]
		if d.Before(last) {
			return nil, qlerrors.NewIllegalArgument("timeseries: unsorted date after %s", last)
		}
		if d.Equal(last) {
			if v != lastValue {
				return nil, qlerrors.NewIllegalArgument("timeseries: different values in history for %s", last)
			}
			continue
		}
		for qldate.DaysBetween(last, d) > 1 {
			next, err := last.AddDays(1)
			if err != nil {
				return nil, err
			}
			last = next
			out = append(out, qlnull.RealNull())
		}
		last = d
		lastValue = v
		out = append(out, v)
	}

	return &History{firstDate: first, lastDate: last, values: out}, nil
}

// FirstDate returns the first date for which a historical datum exists.
func (h *History) FirstDate() qldate.Date { return h.firstDate }

// LastDate returns the last date for which a historical datum exists.
func (h *History) LastDate() qldate.Date { return h.lastDate }

// Size returns the number of historical data points, including null ones.
func (h *History) Size() int { return len(h.values) }

// At returns the (possibly null) datum at date d, or qlnull.RealNull() if d
// falls outside [FirstDate(), LastDate()].
func (h *History) At(d qldate.Date) qlnull.Real {
	if d.Before(h.firstDate) || d.After(h.lastDate) {
		return qlnull.RealNull()
	}
	return h.values[qldate.DaysBetween(h.firstDate, d)]
}

// Values returns a copy of the full (including null) data series, ordered
// from FirstDate() to LastDate().
func (h *History) Values() []qlnull.Real {
	out := make([]qlnull.Real, len(h.values))
	copy(out, h.values)
	return out
}

// ValidValues returns the (date, value) pairs skipping every null entry,
// the array-backed substitute for the source's const_valid_iterator.
func (h *History) ValidValues() (dates []qldate.Date, values []qlnull.Real) {
	for i, v := range h.values {
		if qlnull.IsRealNull(v) {
			continue
		}
		d, _ := h.firstDate.AddDays(i)
		dates = append(dates, d)
		values = append(values, v)
	}
	return dates, values
}
