package dataset

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/keatontom/salesforce-opportunity-analysis/internal/errors"

	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"
)

// DateRange selects opportunities by created date.
type DateRange string

const (
	RangeAll         DateRange = "all"
	RangeYTD         DateRange = "ytd"
	RangeLastYear    DateRange = "last_year"
	RangeLastQuarter DateRange = "last_quarter"
	RangeLast30      DateRange = "last_30"
	RangeLast90      DateRange = "last_90"
	RangeQ1          DateRange = "q1"
	RangeQ2          DateRange = "q2"
	RangeQ3          DateRange = "q3"
	RangeQ4          DateRange = "q4"
)

// DateRanges lists every accepted selector.
var DateRanges = []DateRange{
	RangeAll, RangeYTD, RangeLastYear, RangeLastQuarter,
	RangeLast30, RangeLast90, RangeQ1, RangeQ2, RangeQ3, RangeQ4,
}

// ParseDateRange validates a selector; blank means all.
func ParseDateRange(s string) (DateRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, nil
	}
	for _, r := range DateRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unknown date range %q", s))
}

// Window is a half-open [Start, End) interval. A zero End is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || t.Before(w.End)
}

// Window resolves the selector against now. ok is false for RangeAll.
func (r DateRange) Window(now time.Time) (Window, bool) {
	loc := now.Location()
	year := now.Year()
	startOfDay := time.Date(year, now.Month(), now.Day(), 0, 0, 0, 0, loc)
	quarter := func(y, q int) Window {
		start := time.Date(y, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 3, 0)}
	}

	switch r {
	case RangeYTD:
		return Window{Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc)}, true
	case RangeLastYear:
		return Window{
			Start: time.Date(year-1, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		}, true
	case RangeLastQuarter:
		q := (int(now.Month())-1)/3 + 1
		if q == 1 {
			return quarter(year-1, 4), true
		}
		return quarter(year, q-1), true
	case RangeLast30:
		return Window{Start: startOfDay.AddDate(0, 0, -30)}, true
	case RangeLast90:
		return Window{Start: startOfDay.AddDate(0, 0, -90)}, true
	case RangeQ1:
		return quarter(year, 1), true
	case RangeQ2:
		return quarter(year, 2), true
	case RangeQ3:
		return quarter(year, 3), true
	case RangeQ4:
		return quarter(year, 4), true
	}
	return Window{}, false
}

// Filter returns a dataset restricted to the range. Rows without a created
// date are dropped by every range except all.
func (d *Dataset) Filter(r DateRange) (*Dataset, []Diagnostic) {
	w, ok := r.Window(d.Now)
	if !ok {
		return d, nil
	}
	kept := make([]*opportunity.Opportunity, 0, len(d.Opportunities))
	for _, o := range d.Opportunities {
		if !o.CreatedDate.IsZero() && w.Contains(o.CreatedDate) {
			kept = append(kept, o)
		}
	}
	return &Dataset{Opportunities: kept, Now: d.Now}, []Diagnostic{dateRangeApplied(string(r), len(kept), len(d.Opportunities))}
}
