package similarity

import (
	"math"
	"strings"
	"time"
)

const (
	// NeutralDateScore is returned when either date is missing
	NeutralDateScore = 0.3
	// NeutralDurationScore is returned when a span cannot be measured
	NeutralDurationScore = 0.35
	// smoothHorizonMonths is the gap at which SmoothDateCloseness reaches zero
	smoothHorizonMonths = 24.0

	isoDate = "2006-01-02"
)

// dateLayouts are tried in order by NormalizeDate
var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01",
	"2006-1",
	"2006/01",
	"01/2006",
	"1/2006",
	"01/02/2006",
	"1/2/2006",
	"Jan 2006",
	"January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2006",
}

var openEndedWords = map[string]bool{
	"present": true,
	"current": true,
	"now":     true,
	"today":   true,
	"ongoing": true,
}

// NormalizeDate converts year-only, year-month or full dates into YYYY-MM-DD.
// Missing days default to the 1st. Unparseable, absent or open-ended values return nil.
func NormalizeDate(value string) *string {
	t, ok := parseLoose(value)
	if !ok {
		return nil
	}
	s := t.Format(isoDate)
	return &s
}

// NormalizeDatePtr is NormalizeDate for optional values
func NormalizeDatePtr(value *string) *string {
	if value == nil {
		return nil
	}
	return NormalizeDate(*value)
}

func parseLoose(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" || openEndedWords[strings.ToLower(v)] {
		return time.Time{}, false
	}
	if t, ok := tryLayouts(v); ok {
		return t, true
	}

	v = strings.NewReplacer(",", " ", ".", " ").Replace(v)
	v = strings.Join(strings.Fields(v), " ")
	if strings.HasPrefix(strings.ToLower(v), "sept ") {
		v = "Sep " + v[5:]
	}
	return tryLayouts(v)
}

func tryLayouts(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		if t.Year() < 1900 || t.Year() > 2200 {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// parseISO parses a value produced by NormalizeDate, tolerating coarse forms
func parseISO(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	return parseLoose(*value)
}

// MonthsBetween returns the absolute month gap between two dates
func MonthsBetween(a, b *string) (int, bool) {
	ta, okA := parseISO(a)
	tb, okB := parseISO(b)
	if !okA || !okB {
		return 0, false
	}
	return absInt(monthIndex(ta) - monthIndex(tb)), true
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// DateCloseness scores a single date comparison on a step curve
func DateCloseness(a, b *string) float64 {
	gap, ok := MonthsBetween(a, b)
	if !ok {
		return NeutralDateScore
	}
	switch {
	case gap == 0:
		return 1.0
	case gap <= 1:
		return 0.95
	case gap <= 3:
		return 0.8
	case gap <= 6:
		return 0.5
	default:
		return 0.1
	}
}

// SmoothDateCloseness decays linearly to zero over two years
func SmoothDateCloseness(a, b *string) float64 {
	gap, ok := MonthsBetween(a, b)
	if !ok {
		return NeutralDateScore
	}
	return math.Max(0, 1-float64(gap)/smoothHorizonMonths)
}

// MonthSpan returns the length of a range in months. A nil end means the range is open and ends at now.
func MonthSpan(start, end *string, now time.Time) (int, bool) {
	ts, ok := parseISO(start)
	if !ok {
		return 0, false
	}
	te := now
	if end != nil {
		if te, ok = parseISO(end); !ok {
			return 0, false
		}
	}
	span := monthIndex(te) - monthIndex(ts)
	if span < 0 {
		return 0, false
	}
	return span, true
}

// DurationCloseness compares the month spans of two ranges
func DurationCloseness(aStart, aEnd, bStart, bEnd *string, now time.Time) float64 {
	spanA, okA := MonthSpan(aStart, aEnd, now)
	spanB, okB := MonthSpan(bStart, bEnd, now)
	if !okA || !okB {
		return NeutralDurationScore
	}
	return math.Max(0, 1-float64(absInt(spanA-spanB))/smoothHorizonMonths)
}

// YearsSince returns the fractional years between a date and now, or false if unparseable
func YearsSince(date *string, now time.Time) (float64, bool) {
	t, ok := parseISO(date)
	if !ok {
		return 0, false
	}
	months := monthIndex(now) - monthIndex(t)
	if months < 0 {
		months = 0
	}
	return float64(months) / 12.0, true
}
