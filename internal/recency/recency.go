// Package recency implements the "days since last activity" row filter used by the
// admin tables.
//
// A row carries a last-activity marker: either the sentinel Never or a DD/MM/YYYY date.
// While a threshold is set, a dated row is shown only when at least threshold days have
// elapsed between that date and now.
package recency

import (
	"math"
	"strconv"
	"strings"
	"time"

	"admin_dashboard/internal/datatable"
)

// Never marks a row whose activity was never recorded.
const Never = "Never"

// ShouldDisplay reports whether a row with the given marker passes the threshold at now.
func ShouldDisplay(marker, thresholdText string, now time.Time) bool {
	return decide(marker, Never, thresholdText, now)
}

func decide(marker, sentinel, thresholdText string, now time.Time) bool {
	threshold, ok := ParseThreshold(thresholdText)
	if !ok {
		return true
	}

	if marker == sentinel {
		return true
	}

	date, ok := ParseMarker(marker, now.Location())
	if !ok {
		return false
	}

	return ElapsedDays(date, now) >= float64(threshold)
}

// ParseThreshold parses the threshold field. ok is false when filtering is disabled.
func ParseThreshold(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseMarker parses a DD/MM/YYYY marker at midnight in loc.
// Out-of-range days and months are normalized by time.Date, so 31/13/2024 is 31 Jan 2025.
func ParseMarker(marker string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(marker, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		fields[i] = n
	}
	day, month, year := fields[0], fields[1], fields[2]

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

const millisPerDay = float64(24 * time.Hour / time.Millisecond)

// ElapsedDays is the absolute distance between two instants in fractional days.
// It works on Unix milliseconds since time.Duration saturates at about 292 years.
func ElapsedDays(from, to time.Time) float64 {
	return math.Abs(float64(to.UnixMilli()-from.UnixMilli())) / millisPerDay
}

// FormatMarker renders t as a marker, or Never when t is nil.
func FormatMarker(t *time.Time, loc *time.Location) string {
	if t == nil {
		return Never
	}
	return t.In(loc).Format("02/01/2006")
}

// ValueSource supplies the raw threshold text.
type ValueSource interface {
	Value() string
}

// Clock abstracts time.Now() so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Filter decides rows of one table. Column is the position of the marker cell.
type Filter struct {
	Column    int
	Sentinel  string
	Threshold ValueSource
	Clock     Clock
}

// Predicate returns a row predicate that reads the threshold and the clock on every call.
// The cell is compared as stored, like ShouldDisplay. A row too short to hold the marker
// is treated as malformed.
func (f Filter) Predicate() datatable.RowPredicate {
	sentinel := f.Sentinel
	if sentinel == "" {
		sentinel = Never
	}
	clock := f.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return func(row datatable.Row) bool {
		var marker string
		if f.Column >= 0 && f.Column < len(row) {
			marker = row[f.Column]
		}
		var text string
		if f.Threshold != nil {
			text = f.Threshold.Value()
		}
		return decide(marker, sentinel, text, clock.Now())
	}
}

// RowRegistry is the part of a table the filter plugs into.
type RowRegistry interface {
	RegisterRowPredicate(p datatable.RowPredicate)
	Redraw() []datatable.Row
}

// ChangeSource is a threshold field that announces edits.
type ChangeSource interface {
	ValueSource
	OnChange(fn func(value string))
}

// Bind registers the filter on table, reading its threshold from input, and redraws
// the table whenever input changes.
func Bind(table RowRegistry, input ChangeSource, f Filter) {
	f.Threshold = input
	table.RegisterRowPredicate(f.Predicate())
	input.OnChange(func(string) {
		table.Redraw()
	})
}
