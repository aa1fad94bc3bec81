package journal

import (
	"fmt"
	"time"
)

// Entry is one calendar day's record inside a month document.
type Entry struct {
	Date  time.Time
	Title string
	Body  string
}

// Section is a contiguous chunk of an entry body. A non-empty Time means the
// section was sealed by an earlier session (or another device) and is no
// longer editable.
type Section struct {
	Time string // "HH:MM" label, empty for the untimestamped leading run
	Text string
}

// Live is the trailing, editable run of an entry body. Time carries the
// marker that opened the current session, if any; it stays in the document
// when the live text is rewritten.
type Live struct {
	Time string
	Text string
}

// Baseline is the snapshot remembered from the last successful load of
// today's entry. Version is the store's opaque change token; it is only ever
// compared for equality.
type Baseline struct {
	Content string
	Version string
}

// MonthFilename returns the canonical document name for the month of t.
func MonthFilename(t time.Time) string {
	return fmt.Sprintf("%04d-%02d.md", t.Year(), t.Month())
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
