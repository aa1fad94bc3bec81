package journal

import (
	"strings"
	"time"
)

const headingPrefix = "## "

// ParseMonth scans a month document and returns its entries in document
// order. Headings with an unparseable date are skipped, but their body lines
// are still consumed so they cannot bleed into a neighbouring entry.
func ParseMonth(text string) []Entry {
	lines := splitLines(text)

	var (
		entries []Entry
		current *Entry
		body    []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		entries = append(entries, *current)
		current = nil
		body = nil
	}

	for _, line := range lines {
		if !strings.HasPrefix(line, headingPrefix) {
			if current != nil {
				body = append(body, line)
			}
			continue
		}

		flush()
		if date, title, ok := parseHeading(line); ok {
			current = &Entry{Date: date, Title: title}
		}
		// A malformed heading leaves current nil; following lines are
		// consumed until the next heading.
	}
	flush()

	return entries
}

// ParseDay returns the single entry for date, if the document contains one.
func ParseDay(text string, date time.Time) (Entry, bool) {
	for _, entry := range ParseMonth(text) {
		if SameDay(entry.Date, date) {
			return entry, true
		}
	}
	return Entry{}, false
}

// UpdateEntry rewrites the document so the entry for date carries the given
// title and body. An existing entry is replaced in place, heading included;
// otherwise a new entry is inserted at the top of the document, newest first.
// Repeated application with the same arguments is byte-stable.
func UpdateEntry(text string, date time.Time, title, body string) string {
	lines := splitLines(text)
	bodyLines := strings.Split(body, "\n")
	heading := formatHeading(date, title)

	start := -1
	for i, line := range lines {
		if d, _, ok := parseHeading(line); ok && SameDay(d, date) {
			start = i
			break
		}
	}

	if start == -1 {
		if len(lines) == 0 {
			return joinDocument(append([]string{heading}, bodyLines...))
		}
		updated := make([]string, 0, len(lines)+len(bodyLines)+2)
		updated = append(updated, heading)
		updated = append(updated, bodyLines...)
		updated = append(updated, "")
		updated = append(updated, lines...)
		return joinDocument(updated)
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], headingPrefix) {
			end = i
			break
		}
	}

	updated := make([]string, 0, len(lines)+len(bodyLines)+2)
	updated = append(updated, lines[:start]...)
	updated = append(updated, heading)
	updated = append(updated, bodyLines...)
	if end < len(lines) {
		// Keep one blank separator before the next entry.
		updated = append(updated, "")
	}
	updated = append(updated, lines[end:]...)
	return joinDocument(updated)
}

// parseHeading decodes a "## YYYY-MM-DD[ - title]" line. The bool result is
// false when the line is a heading with a malformed date.
func parseHeading(line string) (time.Time, string, bool) {
	if !strings.HasPrefix(line, headingPrefix) {
		return time.Time{}, "", false
	}
	rest := line[len(headingPrefix):]
	if len(rest) < 10 {
		return time.Time{}, "", false
	}

	date, err := time.ParseInLocation("2006-01-02", rest[:10], time.Local)
	if err != nil {
		return time.Time{}, "", false
	}

	title := strings.TrimSpace(rest[10:])
	title = strings.TrimSpace(strings.TrimPrefix(title, "-"))
	return date, title, true
}

func formatHeading(date time.Time, title string) string {
	heading := headingPrefix + date.Format("2006-01-02")
	if title != "" {
		heading += " - " + title
	}
	return heading
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	// Drop the empty element a trailing newline produces.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func joinDocument(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
