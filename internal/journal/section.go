package journal

import "strings"

// Split decomposes an entry body into its committed sections and the live
// run. The live run is everything after the last timestamp marker, or the
// whole body when no marker exists. Runs with no text between two markers
// produce no section.
func Split(body string) ([]Section, Live) {
	var (
		committed []Section
		runTime   string
		runStart  int
	)

	closeRun := func(end int) {
		text := strings.TrimSpace(body[runStart:end])
		if text == "" {
			return
		}
		committed = append(committed, Section{Time: runTime, Text: text})
	}

	offset := 0
	for _, line := range strings.Split(body, "\n") {
		next := offset + len(line) + 1
		if ts, ok := parseMarker(line); ok {
			closeRun(offset)
			runTime = ts
			runStart = min(next, len(body))
		}
		offset = next
	}

	live := Live{Time: runTime, Text: strings.TrimSpace(body[runStart:])}
	if runStart == 0 {
		// No marker at all: the whole body is live.
		return nil, Live{Text: strings.TrimSpace(body)}
	}
	return committed, live
}

// Join is the inverse of Split: it reassembles a body from committed
// sections and the live run, re-emitting the live run's marker so the text
// splits back to the same shape.
func Join(committed []Section, live Live) string {
	var parts []string
	for _, section := range committed {
		parts = append(parts, formatRun(section.Time, section.Text))
	}
	if live.Time != "" || live.Text != "" {
		parts = append(parts, formatRun(live.Time, live.Text))
	}
	return strings.Join(parts, "\n\n")
}

// liveStart returns the byte offset where the live run begins: right after
// the newline of the last marker line, or 0 when the body has no marker.
func liveStart(body string) int {
	offset := 0
	start := 0
	for _, line := range strings.Split(body, "\n") {
		next := offset + len(line) + 1
		if _, ok := parseMarker(line); ok {
			start = min(next, len(body))
		}
		offset = next
	}
	return start
}

// replaceLive rewrites only the live run of a body, leaving every byte up to
// and including the last marker untouched.
func replaceLive(body, text string) string {
	start := liveStart(body)
	if start == 0 {
		return text
	}
	prefix := body[:start]
	if !strings.HasSuffix(prefix, "\n") {
		prefix += "\n"
	}
	return prefix + text
}

// appendStamped seals the current body as-is and appends text beneath a new
// timestamp marker.
func appendStamped(body, stamp, text string) string {
	existing := strings.TrimSpace(body)
	if existing == "" {
		return text
	}
	return existing + "\n\n*" + stamp + "*\n" + text
}

func formatRun(stamp, text string) string {
	if stamp == "" {
		return text
	}
	return "*" + stamp + "*\n" + text
}

// parseMarker matches a line that is exactly "*HH:MM*". The digits are not
// range-checked: the stamp is a label, never an ordering key.
func parseMarker(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if len(line) != 7 || line[0] != '*' || line[6] != '*' || line[3] != ':' {
		return "", false
	}
	for _, i := range []int{1, 2, 4, 5} {
		if line[i] < '0' || line[i] > '9' {
			return "", false
		}
	}
	return line[1:6], true
}
