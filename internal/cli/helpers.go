package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/evensen/daybook/internal/journal"
)

func resolveDate(dateFlag string) (time.Time, error) {
	if dateFlag == "" {
		return journal.DateOnly(time.Now().In(time.Local)), nil
	}

	parsed, err := time.ParseInLocation("2006-01-02", dateFlag, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return parsed, nil
}

// formatEntryMarkdown prints an entry the way it sits in the month file.
func formatEntryMarkdown(entry journal.Entry) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(entry.Date.Format("2006-01-02"))
	if entry.Title != "" {
		b.WriteString(" - ")
		b.WriteString(entry.Title)
	}
	b.WriteString("\n")
	if entry.Body != "" {
		b.WriteString(entry.Body)
		b.WriteString("\n")
	}
	return b.String()
}
