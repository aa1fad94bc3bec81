package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evensen/daybook/internal/logger"
	"github.com/evensen/daybook/internal/store"
)

// SaveMode reports which branch of the merge policy a save took; the UI uses
// it to pick the indicator message.
type SaveMode int

const (
	// SaveSkipped means the live text was empty and nothing was written.
	SaveSkipped SaveMode = iota
	// SaveReplaced means the live run was overwritten in place.
	SaveReplaced
	// SaveNewSession means the text was appended as a fresh timestamped
	// section because the previous session was committed.
	SaveNewSession
	// SaveMergedExternal means another writer changed the document since the
	// baseline was taken, so the text was appended rather than overwriting
	// their work.
	SaveMergedExternal
)

// Message returns the save-indicator text for the mode.
func (m SaveMode) Message() string {
	switch m {
	case SaveMergedExternal:
		return "Saved (merged with external changes)"
	case SaveNewSession:
		return "Saved (new session started)"
	case SaveReplaced:
		return "Saved"
	default:
		return ""
	}
}

// SaveRequest is one attempt to persist today's entry.
type SaveRequest struct {
	Date        time.Time
	Baseline    Baseline
	Title       string
	Text        string
	ForceAppend bool // session was committed; stamp the text as a new section
}

// SaveResult carries the outcome of a successful save: the refreshed
// baseline and the entry's sections as the store now holds them.
type SaveResult struct {
	Mode      SaveMode
	Baseline  Baseline
	Committed []Section
	Live      Live
}

// LoadResult is a freshly read entry, split for display.
type LoadResult struct {
	Baseline  Baseline
	Title     string
	Committed []Section
	Live      Live
}

// Merger is the single writer of journal entries. It reconciles local edits
// against the possibly-changed remote document: same-session edits rewrite
// the live run, anything else appends.
type Merger struct {
	store store.DocumentStore
	log   logger.Logger
	now   func() time.Time
}

// NewMerger wires a merge engine over the given store.
func NewMerger(st store.DocumentStore, log logger.Logger) *Merger {
	if log == nil {
		log = logger.Nop()
	}
	return &Merger{store: st, log: log, now: time.Now}
}

// Load reads the month document for date and returns its entry split into
// committed sections and live text. A missing document or entry yields an
// empty result with the document's current version token.
func (m *Merger) Load(ctx context.Context, date time.Time) (LoadResult, error) {
	name := MonthFilename(date)
	doc, err := m.store.Read(ctx, name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return LoadResult{}, err
	}

	entry, ok := ParseDay(doc.Content, date)
	if !ok {
		return LoadResult{Baseline: Baseline{Version: doc.Version}}, nil
	}

	committed, live := Split(entry.Body)
	return LoadResult{
		Baseline:  Baseline{Content: entry.Body, Version: doc.Version},
		Title:     entry.Title,
		Committed: committed,
		Live:      live,
	}, nil
}

// Save persists the live text for the requested date. The decision order is
// fixed: empty text is a no-op; a version token mismatch means someone else
// wrote since the baseline, so the text is appended as a stamped section;
// the same happens when the caller's session was committed; otherwise the
// live run is rewritten in place.
func (m *Merger) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return SaveResult{Mode: SaveSkipped, Baseline: req.Baseline}, nil
	}

	name := MonthFilename(req.Date)
	doc, err := m.store.Read(ctx, name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return SaveResult{}, fmt.Errorf("load %s: %w", name, err)
		}
		doc = store.Document{}
	}

	external := req.Baseline.Version != "" && doc.Version != "" &&
		doc.Version != req.Baseline.Version

	var body string
	entry, _ := ParseDay(doc.Content, req.Date)

	mode := SaveReplaced
	switch {
	case external:
		mode = SaveMergedExternal
		body = appendStamped(entry.Body, m.now().Format("15:04"), text)
	case req.ForceAppend:
		mode = SaveNewSession
		body = appendStamped(entry.Body, m.now().Format("15:04"), text)
	default:
		body = replaceLive(entry.Body, text)
	}

	updated := UpdateEntry(doc.Content, req.Date, req.Title, body)
	if err := m.store.Write(ctx, name, updated); err != nil {
		return SaveResult{}, err
	}

	m.log.Debug("entry saved",
		logger.String("file", name),
		logger.String("date", req.Date.Format("2006-01-02")),
		logger.Int("mode", int(mode)),
	)

	// Re-read so the next save compares against our own write instead of
	// mistaking it for an external change.
	fresh, err := m.store.Read(ctx, name)
	if err != nil {
		m.log.Warn("reload after save failed", logger.String("file", name), logger.Error(err))
		committed, live := Split(body)
		return SaveResult{
			Mode:      mode,
			Baseline:  Baseline{Content: body},
			Committed: committed,
			Live:      live,
		}, nil
	}

	newEntry, _ := ParseDay(fresh.Content, req.Date)
	committed, live := Split(newEntry.Body)
	return SaveResult{
		Mode:      mode,
		Baseline:  Baseline{Content: newEntry.Body, Version: fresh.Version},
		Committed: committed,
		Live:      live,
	}, nil
}
