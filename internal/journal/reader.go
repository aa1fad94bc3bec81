package journal

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evensen/daybook/internal/store"
)

// Reader loads entries for display. It never writes; month fetches are
// independent and may run in parallel.
type Reader struct {
	store store.DocumentStore
}

// NewReader wires a read-only view over the document store.
func NewReader(st store.DocumentStore) *Reader {
	return &Reader{store: st}
}

// Day returns the entry for a single date, or ErrEntryNotFound.
func (r *Reader) Day(ctx context.Context, date time.Time) (Entry, error) {
	doc, err := r.store.Read(ctx, MonthFilename(date))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}

	entry, ok := ParseDay(doc.Content, date)
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return entry, nil
}

// Months fetches the documents for count months ending at the month of
// until, newest first. Missing months are skipped. Fetches run concurrently;
// entries within one month keep document order, months are ordered newest
// first, and the slice of all entries is sorted newest date first across
// months.
func (r *Reader) Months(ctx context.Context, until time.Time, count int) ([]Entry, error) {
	if count <= 0 {
		return nil, nil
	}

	// Anchor on the first of the month so stepping back from a day like
	// March 31 cannot normalize past February.
	first := time.Date(until.Year(), until.Month(), 1, 0, 0, 0, 0, until.Location())

	perMonth := make([][]Entry, count)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		target := first.AddDate(0, -i, 0)
		g.Go(func() error {
			doc, err := r.store.Read(gctx, MonthFilename(target))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil
				}
				return err
			}
			perMonth[i] = ParseMonth(doc.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Entry
	for _, entries := range perMonth {
		all = append(all, entries...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	return all, nil
}
