package journal

import "errors"

// ErrEntryNotFound is returned when a month document holds no entry for the
// requested date.
var ErrEntryNotFound = errors.New("entry not found for date")
