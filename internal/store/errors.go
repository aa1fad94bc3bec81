package store

import "errors"

// ErrNotFound is returned by Read when the document does not exist yet.
var ErrNotFound = errors.New("document not found")

// ErrWriteRejected is returned by Write when the backend refused the update.
var ErrWriteRejected = errors.New("write rejected by store")
