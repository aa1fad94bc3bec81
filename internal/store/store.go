// Package store abstracts where month documents live. The journal core only
// depends on the DocumentStore interface; which backend is active is a
// configuration concern.
package store

import "context"

// Document is one month file as the store last saw it. Version is an opaque
// change token (an ETag for WebDAV, a content digest locally); callers only
// ever compare it for equality.
type Document struct {
	Content string
	Version string
}

// DocumentStore reads and writes whole documents by name with last-write-wins
// semantics. Write offers no conditional update; concurrent edits are
// reconciled above this interface.
type DocumentStore interface {
	Read(ctx context.Context, name string) (Document, error)
	Write(ctx context.Context, name string, content string) error
}
