package store

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// Local is a DocumentStore on the local filesystem, backed by diskv. Because
// diskv has no change tokens, the version is an md5 digest of the stored
// bytes: it changes whenever the content does, which is all the merge layer
// compares.
type Local struct {
	d *diskv.Diskv
}

// NewLocal opens (creating if needed) a flat diskv tree rooted at basePath.
func NewLocal(basePath string) (*Local, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	return &Local{d: diskv.New(diskv.Options{
		BasePath:     abs,
		Transform:    func(string) []string { return nil },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

func (l *Local) Read(_ context.Context, name string) (Document, error) {
	data, err := l.d.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("read %s: %w", name, ErrNotFound)
		}
		return Document{}, fmt.Errorf("read %s: %w", name, err)
	}
	return Document{Content: string(data), Version: digest(data)}, nil
}

func (l *Local) Write(_ context.Context, name string, content string) error {
	if err := l.d.Write(name, []byte(content)); err != nil {
		return fmt.Errorf("write %s: %w: %v", name, ErrWriteRejected, err)
	}
	return nil
}

func digest(data []byte) string {
	sum := md5.Sum(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
