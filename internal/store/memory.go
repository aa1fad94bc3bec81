package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process DocumentStore. It backs tests and gives external
// writers (other goroutines) a way to simulate concurrent edits: every write
// bumps a per-document revision counter that serves as the version token.
type Memory struct {
	mu   sync.Mutex
	docs map[string]Document
	revs map[string]int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]Document),
		revs: make(map[string]int),
	}
}

func (m *Memory) Read(_ context.Context, name string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[name]
	if !ok {
		return Document{}, fmt.Errorf("read %s: %w", name, ErrNotFound)
	}
	return doc, nil
}

func (m *Memory) Write(_ context.Context, name string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revs[name]++
	m.docs[name] = Document{
		Content: content,
		Version: fmt.Sprintf("v%d", m.revs[name]),
	}
	return nil
}
