package l1frames

import (
	"fmt"
)

// Source loads a raw frame stack and its header from a path.
type Source interface {
	Load(path string) (*Stack, *Header, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(path string) (*Stack, *Header, error)

// Load calls f(path).
func (f SourceFunc) Load(path string) (*Stack, *Header, error) {
	return f(path)
}

// MemorySource serves stacks held in memory, keyed by path. Loaded values
// are deep copies so callers can never mutate the stored originals.
type MemorySource struct {
	entries map[string]memoryEntry
}

type memoryEntry struct {
	stack  *Stack
	header *Header
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{entries: make(map[string]memoryEntry)}
}

// Add registers a stack and header under path.
func (m *MemorySource) Add(path string, s *Stack, h *Header) {
	m.entries[path] = memoryEntry{stack: s.Clone(), header: h.Clone()}
}

// Load implements Source.
func (m *MemorySource) Load(path string) (*Stack, *Header, error) {
	e, ok := m.entries[path]
	if !ok {
		return nil, nil, fmt.Errorf("no frame stack registered for %q", path)
	}
	return e.stack.Clone(), e.header.Clone(), nil
}
