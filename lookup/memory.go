package lookup

import (
	"context"
	"sync"

	"github.com/hupe1980/vecquery/metadata"
)

// MemoryStore is an in-memory Store implementation for testing and for
// embedders that keep lookup documents next to the engine.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu      sync.RWMutex
	indices map[string]map[string]metadata.Document
}

// NewMemoryStore creates a new in-memory lookup store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		indices: make(map[string]map[string]metadata.Document),
	}
}

// Put stores a lookup document under (index, id).
func (m *MemoryStore) Put(index, id string, doc metadata.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.indices[index]
	if !ok {
		docs = make(map[string]metadata.Document)
		m.indices[index] = docs
	}
	// Clone to prevent external mutation after Put.
	docs[id] = doc.Clone()
}

// Delete removes a lookup document.
func (m *MemoryStore) Delete(index, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if docs, ok := m.indices[index]; ok {
		delete(docs, id)
	}
}

// Get returns the stored fields of document id in the named index.
func (m *MemoryStore) Get(_ context.Context, index, id string) (metadata.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.indices[index]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}
