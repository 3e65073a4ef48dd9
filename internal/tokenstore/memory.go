package tokenstore

import (
	"fmt"
	"slices"
	"sync"
)

// MemoryBackend is an in-memory token backend for testing.
type MemoryBackend struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a new in-memory token backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]Entry),
	}
}

// Read returns a copy of the entry for userID.
func (b *MemoryBackend) Read(userID string) (*Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[userID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", userID, ErrNotFound)
	}
	return &entry, nil
}

// Write stores a copy of entry.
func (b *MemoryBackend) Write(entry *Entry) error {
	if entry.UserID == "" {
		return fmt.Errorf("writing tokens: empty user id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[entry.UserID] = *entry
	return nil
}

// Delete removes the entry for userID.
func (b *MemoryBackend) Delete(userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, userID)
	return nil
}

// List returns the stored user ids.
func (b *MemoryBackend) List() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.entries))
	for id := range b.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Seed adds entries directly (for testing).
func (b *MemoryBackend) Seed(entries ...Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, entry := range entries {
		b.entries[entry.UserID] = entry
	}
}
