package adapters

import (
	"sync"

	"wikijobs/internal/logging/types"
)

// MemoryAdapter keeps the most recent entries in a ring buffer. It backs the
// recent warnings shown on the status endpoint and log assertions in tests.
type MemoryAdapter struct {
	name     string
	capacity int
	entries  []types.LogEntry
	next     int
	full     bool
	mu       sync.RWMutex
}

// NewMemoryAdapter creates an adapter holding at most capacity entries
func NewMemoryAdapter(name string, capacity int) *MemoryAdapter {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryAdapter{
		name:     name,
		capacity: capacity,
		entries:  make([]types.LogEntry, capacity),
	}
}

// Write stores a copy of the entry
func (a *MemoryAdapter) Write(entry *types.LogEntry) error {
	cp := *entry
	cp.Fields = make(map[string]interface{}, len(entry.Fields))
	for k, v := range entry.Fields {
		cp.Fields[k] = v
	}
	cp.Context = nil

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[a.next] = cp
	a.next = (a.next + 1) % a.capacity
	if a.next == 0 {
		a.full = true
	}
	return nil
}

// Entries returns stored entries at or above minLevel, oldest first
func (a *MemoryAdapter) Entries(minLevel types.LogLevel) []types.LogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var ordered []types.LogEntry
	if a.full {
		ordered = append(ordered, a.entries[a.next:]...)
	}
	ordered = append(ordered, a.entries[:a.next]...)

	out := ordered[:0]
	for _, e := range ordered {
		if e.Level >= minLevel {
			out = append(out, e)
		}
	}
	return out
}

// Close is a no-op
func (a *MemoryAdapter) Close() error {
	return nil
}

// Health always reports healthy
func (a *MemoryAdapter) Health() error {
	return nil
}

// Name returns the name of the adapter
func (a *MemoryAdapter) Name() string {
	return a.name
}
