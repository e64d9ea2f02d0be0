package provider

import (
	"sync"

	"github.com/go-drift/icons/pkg/icon"
)

// Memo keeps resolved icons in memory in front of another provider.
//
// Misses and errors are not remembered. To avoid holding the lock during
// I/O, concurrent requests for the same uncached name may reach the wrapped
// provider more than once. Only one result is stored.
type Memo struct {
	next Provider

	mu    sync.Mutex
	items map[string]icon.Icon
}

var _ Provider = (*Memo)(nil)

// NewMemo wraps next.
func NewMemo(next Provider) *Memo {
	return &Memo{next: next, items: make(map[string]icon.Icon)}
}

// Get implements Provider.
func (m *Memo) Get(name string) (icon.Icon, error) {
	m.mu.Lock()
	if ic, ok := m.items[name]; ok {
		m.mu.Unlock()
		return ic, nil
	}
	m.mu.Unlock()

	ic, err := m.next.Get(name)
	if err != nil {
		return ic, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[name]; ok {
		return existing, nil
	}
	m.items[name] = ic
	return ic, nil
}

// Has implements Provider.
func (m *Memo) Has(name string) bool {
	m.mu.Lock()
	_, ok := m.items[name]
	m.mu.Unlock()
	return ok || m.next.Has(name)
}

// All implements Provider.
func (m *Memo) All() ([]string, error) {
	return m.next.All()
}

// Len returns the number of memoized icons.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Reset drops every memoized icon.
func (m *Memo) Reset() {
	m.mu.Lock()
	clear(m.items)
	m.mu.Unlock()
}
