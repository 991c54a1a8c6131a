// Package slot provides the durable key-value areas and change-signal channels the housing
// store persists to and listens on.
package slot

import (
	"context"
	"slices"
	"sync"
)

// MemorySlot keeps entries in process memory. Stores sharing one MemorySlot behave like
// browsing contexts sharing one origin.
type MemorySlot struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (m *MemorySlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *MemorySlot) SetMany(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = slices.Clone(v)
	}
	return nil
}

// MemoryHub delivers change signals to every subscriber synchronously, in the publisher's
// goroutine.
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[int]func()
	next int
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[int]func())}
}

func (h *MemoryHub) Publish(context.Context) error {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
	return nil
}

func (h *MemoryHub) Subscribe(_ context.Context, onSignal func()) (func() error, error) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = onSignal
	h.mu.Unlock()
	return func() error {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		return nil
	}, nil
}
