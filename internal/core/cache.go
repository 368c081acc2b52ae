package core

import "sync"

// memo is a concurrency-safe map with an optional entry bound. When the bound
// is reached the oldest inserted entry is evicted. A zero bound keeps every
// entry for the life of the process.
type memo[K comparable, V any] struct {
	mu    sync.Mutex
	max   int
	items map[K]V
	order []K
}

func newMemo[K comparable, V any](max int) *memo[K, V] {
	return &memo[K, V]{
		max:   max,
		items: make(map[K]V),
	}
}

func (m *memo[K, V]) get(k K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[k]
	return v, ok
}

func (m *memo[K, V]) put(k K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[k]; !exists {
		m.order = append(m.order, k)
	}
	m.items[k] = v

	for m.max > 0 && len(m.items) > m.max {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.items, oldest)
	}
}

func (m *memo[K, V]) remove(k K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[k]; !ok {
		return false
	}
	delete(m.items, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *memo[K, V]) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[K]V)
	m.order = nil
}

func (m *memo[K, V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
