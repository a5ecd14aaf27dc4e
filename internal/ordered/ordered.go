// SPDX-License-Identifier: EPL-2.0

// Package ordered provides a map that iterates in insertion order.
//
// Storage is reserved up front; as long as Len stays below the capacity
// given to New, Insert and Remove do not allocate.
package ordered

// Map is an insertion ordered associative container.
// It is not safe for concurrent use.
type Map[K comparable, V any] struct {
	keys   []K
	values []V
	index  map[K]int
}

func New[K comparable, V any](capacity int) *Map[K, V] {
	return &Map[K, V]{
		keys:   make([]K, 0, capacity),
		values: make([]V, 0, capacity),
		index:  make(map[K]int, capacity),
	}
}

func (m *Map[K, V]) Len() int { return len(m.keys) }
func (m *Map[K, V]) Cap() int { return cap(m.keys) }

// Full reports whether another Insert of a new key would need to grow storage.
func (m *Map[K, V]) Full() bool { return len(m.keys) >= cap(m.keys) }

// Insert adds k at the end of the order. An existing key keeps its position
// and has its value replaced; the previous value is returned.
func (m *Map[K, V]) Insert(k K, v V) (V, bool) {
	if i, ok := m.index[k]; ok {
		old := m.values[i]
		m.values[i] = v
		return old, true
	}

	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.values = append(m.values, v)

	var zero V
	return zero, false
}

func (m *Map[K, V]) Get(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return m.values[i], true
}

func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Remove deletes k and shifts the following entries down, keeping order.
func (m *Map[K, V]) Remove(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}

	v := m.values[i]
	delete(m.index, k)

	last := len(m.keys) - 1
	copy(m.keys[i:], m.keys[i+1:])
	copy(m.values[i:], m.values[i+1:])

	// release references held by the vacated tail slot
	var (
		zeroK K
		zeroV V
	)
	m.keys[last] = zeroK
	m.values[last] = zeroV
	m.keys = m.keys[:last]
	m.values = m.values[:last]

	for j := i; j < last; j++ {
		m.index[m.keys[j]] = j
	}

	return v, true
}

// At returns the i-th entry in insertion order.
func (m *Map[K, V]) At(i int) (K, V) {
	return m.keys[i], m.values[i]
}

// Values exposes the values in order. The slice is owned by the map and is
// only valid until the next mutation.
func (m *Map[K, V]) Values() []V { return m.values }
