// SPDX-License-Identifier: EPL-2.0

// Package bimap implements a bijective map between two comparable key sets.
package bimap

// BiMap keeps a one to one association between left and right values.
// It is not safe for concurrent use.
type BiMap[L comparable, R comparable] struct {
	byLeft  map[L]R
	byRight map[R]L
}

// New returns a BiMap with room for capacity pairs.
func New[L comparable, R comparable](capacity int) *BiMap[L, R] {
	return &BiMap[L, R]{
		byLeft:  make(map[L]R, capacity),
		byRight: make(map[R]L, capacity),
	}
}

// Insert associates l with r. It refuses (returns false) when either side is
// already paired with something else, so a name can never alias two ids.
// Inserting an existing pair again is accepted.
func (m *BiMap[L, R]) Insert(l L, r R) bool {
	if cur, ok := m.byLeft[l]; ok {
		return cur == r
	}
	if _, ok := m.byRight[r]; ok {
		return false
	}

	m.byLeft[l] = r
	m.byRight[r] = l
	return true
}

func (m *BiMap[L, R]) GetByLeft(l L) (R, bool) {
	r, ok := m.byLeft[l]
	return r, ok
}

func (m *BiMap[L, R]) GetByRight(r R) (L, bool) {
	l, ok := m.byRight[r]
	return l, ok
}

func (m *BiMap[L, R]) ContainsLeft(l L) bool {
	_, ok := m.byLeft[l]
	return ok
}

func (m *BiMap[L, R]) ContainsRight(r R) bool {
	_, ok := m.byRight[r]
	return ok
}

// RemoveByLeft drops the pair keyed by l and returns its right side.
func (m *BiMap[L, R]) RemoveByLeft(l L) (R, bool) {
	r, ok := m.byLeft[l]
	if !ok {
		return r, false
	}
	delete(m.byLeft, l)
	delete(m.byRight, r)
	return r, true
}

// RemoveByRight drops the pair keyed by r and returns its left side.
func (m *BiMap[L, R]) RemoveByRight(r R) (L, bool) {
	l, ok := m.byRight[r]
	if !ok {
		return l, false
	}
	delete(m.byRight, r)
	delete(m.byLeft, l)
	return l, true
}

func (m *BiMap[L, R]) Len() int { return len(m.byLeft) }
