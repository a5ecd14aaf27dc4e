// SPDX-License-Identifier: EPL-2.0

package instance

type entry struct {
	id   Id
	inst Instance
}

// Table is the arena of live instances. Its capacity is fixed at creation;
// inserts past it are refused rather than growing the backing array.
type Table struct {
	entries []entry
}

func NewTable(capacity int) *Table {
	return &Table{entries: make([]entry, 0, capacity)}
}

func (t *Table) Len() int   { return len(t.entries) }
func (t *Table) Cap() int   { return cap(t.entries) }
func (t *Table) Full() bool { return len(t.entries) == cap(t.entries) }

// Insert adds inst under id. A full table or a duplicate id is refused.
func (t *Table) Insert(id Id, inst Instance) bool {
	if t.Full() {
		return false
	}
	if _, ok := t.Get(id); ok {
		return false
	}
	t.entries = append(t.entries, entry{id: id, inst: inst})
	return true
}

// Get returns a pointer into the arena, valid until the next RemoveStopped.
func (t *Table) Get(id Id) (*Instance, bool) {
	for i := range t.entries {
		if t.entries[i].id == id {
			return &t.entries[i].inst, true
		}
	}
	return nil, false
}

// At returns the i-th live instance in start order.
func (t *Table) At(i int) (Id, *Instance) {
	return t.entries[i].id, &t.entries[i].inst
}

// RemoveStopped drops every stopped instance, keeping the start order of
// the rest, and returns how many were removed.
func (t *Table) RemoveStopped() int {
	kept := 0
	for i := range t.entries {
		if t.entries[i].inst.state == Stopped {
			continue
		}
		if kept != i {
			t.entries[kept] = t.entries[i]
		}
		kept++
	}

	removed := len(t.entries) - kept
	// release sound references held by the vacated slots
	clear(t.entries[kept:])
	t.entries = t.entries[:kept]
	return removed
}
