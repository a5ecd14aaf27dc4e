// SPDX-License-Identifier: EPL-2.0

package group

import "slices"

// Set is an ordered collection of unique labels. Methods that change a Set
// return a new one, leaving the receiver untouched, so a Set attached to
// an entity can be read from the render side without copying.
type Set struct {
	labels []Label
}

func NewSet(labels ...Label) Set {
	var s Set
	for _, l := range labels {
		s = s.Add(l)
	}
	return s
}

func (s Set) Add(l Label) Set {
	if s.Contains(l) {
		return s
	}
	labels := make([]Label, len(s.labels), len(s.labels)+1)
	copy(labels, s.labels)
	return Set{labels: append(labels, l)}
}

func (s Set) Remove(l Label) Set {
	i := slices.Index(s.labels, l)
	if i < 0 {
		return s
	}
	return Set{labels: slices.Delete(slices.Clone(s.labels), i, i+1)}
}

func (s Set) Contains(l Label) bool { return slices.Contains(s.labels, l) }

func (s Set) Len() int { return len(s.labels) }

// Labels returns a copy in insertion order.
func (s Set) Labels() []Label { return slices.Clone(s.labels) }

// IsInGroup reports whether any label resolves to target, directly or
// through the groups those labels belong to.
func (s Set) IsInGroup(target Id, r *Registry) bool {
	return r.IsInGroup(s, target)
}
