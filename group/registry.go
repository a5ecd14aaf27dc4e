// SPDX-License-Identifier: EPL-2.0

package group

import (
	"github.com/ik5/audmix/internal/bimap"
	"github.com/ik5/audmix/internal/ordered"
)

// Registry holds the live groups on the render side. It is not safe for
// concurrent use and does not allocate after NewRegistry.
type Registry struct {
	groups *ordered.Map[Id, *Group]
	names  *bimap.BiMap[string, Id]

	// visited is scratch for IsInGroup; a group is pushed at most once per
	// query so capacity never has to grow past the registry size.
	visited []Id
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		groups:  ordered.New[Id, *Group](capacity),
		names:   bimap.New[string, Id](capacity),
		visited: make([]Id, 0, capacity),
	}
}

func (r *Registry) Len() int { return r.groups.Len() }

func (r *Registry) Contains(id Id) bool { return r.groups.Contains(id) }

// Get resolves l to a live group.
func (r *Registry) Get(l Label) (Id, *Group, bool) {
	id := l.id
	if l.byName {
		var ok bool
		if id, ok = r.names.GetByLeft(l.name); !ok {
			return Id{}, nil, false
		}
	}

	g, ok := r.groups.Get(id)
	if !ok {
		return Id{}, nil, false
	}
	return id, g, true
}

// Add inserts g under id. It refuses a registry at capacity, an id already
// in use and a name already bound to another group.
func (r *Registry) Add(id Id, g *Group) bool {
	if r.groups.Contains(id) || r.groups.Full() {
		return false
	}
	if g.name != "" && !r.names.Insert(g.name, id) {
		return false
	}

	r.groups.Insert(id, g)
	return true
}

// Remove deletes the group and its name binding and hands it back for
// reclamation. Sets that still refer to it simply stop resolving.
func (r *Registry) Remove(id Id) (*Group, bool) {
	g, ok := r.groups.Remove(id)
	if !ok {
		return nil, false
	}
	r.names.RemoveByRight(id)
	return g, true
}

// IsInGroup reports whether s belongs to target, directly or transitively.
// A target that is not registered is never matched. Cycles in the
// hierarchy are tolerated: each group is expanded once per query.
func (r *Registry) IsInGroup(s Set, target Id) bool {
	if !r.groups.Contains(target) {
		return false
	}

	r.visited = r.visited[:0]
	return r.search(s, target)
}

func (r *Registry) search(s Set, target Id) bool {
	for _, l := range s.labels {
		if id, _, ok := r.Get(l); ok && id == target {
			return true
		}
	}

	for _, l := range s.labels {
		id, g, ok := r.Get(l)
		if !ok || r.seen(id) {
			continue
		}

		r.visited = append(r.visited, id)
		if r.search(g.groups, target) {
			return true
		}
	}
	return false
}

func (r *Registry) seen(id Id) bool {
	for _, v := range r.visited {
		if v == id {
			return true
		}
	}
	return false
}
