// SPDX-License-Identifier: EPL-2.0

// Package group implements the membership hierarchy used for batch control.
//
// Instances, tracks and groups declare the groups they belong to with a Set.
// A Set refers to groups by id or by name; both forms resolve through the
// same Registry, so callers cannot tell them apart. Membership is
// transitive: an entity in group A, where A belongs to B, is also in B.
package group

import "github.com/ik5/audmix/internal/idalloc"

var ids idalloc.Allocator

// Id identifies a group. Ids are never reused.
type Id struct {
	index uint64
}

func NewId() Id { return Id{index: ids.Next()} }

func (id Id) Index() uint64 { return id.index }

// Label refers to a group either by id or by name.
type Label struct {
	id     Id
	name   string
	byName bool
}

func ById(id Id) Label { return Label{id: id} }

func ByName(name string) Label { return Label{name: name, byName: true} }

// Id returns the id for labels built with ById.
func (l Label) Id() (Id, bool) { return l.id, !l.byName }

// Name returns the name for labels built with ByName.
func (l Label) Name() (string, bool) { return l.name, l.byName }

// Group is a node of the hierarchy: an optional name plus the groups it
// belongs to.
type Group struct {
	name   string
	groups Set
}

func New(name string, groups Set) *Group {
	return &Group{name: name, groups: groups}
}

// Name is empty for anonymous groups.
func (g *Group) Name() string { return g.name }

func (g *Group) Groups() Set { return g.groups }
