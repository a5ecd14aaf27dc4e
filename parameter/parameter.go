// SPDX-License-Identifier: EPL-2.0

// Package parameter holds the automation snapshot read by effects and tracks.
//
// Parameters are written by the sequencer/automation collaborator through
// commands and read, never written, by DSP code during a tick.
package parameter

import (
	"github.com/ik5/audmix/internal/idalloc"
	"github.com/ik5/audmix/internal/ordered"
)

var ids idalloc.Allocator

// Id identifies one automatable parameter.
type Id struct {
	index uint64
}

// NewId allocates a fresh parameter id.
func NewId() Id { return Id{index: ids.Next()} }

func (id Id) Index() uint64 { return id.index }

// Parameters is the current value of every known parameter.
type Parameters struct {
	values *ordered.Map[Id, float64]
}

// New returns an empty snapshot with room for capacity parameters.
func New(capacity int) *Parameters {
	return &Parameters{values: ordered.New[Id, float64](capacity)}
}

// Get returns the value of id, if known.
func (p *Parameters) Get(id Id) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return p.values.Get(id)
}

// Set stores v for id. A new id is refused once the snapshot is full, so the
// render side never grows storage; the return value tells the caller.
func (p *Parameters) Set(id Id, v float64) bool {
	if !p.values.Contains(id) && p.values.Full() {
		return false
	}
	p.values.Insert(id, v)
	return true
}

func (p *Parameters) Remove(id Id) bool {
	_, ok := p.values.Remove(id)
	return ok
}

func (p *Parameters) Len() int { return p.values.Len() }

// Value is a setting that is either fixed or follows a parameter.
type Value struct {
	fixed  float64
	param  Id
	linked bool
}

// Fixed returns a constant value.
func Fixed(v float64) Value { return Value{fixed: v} }

// Linked returns a value that reads id each tick and falls back to fallback
// while the parameter is unknown.
func Linked(id Id, fallback float64) Value {
	return Value{fixed: fallback, param: id, linked: true}
}

// Get resolves the value against a snapshot.
func (v Value) Get(p *Parameters) float64 {
	if !v.linked {
		return v.fixed
	}
	if cur, ok := p.Get(v.param); ok {
		return cur
	}
	return v.fixed
}
