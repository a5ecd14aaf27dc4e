// SPDX-License-Identifier: EPL-2.0

// Package resource moves objects removed on the render thread to a
// collector goroutine, so deallocation and Close never run on the render
// path.
package resource

import "fmt"

// Kind tags what a Resource carries.
type Kind uint8

const (
	KindSound Kind = iota
	KindArrangement
	KindSequenceInstance
	KindTrack
	KindEffectSlot
	KindGroup
	KindStream
	KindMetronome
)

var kindNames = [...]string{
	KindSound:            "sound",
	KindArrangement:      "arrangement",
	KindSequenceInstance: "sequence instance",
	KindTrack:            "track",
	KindEffectSlot:       "effect slot",
	KindGroup:            "group",
	KindStream:           "stream",
	KindMetronome:        "metronome",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Resource is one object handed over for disposal. Value is owned by the
// collector once sent.
type Resource struct {
	Kind  Kind
	Value any
}
