// SPDX-License-Identifier: EPL-2.0

// Package stream feeds external audio into mixer tracks frame by frame.
package stream

import (
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/internal/idalloc"
)

var ids idalloc.Allocator

// Id identifies an attached stream.
type Id struct {
	index uint64
}

func NewId() Id { return Id{index: ids.Next()} }

func (id Id) Index() uint64 { return id.index }

// Stream produces one frame per tick on the render thread. Next must not
// block, lock or allocate.
type Stream interface {
	Next(dt float64) frame.Frame
}

// Finisher is implemented by streams that can run out. The backend detaches
// a stream once Finished reports true.
type Finisher interface {
	Finished() bool
}
