// SPDX-License-Identifier: EPL-2.0

// Package idalloc hands out process-wide unique identifiers.
package idalloc

import "sync/atomic"

// Allocator is a monotonically increasing counter. The zero value is ready
// to use and is safe for concurrent use. Values are never reused.
type Allocator struct {
	next atomic.Uint64
}

// Next returns the next unused index.
func (a *Allocator) Next() uint64 {
	return a.next.Add(1) - 1
}
