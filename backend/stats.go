// SPDX-License-Identifier: EPL-2.0

package backend

import "sync/atomic"

// Stats counts what happened to commands and ticks. The render thread
// writes it; any goroutine may read it.
type Stats struct {
	ticks      atomic.Uint64
	applied    atomic.Uint64
	ignored    atomic.Uint64
	rejected   atomic.Uint64
	suppressed atomic.Uint64
	detached   atomic.Uint64
	dropped    atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Ticks uint64
	// Applied commands changed engine state.
	Applied uint64
	// Ignored commands referred to something that does not exist.
	Ignored uint64
	// Rejected commands would have exceeded a capacity or reused an id
	// or a name.
	Rejected uint64
	// Suppressed starts arrived while their sound was cooling down.
	Suppressed uint64
	// Detached counts streams removed because they finished.
	Detached uint64
	// Dropped counts instances stopped and streams detached because the
	// track they play on no longer resolves.
	Dropped uint64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Ticks:      s.ticks.Load(),
		Applied:    s.applied.Load(),
		Ignored:    s.ignored.Load(),
		Rejected:   s.rejected.Load(),
		Suppressed: s.suppressed.Load(),
		Detached:   s.detached.Load(),
		Dropped:    s.dropped.Load(),
	}
}

func (s *Stats) count(r result) {
	switch r {
	case applied:
		s.applied.Add(1)
	case ignored:
		s.ignored.Add(1)
	case rejected:
		s.rejected.Add(1)
	case suppressed:
		s.suppressed.Add(1)
	}
}

type result int

const (
	applied result = iota
	ignored
	rejected
	suppressed
)

func okOr(ok bool, otherwise result) result {
	if ok {
		return applied
	}
	return otherwise
}
