// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the logger used by collectors.
func UseLogger(logger slog.Logger) { log = logger }

// Sender is the render-side end of the reclamation channel.
type Sender struct {
	ch     chan<- Resource
	sent   atomic.Uint64
	leaked atomic.Uint64
}

// Collector is the control-side end. Exactly one goroutine should Run it.
type Collector struct {
	ch        <-chan Resource
	collected atomic.Uint64
	failed    atomic.Uint64
}

// NewChannel returns both ends of a reclamation channel holding up to
// capacity pending resources.
func NewChannel(capacity int) (*Sender, *Collector) {
	ch := make(chan Resource, capacity)
	return &Sender{ch: ch}, &Collector{ch: ch}
}

// Reclaim hands r to the collector without blocking. When the channel is
// full the resource is dropped where it is, counted as leaked, and false
// is returned.
func (s *Sender) Reclaim(r Resource) bool {
	select {
	case s.ch <- r:
		s.sent.Add(1)
		return true
	default:
		s.leaked.Add(1)
		return false
	}
}

func (s *Sender) Sent() uint64   { return s.sent.Load() }
func (s *Sender) Leaked() uint64 { return s.leaked.Load() }

// Run disposes of resources until ctx is done, then drains whatever is
// still buffered. It always returns nil so it can sit in an errgroup
// without cancelling its siblings.
func (c *Collector) Run(ctx context.Context) error {
	log.Debugf("Reclamation collector started")
	for {
		select {
		case <-ctx.Done():
			n := c.Drain()
			log.Debugf("Reclamation collector stopped: %d collected, %d drained on exit, %d close errors",
				c.Collected(), n, c.failed.Load())
			return nil
		case r := <-c.ch:
			c.dispose(r)
		}
	}
}

// Drain disposes of every buffered resource without waiting for more and
// returns how many there were.
func (c *Collector) Drain() int {
	n := 0
	for {
		select {
		case r := <-c.ch:
			c.dispose(r)
			n++
		default:
			return n
		}
	}
}

func (c *Collector) Collected() uint64 { return c.collected.Load() }

// Failed counts values whose Close returned an error.
func (c *Collector) Failed() uint64 { return c.failed.Load() }

func (c *Collector) dispose(r Resource) {
	c.collected.Add(1)

	closer, ok := r.Value.(io.Closer)
	if !ok {
		log.Tracef("Dropped %s", r.Kind)
		return
	}

	if err := closer.Close(); err != nil {
		c.failed.Add(1)
		log.Warnf("Closing reclaimed %s: %v", r.Kind, err)
		return
	}
	log.Tracef("Closed %s", r.Kind)
}
