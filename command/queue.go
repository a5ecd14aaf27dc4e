// SPDX-License-Identifier: EPL-2.0

package command

import "sync"

// DefaultCapacity is the queue size used when none is configured.
const DefaultCapacity = 10

type queue struct {
	ch chan Command

	// mtx orders Send against close so a send never hits a closed channel.
	mtx    sync.RWMutex
	closed bool
}

func (q *queue) close() {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Sender is the control-side end. It is safe for concurrent use.
type Sender struct {
	q *queue
}

// Receiver is the render-side end. Only one goroutine may receive.
type Receiver struct {
	q *queue
}

// New returns both ends of a queue holding up to capacity commands.
func New(capacity int) (*Sender, *Receiver) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	q := &queue{ch: make(chan Command, capacity)}
	return &Sender{q: q}, &Receiver{q: q}
}

// Send enqueues cmd without blocking.
func (s *Sender) Send(cmd Command) error {
	s.q.mtx.RLock()
	defer s.q.mtx.RUnlock()

	if s.q.closed {
		return ErrChannelDisconnected
	}

	select {
	case s.q.ch <- cmd:
		return nil
	default:
		return ErrChannelFull
	}
}

// Close disconnects the queue. Commands already queued can still be
// received.
func (s *Sender) Close() { s.q.close() }

// Len is the number of queued commands.
func (r *Receiver) Len() int { return len(r.q.ch) }

// TryRecv takes one command if there is one.
func (r *Receiver) TryRecv() (Command, bool) {
	select {
	case cmd, ok := <-r.q.ch:
		return cmd, ok
	default:
		return nil, false
	}
}

// Drain passes every command queued at the time of the call to fn, in
// FIFO order, without waiting for more. Commands sent while draining are
// left for the next call.
func (r *Receiver) Drain(fn func(Command)) int {
	n := len(r.q.ch)
	for i := range n {
		cmd, ok := r.TryRecv()
		if !ok {
			return i
		}
		fn(cmd)
	}
	return n
}

// Close disconnects the queue from the render side; further sends fail
// with ErrChannelDisconnected.
func (r *Receiver) Close() { r.q.close() }
