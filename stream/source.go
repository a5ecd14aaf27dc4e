// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"sync/atomic"
	"time"

	"github.com/decred/slog"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/frame"
)

var log = slog.Disabled

// UseLogger sets the logger used by stream decoding goroutines.
func UseLogger(logger slog.Logger) { log = logger }

// pollInterval is how long the decoder waits for the ring to drain.
const pollInterval = 2 * time.Millisecond

var (
	ErrInvalidBuffer   = errors.New("stream buffer must hold at least one frame")
	ErrInvalidChannels = errors.New("stream source has no channels")
)

// SourceStream decodes an audio.Source on its own goroutine into a
// single-producer single-consumer ring. The render side only ever reads
// atomics and the ring, and gets silence when the decoder falls behind.
type SourceStream struct {
	src  audio.Source
	ring []frame.Frame
	mask uint64

	read  atomic.Uint64
	write atomic.Uint64
	eof   atomic.Bool

	underruns atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewSourceStream starts decoding src at sampleRate, resampling when the
// rates differ. bufferFrames is rounded up to a power of two. The stream
// owns src and closes it on Close.
func NewSourceStream(ctx context.Context, src audio.Source, sampleRate, bufferFrames int) (*SourceStream, error) {
	if bufferFrames <= 0 {
		return nil, ErrInvalidBuffer
	}

	if src.SampleRate() != sampleRate {
		r, err := audio.NewResampler(src, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("resampling stream: %w", err)
		}
		src = r
	}

	size := uint64(1) << bits.Len64(uint64(bufferFrames-1))
	ctx, cancel := context.WithCancel(ctx)
	s := &SourceStream{
		src:    src,
		ring:   make([]frame.Frame, size),
		mask:   size - 1,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.fill(ctx)
	return s, nil
}

// Next pops one frame. It never waits.
func (s *SourceStream) Next(float64) frame.Frame {
	r := s.read.Load()
	if r == s.write.Load() {
		if !s.eof.Load() {
			s.underruns.Add(1)
		}
		return frame.Silence
	}

	f := s.ring[r&s.mask]
	s.read.Store(r + 1)
	return f
}

// Buffered is the number of decoded frames waiting in the ring.
func (s *SourceStream) Buffered() int {
	return int(s.write.Load() - s.read.Load())
}

// Finished reports whether the source ended and every frame was consumed.
func (s *SourceStream) Finished() bool {
	return s.eof.Load() && s.read.Load() == s.write.Load()
}

// Underruns counts ticks that found the ring empty before the source ended.
func (s *SourceStream) Underruns() uint64 { return s.underruns.Load() }

// Close stops decoding, waits for the goroutine and closes the source. It
// returns the first decoding or close error.
func (s *SourceStream) Close() error {
	s.cancel()
	<-s.done

	err := s.err
	if cerr := s.src.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing stream source: %w", cerr))
	}
	return err
}

func (s *SourceStream) fill(ctx context.Context) {
	defer close(s.done)
	defer s.eof.Store(true)

	channels := s.src.Channels()
	if channels <= 0 {
		s.err = fmt.Errorf("%d channels: %w", channels, ErrInvalidChannels)
		return
	}

	buf := make([]float32, (len(s.ring)/2+1)*channels)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var pushed uint64
	for {
		n, err := s.src.ReadSamples(buf)
		frames := n / channels

		for i := 0; i < frames; {
			if s.push(buf[i*channels:], channels) {
				i++
				pushed++
				continue
			}

			select {
			case <-ctx.Done():
				log.Debugf("Stream cancelled after %d frames", pushed)
				return
			case <-ticker.C:
			}
		}

		if err == io.EOF {
			log.Debugf("Stream source ended after %d frames", pushed)
			return
		}
		if err != nil {
			s.err = fmt.Errorf("reading stream source: %w", err)
			log.Warnf("Stream stopped: %v", s.err)
			return
		}

		if n == 0 {
			// nothing decoded, back off instead of spinning
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// push writes one frame from interleaved samples; false means the ring is
// full.
func (s *SourceStream) push(samples []float32, channels int) bool {
	w := s.write.Load()
	if w-s.read.Load() == uint64(len(s.ring)) {
		return false
	}

	if channels == 1 {
		s.ring[w&s.mask] = frame.FromMono(samples[0])
	} else {
		s.ring[w&s.mask] = frame.New(samples[0], samples[1])
	}
	s.write.Store(w + 1)
	return true
}
