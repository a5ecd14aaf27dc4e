// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audmix/frame"
)

// Renderer produces one stereo frame per call. *backend.Backend is the
// production implementation.
type Renderer interface {
	Process() frame.Frame
}

const bytesPerSample = 4

// Reader adapts a Renderer to the io.Reader oto pulls float32 little-endian
// PCM from. It must only be read from one goroutine.
type Reader struct {
	r        Renderer
	channels int
	gain     float32
	buf      []float32
}

func NewReader(r Renderer, channels int, gain float64) *Reader {
	return &Reader{
		r:        r,
		channels: max(channels, 1),
		gain:     float32(gain),
		// oto asks for a few kilobytes at a time; Read grows it otherwise
		buf: make([]float32, 4096),
	}
}

// Read always fills p with whole frames and never fails. A tail shorter
// than one frame is zeroed.
func (rd *Reader) Read(p []byte) (int, error) {
	frameBytes := rd.channels * bytesPerSample
	frames := len(p) / frameBytes
	samples := frames * rd.channels

	if cap(rd.buf) < samples {
		rd.buf = make([]float32, samples)
	}
	block := rd.buf[:samples]
	rd.fill(block)

	for i, s := range block {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
	clear(p[samples*bytesPerSample:])
	return len(p), nil
}

func (rd *Reader) fill(block []float32) {
	for i := 0; i < len(block); i += rd.channels {
		Downmix(rd.r.Process(), block[i:i+rd.channels])
	}
	applyGain(block, rd.gain)
}

// Render runs r for frames ticks without a device and returns interleaved
// samples in the given channel layout, with gain and clipping applied.
func Render(r Renderer, frames, channels int, gain float64) []float32 {
	rd := NewReader(r, channels, gain)
	out := make([]float32, frames*rd.channels)
	rd.fill(out)
	return out
}
