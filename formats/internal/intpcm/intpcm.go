// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts go-audio integer PCM decoders to audio.Source.
package intpcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// Reader is the subset of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source converts integer PCM of a fixed bit depth to float32 samples.
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	scale      float32
	intBuf     *goaudio.IntBuffer
	closer     io.Closer
}

// New wraps dec. bitDepth selects the full-scale value used to normalise
// samples into [-1, 1].
func New(dec Reader, sampleRate, channels, bitDepth int) *Source {
	return &Source{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      FullScale(bitDepth),
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, 4096),
			Format:         dec.Format(),
			SourceBitDepth: bitDepth,
		},
	}
}

// WithCloser makes Close release c as well.
func (s *Source) WithCloser(c io.Closer) *Source {
	s.closer = c
	return s
}

// FullScale returns 2^(bitDepth-1), the magnitude of the most negative value.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return cap(s.intBuf.Data) }

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing pcm input: %w", err)
	}
	return nil
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("reading pcm: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	inv := 1 / s.scale
	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) * inv
	}

	// a short read without error means the data chunk is exhausted
	if n < len(dst) || err == io.EOF {
		return n, io.EOF
	}
	return n, nil
}
