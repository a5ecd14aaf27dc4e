// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/frame"
)

var (
	ErrEmptySource     = errors.New("source produced no frames")
	ErrInvalidChannels = errors.New("source has no channels")
)

// maxEmptyReads bounds how many reads in a row may return nothing.
const maxEmptyReads = 64

// FromSource reads src to the end. Mono is copied to both channels and
// channels past the second are dropped. src is not closed.
func FromSource(src audio.Source) (*Sound, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("%d channels: %w", channels, ErrInvalidChannels)
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	buf := make([]float32, size-size%channels)

	var (
		frames  []frame.Frame
		pending []float32
		empty   int
	)
	for {
		n, err := src.ReadSamples(buf)
		if n == 0 && err == nil {
			if empty++; empty > maxEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		}
		empty = 0
		pending = append(pending, buf[:n]...)

		whole := len(pending) - len(pending)%channels
		for i := 0; i < whole; i += channels {
			if channels == 1 {
				frames = append(frames, frame.FromMono(pending[i]))
				continue
			}
			frames = append(frames, frame.New(pending[i], pending[i+1]))
		}
		pending = append(pending[:0], pending[whole:]...)

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
	}

	if len(frames) == 0 {
		return nil, ErrEmptySource
	}
	return FromFrames(src.SampleRate(), frames), nil
}

// Open decodes the file at path with the decoder registered for its
// extension.
func Open(reg *audio.Registry, path string) (*Sound, error) {
	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer src.Close()

	s, err := FromSource(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
