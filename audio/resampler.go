// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audmix/utils"
)

// maxEmptyReads bounds how often a source may answer (0, nil) in a row
// before the resampler gives up with io.ErrNoProgress.
const maxEmptyReads = 64

// Resampler streams from src at a different sample rate using Catmull-Rom
// interpolation. It works on interleaved samples and preserves the channel
// count. When downsampling a one-pole low-pass tames aliasing.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame
	channels int

	// win[1] and win[2] bracket the current position, win[0] and win[3]
	// are the outer Catmull-Rom taps.
	win   [4][]float32
	valid [4]bool

	pos    float64
	primed bool
	eof    bool
	srcBuf []float32

	alpha        float32
	filterState  []float32
	filterPrimed bool
}

// NewResampler wraps src so it reads at dstRate.
func NewResampler(src Source, dstRate int) (*Resampler, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidRate
	}

	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		alpha:       1,
		filterState: make([]float32, channels),
	}
	if ratio > 1 {
		// cutoff at the destination Nyquist frequency
		r.alpha = float32(1 - math.Exp(-math.Pi/ratio))
	}

	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}

	return r, nil
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Ratio is the number of source frames consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampled source: %w", err)
	}
	return nil
}

// readFrame reads exactly one source frame into dst.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.eof {
		return false, nil
	}

	for range maxEmptyReads {
		n, err := r.src.ReadSamples(r.srcBuf)
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("reading source frame: %w", err)
		}

		if n >= r.channels {
			if r.alpha < 1 && !r.filterPrimed {
				// settle the filter on the first frame so the output does
				// not ramp up from zero
				copy(r.filterState, r.srcBuf[:r.channels])
				r.filterPrimed = true
			}
			for c := range r.channels {
				v := r.srcBuf[c]
				if r.alpha < 1 {
					v = r.alpha*v + (1-r.alpha)*r.filterState[c]
					r.filterState[c] = v
				}
				dst[c] = v
			}
			return true, nil
		}
		if r.eof {
			return false, nil
		}
	}

	return false, io.ErrNoProgress
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.readFrame(r.win[1])
	if err != nil || !ok {
		return err
	}
	r.valid[1] = true
	copy(r.win[0], r.win[1])

	for i := 2; i < 4; i++ {
		ok, err := r.readFrame(r.win[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.win[i], r.win[i-1])
		}
		r.valid[i] = ok
	}
	return nil
}

// advance slides the window forward by one source frame.
func (r *Resampler) advance() error {
	first := r.win[0]
	copy(r.win[:], r.win[1:])
	r.win[3] = first
	copy(r.valid[:], r.valid[1:])

	ok, err := r.readFrame(r.win[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.win[3], r.win[2])
	}
	r.valid[3] = ok
	return nil
}

// ReadSamples fills dst with interleaved samples at the destination rate.
// len(dst) must be a multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.pos >= 1 {
			r.pos -= 1
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.win[0][c], r.win[1][c], r.win[2][c], r.win[3][c], x)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
