// SPDX-License-Identifier: EPL-2.0

// Package delay is a feedback delay effect backed by a fixed ring buffer.
package delay

import (
	"math"

	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/utils"
)

type Settings struct {
	// MaxDelay in seconds sizes the ring buffer; it cannot change later.
	MaxDelay float64
	// SampleRate the effect will run at.
	SampleRate int
	// DelayTime in seconds, clamped to MaxDelay.
	DelayTime parameter.Value
	// Feedback is how much of the delayed signal is fed back, in [0, 1).
	Feedback parameter.Value
	// Mix between dry (0) and delayed (1) signal.
	Mix parameter.Value
}

func DefaultSettings(sampleRate int) Settings {
	return Settings{
		MaxDelay:   2,
		SampleRate: sampleRate,
		DelayTime:  parameter.Fixed(0.5),
		Feedback:   parameter.Fixed(0.5),
		Mix:        parameter.Fixed(0.5),
	}
}

type Delay struct {
	settings Settings
	buf      []frame.Frame
	write    int
}

func New(settings Settings) *Delay {
	size := int(math.Ceil(settings.MaxDelay*float64(settings.SampleRate))) + 1
	return &Delay{
		settings: settings,
		buf:      make([]frame.Frame, max(size, 2)),
	}
}

// Capacity is the longest delay, in frames, the buffer can hold.
func (d *Delay) Capacity() int { return len(d.buf) - 1 }

func (d *Delay) Reset() {
	clear(d.buf)
	d.write = 0
}

func (d *Delay) Process(dt float64, input frame.Frame, params *parameter.Parameters) frame.Frame {
	frames := int(math.Round(d.settings.DelayTime.Get(params) / dt))
	frames = min(max(frames, 1), d.Capacity())
	feedback := float32(utils.Clamp(d.settings.Feedback.Get(params), 0, 0.999))
	mix := float32(utils.Clamp(d.settings.Mix.Get(params), 0, 1))

	read := d.write - frames
	if read < 0 {
		read += len(d.buf)
	}

	delayed := d.buf[read]
	d.buf[d.write] = input.Add(delayed.Scale(feedback))
	if d.write++; d.write == len(d.buf) {
		d.write = 0
	}

	return frame.Lerp(input, delayed, mix)
}
