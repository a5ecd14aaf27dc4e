// SPDX-License-Identifier: EPL-2.0

// Package sound holds immutable decoded audio and its fractional-time sampler.
package sound

import (
	"math"
	"time"

	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/internal/idalloc"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/utils"
)

var ids idalloc.Allocator

// Id identifies a loaded sound.
type Id struct {
	index uint64
}

func NewId() Id { return Id{index: ids.Next()} }

func (id Id) Index() uint64 { return id.index }

// DefaultCooldown keeps the same sound from being started twice in the
// same instant, which would play it twice as loud.
const DefaultCooldown = 0.0001

type Settings struct {
	// DefaultTrack receives instances whose settings leave Track unset.
	DefaultTrack mixer.TrackIndex
	// Cooldown in seconds after a start during which further starts of
	// the sound are refused. Zero disables it.
	Cooldown float64
}

func DefaultSettings() Settings {
	return Settings{DefaultTrack: mixer.Main, Cooldown: DefaultCooldown}
}

// Sound is a stereo sample buffer at a fixed rate. It is never modified
// after construction and may be shared by any number of instances.
type Sound struct {
	frames     []frame.Frame
	sampleRate int
	settings   Settings
}

// New takes ownership of frames.
func New(sampleRate int, frames []frame.Frame, settings Settings) *Sound {
	return &Sound{frames: frames, sampleRate: sampleRate, settings: settings}
}

// FromFrames is New with DefaultSettings.
func FromFrames(sampleRate int, frames []frame.Frame) *Sound {
	return New(sampleRate, frames, DefaultSettings())
}

// WithSettings returns a sound sharing s's frames with other settings.
func (s *Sound) WithSettings(settings Settings) *Sound {
	return New(s.sampleRate, s.frames, settings)
}

func (s *Sound) Settings() Settings { return s.settings }

func (s *Sound) SampleRate() int { return s.sampleRate }
func (s *Sound) Len() int        { return len(s.frames) }

// Duration in seconds.
func (s *Sound) Duration() float64 {
	if s.sampleRate <= 0 {
		return 0
	}
	return float64(len(s.frames)) / float64(s.sampleRate)
}

// Length is Duration as a time.Duration.
func (s *Sound) Length() time.Duration {
	return time.Duration(s.Duration() * float64(time.Second))
}

func (s *Sound) frame(i int) frame.Frame {
	if i < 0 || i >= len(s.frames) {
		return frame.Silence
	}
	return s.frames[i]
}

// FrameAt samples the sound at position seconds using Catmull-Rom
// interpolation over the four surrounding frames. Frames outside the buffer
// read as silence, so positions before the start or past the end fade to
// zero instead of failing.
func (s *Sound) FrameAt(position float64) frame.Frame {
	pos := position * float64(s.sampleRate)
	base := math.Floor(pos)
	if math.IsNaN(pos) || math.IsInf(pos, 0) ||
		base < -2 || base > float64(len(s.frames)+1) {
		return frame.Silence
	}

	i := int(base)
	x := float32(pos - base)
	y0, y1, y2, y3 := s.frame(i-1), s.frame(i), s.frame(i+1), s.frame(i+2)

	return frame.Frame{
		Left:  utils.CubicInterpolate(y0.Left, y1.Left, y2.Left, y3.Left, x),
		Right: utils.CubicInterpolate(y0.Right, y1.Right, y2.Right, y3.Right, x),
	}
}
