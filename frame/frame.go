// SPDX-License-Identifier: EPL-2.0

// Package frame defines the stereo sample pair that flows through the mixer.
package frame

import "math"

// Frame is one stereo sample. Amplitudes are nominally in [-1, 1] but are
// not clamped while mixing.
type Frame struct {
	Left  float32
	Right float32
}

// Silence is the zero-amplitude frame.
var Silence = Frame{}

func New(left, right float32) Frame { return Frame{Left: left, Right: right} }

// FromMono returns a frame with the same value on both channels.
func FromMono(v float32) Frame { return Frame{Left: v, Right: v} }

func (f Frame) Add(o Frame) Frame { return Frame{Left: f.Left + o.Left, Right: f.Right + o.Right} }
func (f Frame) Sub(o Frame) Frame { return Frame{Left: f.Left - o.Left, Right: f.Right - o.Right} }

// Scale multiplies both channels by s.
func (f Frame) Scale(s float32) Frame { return Frame{Left: f.Left * s, Right: f.Right * s} }

// Mul multiplies channel-wise.
func (f Frame) Mul(o Frame) Frame { return Frame{Left: f.Left * o.Left, Right: f.Right * o.Right} }

// Panned applies constant-power panning; 0 is hard left, 0.5 centre and 1
// hard right. At 0.5 the result is the input unchanged.
func (f Frame) Panned(panning float32) Frame {
	if panning == 0.5 {
		return f
	}
	p := min(max(panning, 0), 1)
	angle := float64(p) * math.Pi / 2
	return Frame{
		Left:  f.Left * float32(math.Cos(angle)) * math.Sqrt2,
		Right: f.Right * float32(math.Sin(angle)) * math.Sqrt2,
	}
}

// Mono returns the average of both channels.
func (f Frame) Mono() float32 { return (f.Left + f.Right) * 0.5 }

// Lerp interpolates between a and b by t.
func Lerp(a, b Frame, t float32) Frame {
	return a.Add(b.Sub(a).Scale(t))
}
