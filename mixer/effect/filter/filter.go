// SPDX-License-Identifier: EPL-2.0

// Package filter is a resonant state-variable filter effect.
package filter

import (
	"math"

	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/utils"
)

type Mode uint8

const (
	LowPass Mode = iota
	BandPass
	HighPass
	Notch
)

type Settings struct {
	Mode Mode
	// Cutoff frequency in Hz.
	Cutoff parameter.Value
	// Resonance in [0, 1]; values near 1 ring.
	Resonance parameter.Value
	// Mix between dry (0) and filtered (1) signal.
	Mix parameter.Value
}

func DefaultSettings() Settings {
	return Settings{
		Mode:      LowPass,
		Cutoff:    parameter.Fixed(1000),
		Resonance: parameter.Fixed(0),
		Mix:       parameter.Fixed(1),
	}
}

// Filter keeps the two integrator states per channel between ticks.
type Filter struct {
	settings Settings
	ic1eq    frame.Frame
	ic2eq    frame.Frame
}

func New(settings Settings) *Filter {
	return &Filter{settings: settings}
}

func (f *Filter) Mode() Mode { return f.settings.Mode }

func (f *Filter) SetMode(m Mode) { f.settings.Mode = m }

// Reset clears the filter memory.
func (f *Filter) Reset() {
	f.ic1eq = frame.Silence
	f.ic2eq = frame.Silence
}

func (f *Filter) Process(dt float64, input frame.Frame, params *parameter.Parameters) frame.Frame {
	// keep the cutoff below Nyquist so tan stays finite
	cutoff := utils.Clamp(f.settings.Cutoff.Get(params), 0, 0.49/dt)
	resonance := utils.Clamp(f.settings.Resonance.Get(params), 0, 1)
	mix := float32(utils.Clamp(f.settings.Mix.Get(params), 0, 1))

	g := float32(math.Tan(math.Pi * cutoff * dt))
	k := float32(2 - 1.9*resonance)
	a1 := 1 / (1 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	v3 := input.Sub(f.ic2eq)
	v1 := f.ic1eq.Scale(a1).Add(v3.Scale(a2))
	v2 := f.ic2eq.Add(f.ic1eq.Scale(a2)).Add(v3.Scale(a3))
	f.ic1eq = v1.Scale(2).Sub(f.ic1eq)
	f.ic2eq = v2.Scale(2).Sub(f.ic2eq)

	var out frame.Frame
	switch f.settings.Mode {
	case LowPass:
		out = v2
	case BandPass:
		out = v1
	case HighPass:
		out = input.Sub(v1.Scale(k)).Sub(v2)
	case Notch:
		out = input.Sub(v1.Scale(k))
	}

	return frame.Lerp(input, out, mix)
}
