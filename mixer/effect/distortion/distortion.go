// SPDX-License-Identifier: EPL-2.0

// Package distortion waveshapes the signal with a hard or soft clipper.
package distortion

import (
	"math"

	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/utils"
)

type Kind uint8

const (
	HardClip Kind = iota
	SoftClip
)

type Settings struct {
	Kind Kind
	// Drive is the linear gain applied before clipping.
	Drive parameter.Value
	// Mix between dry (0) and distorted (1) signal.
	Mix parameter.Value
}

func DefaultSettings() Settings {
	return Settings{
		Kind:  HardClip,
		Drive: parameter.Fixed(1),
		Mix:   parameter.Fixed(1),
	}
}

type Distortion struct {
	settings Settings
}

func New(settings Settings) *Distortion {
	return &Distortion{settings: settings}
}

func (d *Distortion) shape(x float32) float32 {
	if d.settings.Kind == SoftClip {
		return float32(math.Tanh(float64(x)))
	}
	return utils.Clamp(x, -1, 1)
}

func (d *Distortion) Process(_ float64, input frame.Frame, params *parameter.Parameters) frame.Frame {
	drive := float32(max(d.settings.Drive.Get(params), 0))
	mix := float32(utils.Clamp(d.settings.Mix.Get(params), 0, 1))

	driven := input.Scale(drive)
	out := frame.New(d.shape(driven.Left), d.shape(driven.Right))
	return frame.Lerp(input, out, mix)
}
