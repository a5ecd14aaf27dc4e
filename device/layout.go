// SPDX-License-Identifier: EPL-2.0

package device

import (
	"github.com/ik5/audmix/frame"
	"github.com/viterin/vek/vek32"
)

// Downmix writes f into one interleaved frame of len(dst) channels. Mono
// gets the average of both sides; wider layouts get left and right on the
// first two channels and silence on the rest.
func Downmix(f frame.Frame, dst []float32) {
	switch len(dst) {
	case 0:
	case 1:
		dst[0] = f.Mono()
	default:
		dst[0] = f.Left
		dst[1] = f.Right
		clear(dst[2:])
	}
}

// applyGain scales a block and hard-clips it to [-1, 1].
func applyGain(block []float32, gain float32) {
	if len(block) == 0 {
		return
	}
	if gain != 1 {
		vek32.MulNumber_Inplace(block, gain)
	}
	vek32.MinimumNumber_Inplace(block, 1)
	vek32.MaximumNumber_Inplace(block, -1)
}
