// SPDX-License-Identifier: EPL-2.0

// Package utils holds small numeric helpers shared by the DSP code.
package utils

import "math"

// semitoneRatio is the twelfth root of two.
const semitoneRatio = 1.0594630943592953

func Clamp[T ~float32 | ~float64](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(a, b, amount float64) float64 {
	return a + (b-a)*amount
}

// InverseLerp returns where point lies between start and end, 0 at start and
// 1 at end.
func InverseLerp(start, end, point float64) float64 {
	return (point - start) / (end - start)
}

// SemitonesToFactor converts a pitch offset in semitones to a playback rate.
func SemitonesToFactor(semitones float64) float64 {
	return math.Pow(semitoneRatio, semitones)
}

// DecibelsToAmplitude converts a gain in dB to a linear factor.
func DecibelsToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}
