// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidChannels   = errors.New("channel count must be between 1 and 8")
	ErrInvalidCapacity   = errors.New("capacity must be positive")
	ErrInvalidGain       = errors.New("output gain must be between 0 and 4")
	ErrInvalidLatency    = errors.New("device buffer duration must not be negative")
)
