// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("destination is not a whole number of frames")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
	ErrInvalidRate    = errors.New("sample rate must be positive")
)
