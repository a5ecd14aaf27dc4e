// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III using github.com/hajimehoshi/go-mp3.
//
// The decoder always produces stereo. Mono files are delivered with both
// channels equal. Closing the source closes the input when it is an io.Closer.
package mp3
