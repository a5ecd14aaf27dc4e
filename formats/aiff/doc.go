// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into audio.Source using github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. Inputs that are not
// seekable are buffered in memory first.
package aiff
