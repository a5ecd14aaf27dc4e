// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files with github.com/go-audio/wav.
//
// The Decoder accepts integer PCM at 8, 16, 24 or 32 bits, any channel count
// and any sample rate, and yields an audio.Source of float32 samples:
//
//	src, err := wav.Decoder{}.Decode(file)
//
// WriteWAV16 stores rendered float32 output as 16-bit PCM:
//
//	out, _ := os.Create("mix.wav")
//	err := wav.WriteWAV16(out, 48000, 2, samples)
package wav
