// SPDX-License-Identifier: EPL-2.0

// Package audio is the boundary to the decoding collaborator.
//
// Decoders in formats/* turn encoded files into a Source of interleaved
// float32 samples. The mixing core never parses compressed formats itself;
// it only consumes Source values, either eagerly (sound.FromSource loads a
// whole buffer) or incrementally (stream.SourceStream pulls through a
// Resampler on a background goroutine).
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF once the stream is exhausted; n may be non-zero
// on the same call.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("music/theme.wav")
//
// # Resampling
//
// Resampler converts a Source to another rate with Catmull-Rom
// interpolation, the same kernel sound.Sound uses for playback:
//
//	resampler, err := audio.NewResampler(source, 48000)
//	n, err := resampler.ReadSamples(buf)
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]; 0.0 is silence.
package audio
