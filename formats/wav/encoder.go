// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmix/utils"
)

// chunkFrames is how many frames are converted per encoder write.
const chunkFrames = 4096

// WriteWAV16 encodes interleaved float32 samples as 16-bit PCM. The header
// sizes are patched on completion, hence the io.WriteSeeker.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	if channels <= 0 {
		return ErrInvalidChannels
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("%d samples for %d channels: %w", len(samples), channels, ErrUnsupportedWavLayout)
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, 0, min(len(samples), chunkFrames*channels)),
		SourceBitDepth: 16,
	}

	for start := 0; start < len(samples); start += chunkFrames * channels {
		end := min(start+chunkFrames*channels, len(samples))

		buf.Data = buf.Data[:0]
		for _, s := range samples[start:end] {
			buf.Data = append(buf.Data, int(utils.Float32ToInt16(s)))
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalising wav: %w", err)
	}
	return nil
}
