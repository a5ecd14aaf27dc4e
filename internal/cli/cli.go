// SPDX-License-Identifier: EPL-2.0

// Package cli holds the setup shared by the audmix programs.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/decred/slog"
	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/mixer/effect/delay"
	"github.com/ik5/audmix/mixer/effect/distortion"
	"github.com/ik5/audmix/mixer/effect/filter"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/resource"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/stream"
)

// InputTrack is the sub-track every input file plays on.
const InputTrack = "input"

var ErrUnknownLogLevel = errors.New("unknown log level")

func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	return reg
}

// SetupLogging points every package logger at w and returns the one for
// the program itself.
func SetupLogging(w io.Writer, level string) (slog.Logger, error) {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return nil, fmt.Errorf("%q: %w", level, ErrUnknownLogLevel)
	}

	backend := slog.NewBackend(w)
	newLogger := func(subsystem string) slog.Logger {
		l := backend.Logger(subsystem)
		l.SetLevel(lvl)
		return l
	}

	resource.UseLogger(newLogger("RCLM"))
	stream.UseLogger(newLogger("STRM"))
	device.UseLogger(newLogger("DEVC"))
	return newLogger("AMIX"), nil
}

// CommandBudget is the queue capacity Start and Effects.Apply need to
// set up inputs before anything drains the queue.
func CommandBudget(inputs int) int { return 2*inputs + 8 }

// LoadConfig reads path, or returns the defaults when path is empty.
func LoadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// Effects is the effect chain configured from the command line. Zero
// values leave an effect out.
type Effects struct {
	LowPass   float64
	HighPass  float64
	Delay     float64
	Feedback  float64
	Drive     float64
	Resonance float64
}

func (e *Effects) Register(fs *flag.FlagSet) {
	fs.Float64Var(&e.LowPass, "lowpass", 0, "low-pass cutoff in Hz")
	fs.Float64Var(&e.HighPass, "highpass", 0, "high-pass cutoff in Hz")
	fs.Float64Var(&e.Resonance, "resonance", 0.1, "filter resonance in [0, 1]")
	fs.Float64Var(&e.Delay, "delay", 0, "echo delay in seconds")
	fs.Float64Var(&e.Feedback, "feedback", 0.4, "echo feedback in [0, 1)")
	fs.Float64Var(&e.Drive, "drive", 0, "soft-clip drive, 1 and up")
}

// Apply adds the configured effects to the track index refers to and
// returns how many were added.
func (e *Effects) Apply(m *audmix.Manager, index mixer.TrackIndex) (int, error) {
	var effects []mixer.Effect

	for _, f := range []struct {
		mode   filter.Mode
		cutoff float64
	}{{filter.HighPass, e.HighPass}, {filter.LowPass, e.LowPass}} {
		if f.cutoff <= 0 {
			continue
		}
		s := filter.DefaultSettings()
		s.Mode = f.mode
		s.Cutoff = parameter.Fixed(f.cutoff)
		s.Resonance = parameter.Fixed(e.Resonance)
		effects = append(effects, filter.New(s))
	}

	if e.Drive > 0 {
		s := distortion.DefaultSettings()
		s.Kind = distortion.SoftClip
		s.Drive = parameter.Fixed(e.Drive)
		effects = append(effects, distortion.New(s))
	}

	if e.Delay > 0 {
		s := delay.DefaultSettings(m.Config().SampleRate)
		s.MaxDelay = e.Delay
		s.DelayTime = parameter.Fixed(e.Delay)
		s.Feedback = parameter.Fixed(e.Feedback)
		effects = append(effects, delay.New(s))
	}

	for i, fx := range effects {
		if _, err := m.AddEffect(index, fx, mixer.DefaultEffectSettings()); err != nil {
			return i, err
		}
	}
	return len(effects), nil
}

// Start plays every path on InputTrack, creating the track first. With
// streaming set, files are decoded while they play instead of up front.
// It returns the length of the longest input, or zero when a streamed
// input's length is unknown.
func Start(ctx context.Context, m *audmix.Manager, reg *audio.Registry, paths []string, streaming bool) (time.Duration, error) {
	if _, err := m.AddSubTrack(mixer.TrackSettings{Volume: 1, Name: InputTrack}); err != nil {
		return 0, err
	}

	var longest time.Duration
	for _, path := range paths {
		if streaming {
			src, err := OpenSource(reg, path)
			if err != nil {
				return 0, err
			}
			if _, err := m.OpenStream(ctx, mixer.Named(InputTrack), src); err != nil {
				return 0, fmt.Errorf("streaming %s: %w", path, err)
			}
			continue
		}

		s, err := sound.Open(reg, path)
		if err != nil {
			return 0, err
		}
		id, err := m.AddSound(s)
		if err != nil {
			return 0, fmt.Errorf("adding %s: %w", path, err)
		}

		settings := instance.DefaultSettings()
		settings.Track = mixer.Named(InputTrack)
		if _, err := m.Play(id, settings); err != nil {
			return 0, fmt.Errorf("playing %s: %w", path, err)
		}
		longest = max(longest, s.Length())
	}
	return longest, nil
}

// OpenSource decodes path and keeps the file open until the source is
// closed.
func OpenSource(reg *audio.Registry, path string) (audio.Source, error) {
	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("decoding %s: %w", path, err), f.Close())
	}
	return &fileSource{Source: src, f: f}, nil
}

type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	// some decoders close their reader themselves
	if cerr := s.f.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		err = errors.Join(err, cerr)
	}
	return err
}
