// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/internal/audiotest"
	"github.com/ik5/audmix/mixer"
)

func ramp(n int) []frame.Frame {
	frames := make([]frame.Frame, n)
	for i := range frames {
		// an irregular shape so that interpolation errors would show
		v := float32(math.Sin(float64(i)*0.7)) * 0.8
		frames[i] = frame.New(v, -v*0.5)
	}
	return frames
}

func TestFrameAt_InteriorExact(t *testing.T) {
	t.Parallel()

	const rate = 8
	frames := ramp(16)
	s := FromFrames(rate, frames)

	for i := 2; i < len(frames)-2; i++ {
		got := s.FrameAt(float64(i) / rate)
		if got != frames[i] {
			t.Errorf("FrameAt(%d/%d) = %+v, want %+v", i, rate, got, frames[i])
		}
	}
}

func TestFrameAt_Midpoint(t *testing.T) {
	t.Parallel()

	// a linear ramp is reproduced exactly by Catmull-Rom away from the edges
	frames := make([]frame.Frame, 8)
	for i := range frames {
		frames[i] = frame.FromMono(float32(i) * 0.125)
	}
	s := FromFrames(4, frames)

	got := s.FrameAt(3.5 / 4)
	if math.Abs(float64(got.Left-0.4375)) > 1e-6 {
		t.Errorf("FrameAt(mid) = %v, want 0.4375", got.Left)
	}
}

func TestFrameAt_SilencePadding(t *testing.T) {
	t.Parallel()

	s := FromFrames(8, ramp(8))

	tests := []struct {
		name     string
		position float64
	}{
		{name: "far before start", position: -10},
		{name: "just before start", position: -3.0 / 8},
		{name: "far past end", position: 100},
		{name: "just past end", position: 10.0 / 8},
		{name: "nan", position: math.NaN()},
		{name: "inf", position: math.Inf(1)},
		{name: "neg inf", position: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := s.FrameAt(tt.position); got != frame.Silence {
				t.Errorf("FrameAt(%v) = %+v, want silence", tt.position, got)
			}
		})
	}
}

func TestFrameAt_EdgesDoNotPanic(t *testing.T) {
	t.Parallel()

	s := FromFrames(8, ramp(4))
	for p := -1.0; p < 1.5; p += 1.0 / 64 {
		f := s.FrameAt(p)
		if math.IsNaN(float64(f.Left)) || math.IsNaN(float64(f.Right)) {
			t.Fatalf("FrameAt(%v) = NaN", p)
		}
	}
}

func TestFrameAt_ZeroAllocs(t *testing.T) {
	s := FromFrames(8, ramp(32))

	allocs := testing.AllocsPerRun(100, func() {
		_ = s.FrameAt(1.3)
	})
	if allocs != 0 {
		t.Errorf("FrameAt allocated %v times per run, want 0", allocs)
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	s := FromFrames(8, ramp(12))
	if got := s.Duration(); got != 1.5 {
		t.Errorf("Duration() = %v, want 1.5", got)
	}
	if got := s.Length().Milliseconds(); got != 1500 {
		t.Errorf("Length() = %vms, want 1500ms", got)
	}
	if got := FromFrames(0, nil).Duration(); got != 0 {
		t.Errorf("zero-rate Duration() = %v, want 0", got)
	}
}

func TestWithSettings(t *testing.T) {
	t.Parallel()

	s := FromFrames(8, ramp(4))
	if got := s.Settings(); got != DefaultSettings() {
		t.Errorf("Settings() = %+v, want defaults", got)
	}
	if got := s.Settings(); !got.DefaultTrack.IsMain() || got.Cooldown != DefaultCooldown {
		t.Errorf("DefaultSettings() = %+v, want main track and %v cooldown", got, DefaultCooldown)
	}

	music := s.WithSettings(Settings{DefaultTrack: mixer.Named("music")})
	if name, ok := music.Settings().DefaultTrack.Name(); !ok || name != "music" {
		t.Errorf("DefaultTrack = %q, %v, want music", name, ok)
	}
	if music.Len() != s.Len() || music.FrameAt(0.25) != s.FrameAt(0.25) {
		t.Error("WithSettings() changed the frames")
	}
	if !s.Settings().DefaultTrack.IsMain() {
		t.Error("WithSettings() modified the original sound")
	}
}

func TestFromSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     *audiotest.MockSource
		want    []frame.Frame
		wantErr error
	}{
		{
			name: "mono duplicated",
			src:  audiotest.NewSliceSource(8, 1, []float32{0.1, 0.2, 0.3}),
			want: []frame.Frame{frame.FromMono(0.1), frame.FromMono(0.2), frame.FromMono(0.3)},
		},
		{
			name: "stereo",
			src:  audiotest.NewSliceSource(8, 2, []float32{0.1, -0.1, 0.2, -0.2}),
			want: []frame.Frame{frame.New(0.1, -0.1), frame.New(0.2, -0.2)},
		},
		{
			name: "extra channels dropped",
			src:  audiotest.NewSliceSource(8, 3, []float32{0.1, 0.2, 0.9, 0.3, 0.4, 0.9}),
			want: []frame.Frame{frame.New(0.1, 0.2), frame.New(0.3, 0.4)},
		},
		{
			name:    "empty",
			src:     audiotest.NewSliceSource(8, 2, nil),
			wantErr: ErrEmptySource,
		},
		{
			name:    "read failure",
			src:     audiotest.NewConstantSource(8, 1, 100, 0.5).FailAfter(2),
			wantErr: audiotest.ErrInjected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := FromSource(tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromSource() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromSource() error = %v", err)
			}
			if s.SampleRate() != 8 || s.Len() != len(tt.want) {
				t.Fatalf("got %d frames at %d Hz, want %d at 8 Hz", s.Len(), s.SampleRate(), len(tt.want))
			}
			for i, want := range tt.want {
				if s.frames[i] != want {
					t.Errorf("frame %d = %+v, want %+v", i, s.frames[i], want)
				}
			}
		})
	}
}

type stuckSource struct{ *audiotest.MockSource }

func (stuckSource) ReadSamples([]float32) (int, error) { return 0, nil }

func TestFromSource_NoProgress(t *testing.T) {
	t.Parallel()

	_, err := FromSource(stuckSource{audiotest.NewSilentSource(8, 1, 1)})
	if !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("FromSource() error = %v, want io.ErrNoProgress", err)
	}
}

func TestOpen_UnknownExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.xyz")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(audio.NewRegistry(), path); !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("Open() error = %v, want ErrUnknownFormat", err)
	}
}

func TestNewId_Unique(t *testing.T) {
	t.Parallel()

	a, b := NewId(), NewId()
	if a == b {
		t.Errorf("NewId() returned %v twice", a)
	}
}
