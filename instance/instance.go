// SPDX-License-Identifier: EPL-2.0

// Package instance implements playback cursors over sounds.
package instance

import (
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/internal/idalloc"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/utils"
)

var ids idalloc.Allocator

// Id identifies one playback. Ids are never reused.
type Id struct {
	index uint64
}

func NewId() Id { return Id{index: ids.Next()} }

func (id Id) Index() uint64 { return id.index }

type State uint8

const (
	Playing State = iota
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Pitch is a playback rate given as a factor or in semitones.
type Pitch struct {
	value     float64
	semitones bool
}

func Factor(f float64) Pitch { return Pitch{value: f} }

func Semitones(s float64) Pitch { return Pitch{value: s, semitones: true} }

func (p Pitch) Factor() float64 {
	if p.semitones {
		return utils.SemitonesToFactor(p.value)
	}
	return p.value
}

type Settings struct {
	// Volume is a linear gain.
	Volume float64
	// PlaybackRate scales how fast the position advances.
	PlaybackRate Pitch
	// Panning from 0 (left) through 0.5 (centre) to 1 (right).
	Panning float64
	// StartPosition in seconds.
	StartPosition float64
	// Track receives the instance output. Left unset, the sound's
	// DefaultTrack is used.
	Track mixer.TrackIndex
	// Groups the instance belongs to for batch control.
	Groups group.Set
}

func DefaultSettings() Settings {
	return Settings{
		Volume:       1,
		PlaybackRate: Factor(1),
		Panning:      0.5,
	}
}

// Instance is one playback of a sound. It is owned by the render thread
// once started.
type Instance struct {
	soundId  sound.Id
	sound    *sound.Sound
	position float64
	state    State
	volume   float64
	rate     float64
	panning  float64
	track    mixer.TrackIndex
	groups   group.Set
}

func New(id sound.Id, s *sound.Sound, settings Settings) Instance {
	track := settings.Track
	if !track.IsSet() {
		track = s.Settings().DefaultTrack
	}
	if !track.IsSet() {
		track = mixer.Main
	}

	return Instance{
		soundId:  id,
		sound:    s,
		position: settings.StartPosition,
		volume:   settings.Volume,
		rate:     settings.PlaybackRate.Factor(),
		panning:  settings.Panning,
		track:    track,
		groups:   settings.Groups,
	}
}

func (i *Instance) SoundId() sound.Id       { return i.soundId }
func (i *Instance) State() State            { return i.state }
func (i *Instance) Position() float64       { return i.position }
func (i *Instance) Track() mixer.TrackIndex { return i.track }
func (i *Instance) Groups() group.Set       { return i.groups }
func (i *Instance) SetVolume(v float64)     { i.volume = v }
func (i *Instance) SetPlaybackRate(p Pitch) { i.rate = p.Factor() }
func (i *Instance) SetPanning(p float64)    { i.panning = p }

func (i *Instance) Pause() {
	if i.state == Playing {
		i.state = Paused
	}
}

// Resume restarts a paused instance. Stopped is terminal.
func (i *Instance) Resume() {
	if i.state == Paused {
		i.state = Playing
	}
}

func (i *Instance) Stop() { i.state = Stopped }

// endTolerance absorbs the rounding of summing dt once per tick, in frames.
const endTolerance = 1e-6

// pastEnd compares in frames so that ceil(duration*rate) ticks of
// 1/rate always reach the end, whether or not 1/rate is exact in binary.
func (i *Instance) pastEnd() bool {
	r := i.sound.SampleRate()
	if r <= 0 {
		return true
	}
	return i.position*float64(r) >= float64(i.sound.Len())-endTolerance
}

// Process returns this tick's output and advances by dt scaled by the
// playback rate. Reaching either end of the sound stops the instance;
// only playing instances produce audio.
func (i *Instance) Process(dt float64) frame.Frame {
	if i.state != Playing {
		return frame.Silence
	}

	out := i.sound.FrameAt(i.position)
	i.position += dt * i.rate
	if i.pastEnd() || i.position < 0 {
		i.state = Stopped
	}

	return out.Scale(float32(i.volume)).Panned(float32(i.panning))
}
