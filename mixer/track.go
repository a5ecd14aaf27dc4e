// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/internal/ordered"
	"github.com/ik5/audmix/parameter"
)

// DefaultEffectCapacity is used when TrackSettings.EffectCapacity is zero.
const DefaultEffectCapacity = 8

type TrackSettings struct {
	// Volume is a linear gain applied after the effect chain.
	Volume float64
	// Name lets commands address the sub-track with Named. Empty means
	// anonymous.
	Name string
	// Groups the track belongs to.
	Groups group.Set
	// EffectCapacity is how many effects the track can hold.
	EffectCapacity int
}

func DefaultTrackSettings() TrackSettings {
	return TrackSettings{Volume: 1, EffectCapacity: DefaultEffectCapacity}
}

// Track accumulates input during a tick and runs it through its effects.
type Track struct {
	volume float64
	input  frame.Frame
	slots  *ordered.Map[EffectId, *EffectSlot]
	name   string
	groups group.Set
}

func NewTrack(settings TrackSettings) *Track {
	capacity := settings.EffectCapacity
	if capacity <= 0 {
		capacity = DefaultEffectCapacity
	}

	return &Track{
		volume: settings.Volume,
		slots:  ordered.New[EffectId, *EffectSlot](capacity),
		name:   settings.Name,
		groups: settings.Groups,
	}
}

func (t *Track) Name() string      { return t.name }
func (t *Track) Groups() group.Set { return t.groups }
func (t *Track) Volume() float64   { return t.volume }

func (t *Track) SetVolume(v float64) { t.volume = v }

// Effects is the number of installed slots.
func (t *Track) Effects() int { return t.slots.Len() }

func (t *Track) AddInput(f frame.Frame) { t.input = t.input.Add(f) }

// AddEffect appends a slot at the end of the chain. It fails when the track
// is full or id is already installed.
func (t *Track) AddEffect(id EffectId, slot *EffectSlot) bool {
	if t.slots.Contains(id) || t.slots.Full() {
		return false
	}
	t.slots.Insert(id, slot)
	return true
}

func (t *Track) RemoveEffect(id EffectId) (*EffectSlot, bool) {
	return t.slots.Remove(id)
}

func (t *Track) EffectSlot(id EffectId) (*EffectSlot, bool) {
	return t.slots.Get(id)
}

// Process consumes the input gathered since the previous call, passes it
// through every slot in insertion order and applies the track volume.
func (t *Track) Process(dt float64, params *parameter.Parameters) frame.Frame {
	out := t.input
	t.input = frame.Silence

	for _, slot := range t.slots.Values() {
		out = slot.Process(dt, out, params)
	}
	return out.Scale(float32(t.volume))
}

// Close closes every installed effect that holds resources. The collector
// calls it after the track was removed from the mixer.
func (t *Track) Close() error {
	return closeAll(t.slots.Values())
}
