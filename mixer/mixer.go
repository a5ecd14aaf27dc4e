// SPDX-License-Identifier: EPL-2.0

// Package mixer routes audio through sub-tracks into the main track.
//
// Every tick, producers call AddInput for the track they play on, then
// Process sums each sub-track's processed output into the main track and
// returns the main track's output. Topology changes go through the Mixer
// methods; anything they remove is passed to a Reclaimer instead of being
// dropped on the render thread.
package mixer

import (
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/internal/bimap"
	"github.com/ik5/audmix/internal/ordered"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/resource"
)

// Reclaimer takes ownership of removed objects. *resource.Sender is the
// production implementation.
type Reclaimer interface {
	Reclaim(r resource.Resource) bool
}

type Mixer struct {
	main      *Track
	subTracks *ordered.Map[SubTrackId, *Track]
	names     *bimap.BiMap[string, SubTrackId]
	reclaimer Reclaimer
}

// New returns a mixer with room for capacity sub-tracks.
func New(capacity int, reclaimer Reclaimer) *Mixer {
	return &Mixer{
		main:      NewTrack(DefaultTrackSettings()),
		subTracks: ordered.New[SubTrackId, *Track](capacity),
		names:     bimap.New[string, SubTrackId](capacity),
		reclaimer: reclaimer,
	}
}

// SubTracks is the number of live sub-tracks.
func (m *Mixer) SubTracks() int { return m.subTracks.Len() }

// Track resolves index the same way for every operation.
func (m *Mixer) Track(index TrackIndex) (*Track, bool) {
	switch index.kind {
	case trackMain:
		return m.main, true
	case trackSub:
		return m.subTracks.Get(index.sub)
	case trackNamed:
		id, ok := m.names.GetByLeft(index.name)
		if !ok {
			return nil, false
		}
		return m.subTracks.Get(id)
	}
	return nil, false
}

// AddSubTrack installs t. A duplicate id, a name already bound to another
// sub-track or a full mixer rejects it, and the track is reclaimed.
func (m *Mixer) AddSubTrack(id SubTrackId, t *Track) bool {
	if m.subTracks.Contains(id) || m.subTracks.Full() ||
		(t.name != "" && !m.names.Insert(t.name, id)) {
		m.reclaimer.Reclaim(resource.Resource{Kind: resource.KindTrack, Value: t})
		return false
	}

	m.subTracks.Insert(id, t)
	return true
}

// RemoveSubTrack drops the sub-track and its name and reclaims it.
func (m *Mixer) RemoveSubTrack(id SubTrackId) bool {
	t, ok := m.subTracks.Remove(id)
	if !ok {
		return false
	}

	m.names.RemoveByRight(id)
	m.reclaimer.Reclaim(resource.Resource{Kind: resource.KindTrack, Value: t})
	return true
}

// AddEffect installs effect on the track index resolves to. When the track
// cannot be resolved or is full the effect is reclaimed and false returned.
func (m *Mixer) AddEffect(index TrackIndex, id EffectId, effect Effect, settings EffectSettings) bool {
	slot := NewEffectSlot(effect, settings)

	t, ok := m.Track(index)
	if !ok || !t.AddEffect(id, slot) {
		m.reclaimer.Reclaim(resource.Resource{Kind: resource.KindEffectSlot, Value: slot})
		return false
	}
	return true
}

// RemoveEffect looks the effect up on the track recorded in id.
func (m *Mixer) RemoveEffect(id EffectId) bool {
	t, ok := m.Track(id.track)
	if !ok {
		return false
	}

	slot, ok := t.RemoveEffect(id)
	if !ok {
		return false
	}
	m.reclaimer.Reclaim(resource.Resource{Kind: resource.KindEffectSlot, Value: slot})
	return true
}

func (m *Mixer) SetEffectEnabled(id EffectId, enabled bool) bool {
	t, ok := m.Track(id.track)
	if !ok {
		return false
	}

	slot, ok := t.EffectSlot(id)
	if !ok {
		return false
	}
	slot.SetEnabled(enabled)
	return true
}

func (m *Mixer) SetTrackVolume(index TrackIndex, volume float64) bool {
	t, ok := m.Track(index)
	if !ok {
		return false
	}
	t.SetVolume(volume)
	return true
}

// AddInput adds f to the input of the resolved track. Input for an unknown
// track is discarded.
func (m *Mixer) AddInput(index TrackIndex, f frame.Frame) bool {
	t, ok := m.Track(index)
	if !ok {
		return false
	}
	t.AddInput(f)
	return true
}

// Process evaluates every sub-track in insertion order, feeds the sum to
// the main track and returns the main track's output.
func (m *Mixer) Process(dt float64, params *parameter.Parameters) frame.Frame {
	sum := frame.Silence
	for _, t := range m.subTracks.Values() {
		sum = sum.Add(t.Process(dt, params))
	}

	m.main.AddInput(sum)
	return m.main.Process(dt, params)
}
