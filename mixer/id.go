// SPDX-License-Identifier: EPL-2.0

package mixer

import "github.com/ik5/audmix/internal/idalloc"

var (
	subTrackIds idalloc.Allocator
	effectIds   idalloc.Allocator
)

// SubTrackId identifies a sub-track. Ids are never reused.
type SubTrackId struct {
	index uint64
}

func NewSubTrackId() SubTrackId { return SubTrackId{index: subTrackIds.Next()} }

func (id SubTrackId) Index() uint64 { return id.index }

type trackKind uint8

const (
	trackUnset trackKind = iota
	trackMain
	trackSub
	trackNamed
)

// TrackIndex addresses a track: the main track, a sub-track by id or a
// sub-track by name. The zero value addresses no track; instance settings
// use it to mean the sound's default track.
type TrackIndex struct {
	kind trackKind
	sub  SubTrackId
	name string
}

// Main is the track every sub-track feeds into.
var Main = TrackIndex{kind: trackMain}

func Sub(id SubTrackId) TrackIndex { return TrackIndex{kind: trackSub, sub: id} }

func Named(name string) TrackIndex { return TrackIndex{kind: trackNamed, name: name} }

func (t TrackIndex) IsMain() bool { return t.kind == trackMain }

// IsSet is false only for the zero TrackIndex.
func (t TrackIndex) IsSet() bool { return t.kind != trackUnset }

func (t TrackIndex) SubTrack() (SubTrackId, bool) { return t.sub, t.kind == trackSub }

func (t TrackIndex) Name() (string, bool) { return t.name, t.kind == trackNamed }

// EffectId identifies an effect and remembers the track it was added to.
type EffectId struct {
	index uint64
	track TrackIndex
}

func NewEffectId(track TrackIndex) EffectId {
	return EffectId{index: effectIds.Next(), track: track}
}

func (id EffectId) Index() uint64 { return id.index }

func (id EffectId) Track() TrackIndex { return id.track }
