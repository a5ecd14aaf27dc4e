// SPDX-License-Identifier: EPL-2.0

// Package command defines the messages control code sends to the render
// thread and the bounded queue that carries them.
package command

import (
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/stream"
)

// Command is implemented by every message type in this package.
type Command interface {
	command()
}

// StartInstance begins playback. The instance's sound must have been added
// with AddSound.
type StartInstance struct {
	Id       instance.Id
	Instance instance.Instance
}

type PauseInstance struct{ Id instance.Id }

type ResumeInstance struct{ Id instance.Id }

type StopInstance struct{ Id instance.Id }

type SetInstanceVolume struct {
	Id     instance.Id
	Volume float64
}

type SetInstancePlaybackRate struct {
	Id   instance.Id
	Rate instance.Pitch
}

type AddSound struct {
	Id    sound.Id
	Sound *sound.Sound
}

// RemoveSound unloads a sound and stops every instance playing it.
type RemoveSound struct{ Id sound.Id }

type AddSubTrack struct {
	Id    mixer.SubTrackId
	Track *mixer.Track
}

type RemoveSubTrack struct{ Id mixer.SubTrackId }

type SetTrackVolume struct {
	Track  mixer.TrackIndex
	Volume float64
}

type AddEffect struct {
	Track    mixer.TrackIndex
	Id       mixer.EffectId
	Effect   mixer.Effect
	Settings mixer.EffectSettings
}

type RemoveEffect struct{ Id mixer.EffectId }

type SetEffectEnabled struct {
	Id      mixer.EffectId
	Enabled bool
}

type AddGroup struct {
	Id    group.Id
	Group *group.Group
}

type RemoveGroup struct{ Id group.Id }

// PauseGroup, ResumeGroup and StopGroup act on every instance that belongs
// to the group directly or through other groups.
type PauseGroup struct{ Id group.Id }

type ResumeGroup struct{ Id group.Id }

type StopGroup struct{ Id group.Id }

type AddStream struct {
	Id     stream.Id
	Track  mixer.TrackIndex
	Stream stream.Stream
}

type RemoveStream struct{ Id stream.Id }

// SetParameter updates the automation snapshot read by effects.
type SetParameter struct {
	Id    parameter.Id
	Value float64
}

func (StartInstance) command()           {}
func (PauseInstance) command()           {}
func (ResumeInstance) command()          {}
func (StopInstance) command()            {}
func (SetInstanceVolume) command()       {}
func (SetInstancePlaybackRate) command() {}
func (AddSound) command()                {}
func (RemoveSound) command()             {}
func (AddSubTrack) command()             {}
func (RemoveSubTrack) command()          {}
func (SetTrackVolume) command()          {}
func (AddEffect) command()               {}
func (RemoveEffect) command()            {}
func (SetEffectEnabled) command()        {}
func (AddGroup) command()                {}
func (RemoveGroup) command()             {}
func (PauseGroup) command()              {}
func (ResumeGroup) command()             {}
func (StopGroup) command()               {}
func (AddStream) command()               {}
func (RemoveStream) command()            {}
func (SetParameter) command()            {}
