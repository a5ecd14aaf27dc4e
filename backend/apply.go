// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/resource"
	"github.com/ik5/audmix/sound"
)

func (b *Backend) applyCommand(cmd command.Command) {
	b.stats.count(b.dispatch(cmd))
}

func (b *Backend) dispatch(cmd command.Command) result {
	switch c := cmd.(type) {
	case command.StartInstance:
		return b.startInstance(c)
	case command.PauseInstance:
		return b.withInstance(c.Id, (*instance.Instance).Pause)
	case command.ResumeInstance:
		return b.withInstance(c.Id, (*instance.Instance).Resume)
	case command.StopInstance:
		return b.withInstance(c.Id, (*instance.Instance).Stop)
	case command.SetInstanceVolume:
		inst, ok := b.instances.Get(c.Id)
		if ok {
			inst.SetVolume(c.Volume)
		}
		return okOr(ok, ignored)
	case command.SetInstancePlaybackRate:
		inst, ok := b.instances.Get(c.Id)
		if ok {
			inst.SetPlaybackRate(c.Rate)
		}
		return okOr(ok, ignored)

	case command.AddSound:
		return b.addSound(c)
	case command.RemoveSound:
		return b.removeSound(c.Id)

	case command.AddSubTrack:
		return okOr(b.mixer.AddSubTrack(c.Id, c.Track), rejected)
	case command.RemoveSubTrack:
		return okOr(b.mixer.RemoveSubTrack(c.Id), ignored)
	case command.SetTrackVolume:
		return okOr(b.mixer.SetTrackVolume(c.Track, c.Volume), ignored)
	case command.AddEffect:
		if _, ok := b.mixer.Track(c.Track); !ok {
			b.mixer.AddEffect(c.Track, c.Id, c.Effect, c.Settings)
			return ignored
		}
		return okOr(b.mixer.AddEffect(c.Track, c.Id, c.Effect, c.Settings), rejected)
	case command.RemoveEffect:
		return okOr(b.mixer.RemoveEffect(c.Id), ignored)
	case command.SetEffectEnabled:
		return okOr(b.mixer.SetEffectEnabled(c.Id, c.Enabled), ignored)

	case command.AddGroup:
		if !b.groups.Add(c.Id, c.Group) {
			b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindGroup, Value: c.Group})
			return rejected
		}
		return applied
	case command.RemoveGroup:
		g, ok := b.groups.Remove(c.Id)
		if !ok {
			return ignored
		}
		b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindGroup, Value: g})
		return applied
	case command.PauseGroup:
		return b.withGroup(c.Id, (*instance.Instance).Pause)
	case command.ResumeGroup:
		return b.withGroup(c.Id, (*instance.Instance).Resume)
	case command.StopGroup:
		return b.withGroup(c.Id, (*instance.Instance).Stop)

	case command.AddStream:
		return b.addStream(c)
	case command.RemoveStream:
		s, ok := b.streams.Remove(c.Id)
		if !ok {
			return ignored
		}
		b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindStream, Value: s.stream})
		return applied

	case command.SetParameter:
		return okOr(b.params.Set(c.Id, c.Value), rejected)
	}
	return ignored
}

// startInstance only accepts instances of sounds the backend holds, so
// RemoveSound can find every instance that still references the sound.
// A sound still cooling down from its last start is not started again.
func (b *Backend) startInstance(c command.StartInstance) result {
	sid := c.Instance.SoundId()
	ls, ok := b.sounds.Get(sid)
	if !ok {
		return ignored
	}
	if ls.cooldown > 0 {
		return suppressed
	}
	if !b.instances.Insert(c.Id, c.Instance) {
		return rejected
	}

	ls.cooldown = ls.sound.Settings().Cooldown
	b.sounds.Insert(sid, ls)
	return applied
}

func (b *Backend) withInstance(id instance.Id, fn func(*instance.Instance)) result {
	inst, ok := b.instances.Get(id)
	if !ok {
		return ignored
	}
	fn(inst)
	return applied
}

func (b *Backend) withGroup(id group.Id, fn func(*instance.Instance)) result {
	if !b.groups.Contains(id) {
		return ignored
	}

	for i := range b.instances.Len() {
		_, inst := b.instances.At(i)
		if b.groups.IsInGroup(inst.Groups(), id) {
			fn(inst)
		}
	}
	return applied
}

func (b *Backend) addSound(c command.AddSound) result {
	if b.sounds.Contains(c.Id) || b.sounds.Full() {
		b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindSound, Value: c.Sound})
		return rejected
	}
	b.sounds.Insert(c.Id, loadedSound{sound: c.Sound})
	return applied
}

// removeSound stops the sound's instances right away; RemoveStopped drops
// them later this tick, before the sound could be read again.
func (b *Backend) removeSound(id sound.Id) result {
	ls, ok := b.sounds.Remove(id)
	if !ok {
		return ignored
	}

	for i := range b.instances.Len() {
		_, inst := b.instances.At(i)
		if inst.SoundId() == id {
			inst.Stop()
		}
	}
	b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindSound, Value: ls.sound})
	return applied
}

func (b *Backend) addStream(c command.AddStream) result {
	if b.streams.Contains(c.Id) || b.streams.Full() {
		b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindStream, Value: c.Stream})
		return rejected
	}
	b.streams.Insert(c.Id, attachedStream{track: c.Track, stream: c.Stream})
	return applied
}
