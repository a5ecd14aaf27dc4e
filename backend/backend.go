// SPDX-License-Identifier: EPL-2.0

// Package backend owns every piece of state the render thread touches.
//
// Process is called once per output frame by the device. It first applies
// every queued command in the order it was sent, then advances instances
// and streams, drops stopped instances and finally evaluates the mixer.
// After New returns, Process neither allocates, locks nor blocks.
package backend

import (
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/internal/ordered"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/resource"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/stream"
)

type loadedSound struct {
	sound *sound.Sound
	// cooldown is the time left, in seconds, before the sound may start
	// again.
	cooldown float64
}

type attachedStream struct {
	track  mixer.TrackIndex
	stream stream.Stream
}

type Backend struct {
	dt float64

	commands  *command.Receiver
	reclaimer mixer.Reclaimer
	// apply is bound once so draining does not build a method value per tick.
	apply func(command.Command)

	sounds    *ordered.Map[sound.Id, loadedSound]
	instances *instance.Table
	mixer     *mixer.Mixer
	groups    *group.Registry
	streams   *ordered.Map[stream.Id, attachedStream]
	params    *parameter.Parameters

	stats Stats
}

// New sizes every table from cfg. Removed objects go to reclaimer.
func New(cfg config.Config, commands *command.Receiver, reclaimer mixer.Reclaimer) *Backend {
	c := cfg.Capacities
	b := &Backend{
		dt:        1 / float64(cfg.SampleRate),
		commands:  commands,
		reclaimer: reclaimer,
		sounds:    ordered.New[sound.Id, loadedSound](c.Sounds),
		instances: instance.NewTable(c.Instances),
		mixer:     mixer.New(c.SubTracks, reclaimer),
		groups:    group.NewRegistry(c.Groups),
		streams:   ordered.New[stream.Id, attachedStream](c.Streams),
		params:    parameter.New(c.Parameters),
	}
	b.apply = b.applyCommand
	return b
}

// Stats can be read from any goroutine.
func (b *Backend) Stats() *Stats { return &b.stats }

// Process renders one frame.
func (b *Backend) Process() frame.Frame {
	b.commands.Drain(b.apply)

	for i := range b.instances.Len() {
		_, inst := b.instances.At(i)
		if inst.State() != instance.Playing {
			continue
		}
		// the track was removed or its name was never bound
		if !b.mixer.AddInput(inst.Track(), inst.Process(b.dt)) {
			inst.Stop()
			b.stats.dropped.Add(1)
		}
	}

	b.pullStreams()
	b.instances.RemoveStopped()
	b.coolDown()

	b.stats.ticks.Add(1)
	return b.mixer.Process(b.dt, b.params)
}

// pullStreams walks backwards so streams can be detached in place.
// Finished streams and streams whose track is gone are detached.
func (b *Backend) pullStreams() {
	for i := b.streams.Len() - 1; i >= 0; i-- {
		id, s := b.streams.At(i)

		if !b.mixer.AddInput(s.track, s.stream.Next(b.dt)) {
			b.detachStream(id, s)
			b.stats.dropped.Add(1)
			continue
		}
		if f, ok := s.stream.(stream.Finisher); ok && f.Finished() {
			b.detachStream(id, s)
			b.stats.detached.Add(1)
		}
	}
}

func (b *Backend) detachStream(id stream.Id, s attachedStream) {
	b.streams.Remove(id)
	b.reclaimer.Reclaim(resource.Resource{Kind: resource.KindStream, Value: s.stream})
}

func (b *Backend) coolDown() {
	sounds := b.sounds.Values()
	for i := range sounds {
		if sounds[i].cooldown > 0 {
			sounds[i].cooldown -= b.dt
		}
	}
}
