// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/resource"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/stream"
)

// Manager builds commands for the backend and keeps the control-side view
// needed to resolve names and validate references before sending. It is
// safe for concurrent use.
type Manager struct {
	cfg       config.Config
	backend   *backend.Backend
	commands  *command.Sender
	reclaim   *resource.Sender
	collector *resource.Collector

	mtx        sync.Mutex
	sounds     map[sound.Id]*sound.Sound
	subTracks  map[mixer.SubTrackId]string
	trackNames map[string]mixer.SubTrackId
	groups     map[group.Id]string
	groupNames map[string]group.Id
}

// New validates cfg and wires a backend, its command queue and its
// reclamation channel. Nothing runs until Run and the device are started.
func New(cfg config.Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tx, rx := command.New(cfg.Capacities.Commands)
	reclaim, collector := resource.NewChannel(cfg.Capacities.Reclaim)

	return &Manager{
		cfg:        cfg,
		backend:    backend.New(cfg, rx, reclaim),
		commands:   tx,
		reclaim:    reclaim,
		collector:  collector,
		sounds:     make(map[sound.Id]*sound.Sound),
		subTracks:  make(map[mixer.SubTrackId]string),
		trackNames: make(map[string]mixer.SubTrackId),
		groups:     make(map[group.Id]string),
		groupNames: make(map[string]group.Id),
	}, nil
}

func (m *Manager) Config() config.Config { return m.cfg }

// Backend is what the device pulls frames from. Only one goroutine may
// call its Process method.
func (m *Manager) Backend() *backend.Backend { return m.backend }

// Run disposes of resources removed by the backend until ctx is done.
func (m *Manager) Run(ctx context.Context) error { return m.collector.Run(ctx) }

// Stats is a snapshot of the backend counters.
func (m *Manager) Stats() backend.Snapshot { return m.backend.Stats().Snapshot() }

// Leaked counts resources dropped on the render thread because the
// reclamation channel was full.
func (m *Manager) Leaked() uint64 { return m.reclaim.Leaked() }

// Close disconnects the command queue. Queued commands are still applied.
func (m *Manager) Close() { m.commands.Close() }

func (m *Manager) send(cmd command.Command) error {
	if err := m.commands.Send(cmd); err != nil {
		if errors.Is(err, command.ErrChannelDisconnected) {
			return ErrClosed
		}
		return err
	}
	return nil
}

// AddSound hands s to the backend and returns the id to play it by.
func (m *Manager) AddSound(s *sound.Sound) (sound.Id, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.sounds) >= m.cfg.Capacities.Sounds {
		return sound.Id{}, fmt.Errorf("adding sound: %w", ErrCapacityExceeded)
	}

	id := sound.NewId()
	if err := m.send(command.AddSound{Id: id, Sound: s}); err != nil {
		return sound.Id{}, fmt.Errorf("adding sound: %w", err)
	}
	m.sounds[id] = s
	return id, nil
}

// LoadSound decodes path with reg and adds the result.
func (m *Manager) LoadSound(reg *audio.Registry, path string) (sound.Id, error) {
	s, err := sound.Open(reg, path)
	if err != nil {
		return sound.Id{}, err
	}
	return m.AddSound(s)
}

// RemoveSound unloads the sound and stops all of its instances.
func (m *Manager) RemoveSound(id sound.Id) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, ok := m.sounds[id]; !ok {
		return ErrUnknownSound
	}
	if err := m.send(command.RemoveSound{Id: id}); err != nil {
		return fmt.Errorf("removing sound: %w", err)
	}
	delete(m.sounds, id)
	return nil
}

// Play starts a new instance of a sound added with AddSound. An unset
// settings.Track plays on the sound's default track.
func (m *Manager) Play(id sound.Id, settings instance.Settings) (instance.Id, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	s, ok := m.sounds[id]
	if !ok {
		return instance.Id{}, ErrUnknownSound
	}
	inst := instance.New(id, s, settings)
	if err := m.checkTrack(inst.Track()); err != nil {
		return instance.Id{}, err
	}
	if err := m.checkGroups(settings.Groups); err != nil {
		return instance.Id{}, err
	}

	iid := instance.NewId()
	if err := m.send(command.StartInstance{Id: iid, Instance: inst}); err != nil {
		return instance.Id{}, fmt.Errorf("starting instance: %w", err)
	}
	return iid, nil
}

func (m *Manager) PauseInstance(id instance.Id) error {
	return m.send(command.PauseInstance{Id: id})
}

func (m *Manager) ResumeInstance(id instance.Id) error {
	return m.send(command.ResumeInstance{Id: id})
}

func (m *Manager) StopInstance(id instance.Id) error {
	return m.send(command.StopInstance{Id: id})
}

func (m *Manager) SetInstanceVolume(id instance.Id, volume float64) error {
	return m.send(command.SetInstanceVolume{Id: id, Volume: volume})
}

func (m *Manager) SetInstancePlaybackRate(id instance.Id, rate instance.Pitch) error {
	return m.send(command.SetInstancePlaybackRate{Id: id, Rate: rate})
}

// AddSubTrack creates a sub-track. A zero EffectCapacity takes the
// configured per-track capacity.
func (m *Manager) AddSubTrack(settings mixer.TrackSettings) (mixer.SubTrackId, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.subTracks) >= m.cfg.Capacities.SubTracks {
		return mixer.SubTrackId{}, fmt.Errorf("adding sub-track: %w", ErrCapacityExceeded)
	}
	if _, taken := m.trackNames[settings.Name]; settings.Name != "" && taken {
		return mixer.SubTrackId{}, fmt.Errorf("adding sub-track %q: %w", settings.Name, ErrDuplicateTrackName)
	}
	if settings.EffectCapacity == 0 {
		settings.EffectCapacity = m.cfg.Capacities.Effects
	}

	id := mixer.NewSubTrackId()
	if err := m.send(command.AddSubTrack{Id: id, Track: mixer.NewTrack(settings)}); err != nil {
		return mixer.SubTrackId{}, fmt.Errorf("adding sub-track: %w", err)
	}

	m.subTracks[id] = settings.Name
	if settings.Name != "" {
		m.trackNames[settings.Name] = id
	}
	return id, nil
}

// RemoveSubTrack drops the sub-track and frees its name.
func (m *Manager) RemoveSubTrack(id mixer.SubTrackId) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	name, ok := m.subTracks[id]
	if !ok {
		return fmt.Errorf("removing sub-track %d: %w", id.Index(), ErrUnknownSubTrack)
	}
	if err := m.send(command.RemoveSubTrack{Id: id}); err != nil {
		return fmt.Errorf("removing sub-track: %w", err)
	}

	delete(m.subTracks, id)
	if name != "" {
		delete(m.trackNames, name)
	}
	return nil
}

func (m *Manager) SetTrackVolume(index mixer.TrackIndex, volume float64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.checkTrack(index); err != nil {
		return err
	}
	return m.send(command.SetTrackVolume{Track: index, Volume: volume})
}

// AddEffect appends effect to the chain of the track index refers to.
func (m *Manager) AddEffect(index mixer.TrackIndex, effect mixer.Effect, settings mixer.EffectSettings) (mixer.EffectId, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.checkTrack(index); err != nil {
		return mixer.EffectId{}, err
	}

	id := mixer.NewEffectId(index)
	cmd := command.AddEffect{Track: index, Id: id, Effect: effect, Settings: settings}
	if err := m.send(cmd); err != nil {
		return mixer.EffectId{}, fmt.Errorf("adding effect: %w", err)
	}
	return id, nil
}

func (m *Manager) RemoveEffect(id mixer.EffectId) error {
	return m.send(command.RemoveEffect{Id: id})
}

func (m *Manager) SetEffectEnabled(id mixer.EffectId, enabled bool) error {
	return m.send(command.SetEffectEnabled{Id: id, Enabled: enabled})
}

// AddGroup registers a group, optionally named, under the given parents.
func (m *Manager) AddGroup(name string, parents group.Set) (group.Id, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.groups) >= m.cfg.Capacities.Groups {
		return group.Id{}, fmt.Errorf("adding group: %w", ErrCapacityExceeded)
	}
	if _, taken := m.groupNames[name]; name != "" && taken {
		return group.Id{}, fmt.Errorf("adding group %q: %w", name, ErrDuplicateGroupName)
	}
	if err := m.checkGroups(parents); err != nil {
		return group.Id{}, err
	}

	id := group.NewId()
	if err := m.send(command.AddGroup{Id: id, Group: group.New(name, parents)}); err != nil {
		return group.Id{}, fmt.Errorf("adding group: %w", err)
	}

	m.groups[id] = name
	if name != "" {
		m.groupNames[name] = id
	}
	return id, nil
}

func (m *Manager) RemoveGroup(l group.Label) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	id, err := m.resolveGroup(l)
	if err != nil {
		return err
	}
	if err := m.send(command.RemoveGroup{Id: id}); err != nil {
		return fmt.Errorf("removing group: %w", err)
	}

	if name := m.groups[id]; name != "" {
		delete(m.groupNames, name)
	}
	delete(m.groups, id)
	return nil
}

// PauseGroup pauses every instance in the group or any of its descendants.
func (m *Manager) PauseGroup(l group.Label) error {
	return m.groupCommand(l, func(id group.Id) command.Command { return command.PauseGroup{Id: id} })
}

func (m *Manager) ResumeGroup(l group.Label) error {
	return m.groupCommand(l, func(id group.Id) command.Command { return command.ResumeGroup{Id: id} })
}

func (m *Manager) StopGroup(l group.Label) error {
	return m.groupCommand(l, func(id group.Id) command.Command { return command.StopGroup{Id: id} })
}

func (m *Manager) groupCommand(l group.Label, build func(group.Id) command.Command) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	id, err := m.resolveGroup(l)
	if err != nil {
		return err
	}
	return m.send(build(id))
}

// AddStream attaches s to a track. The backend owns it from then on and
// closes it through the collector once it is removed or finished.
func (m *Manager) AddStream(index mixer.TrackIndex, s stream.Stream) (stream.Id, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.checkTrack(index); err != nil {
		return stream.Id{}, err
	}

	id := stream.NewId()
	if err := m.send(command.AddStream{Id: id, Track: index, Stream: s}); err != nil {
		return stream.Id{}, fmt.Errorf("adding stream: %w", err)
	}
	return id, nil
}

// OpenStream starts decoding src in the background and attaches it to a
// track. src is closed if the stream cannot be attached.
func (m *Manager) OpenStream(ctx context.Context, index mixer.TrackIndex, src audio.Source) (stream.Id, error) {
	s, err := stream.NewSourceStream(ctx, src, m.cfg.SampleRate, m.cfg.StreamBufferFrames)
	if err != nil {
		return stream.Id{}, errors.Join(err, src.Close())
	}

	id, err := m.AddStream(index, s)
	if err != nil {
		return stream.Id{}, errors.Join(err, s.Close())
	}
	return id, nil
}

func (m *Manager) RemoveStream(id stream.Id) error {
	return m.send(command.RemoveStream{Id: id})
}

// SetParameter updates a value read by parameter-driven effect settings.
func (m *Manager) SetParameter(id parameter.Id, value float64) error {
	return m.send(command.SetParameter{Id: id, Value: value})
}

// checkTrack refuses sub-tracks and names that are not bound on the
// control side, and the zero TrackIndex. The caller holds mtx.
func (m *Manager) checkTrack(index mixer.TrackIndex) error {
	if !index.IsSet() {
		return ErrNoTrack
	}
	if id, ok := index.SubTrack(); ok {
		if _, ok := m.subTracks[id]; !ok {
			return fmt.Errorf("sub-track %d: %w", id.Index(), ErrUnknownSubTrack)
		}
		return nil
	}
	name, ok := index.Name()
	if !ok {
		return nil
	}
	if _, ok := m.trackNames[name]; !ok {
		return fmt.Errorf("track %q: %w", name, ErrNoTrackWithName)
	}
	return nil
}

func (m *Manager) checkGroups(s group.Set) error {
	for _, l := range s.Labels() {
		if _, err := m.resolveGroup(l); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) resolveGroup(l group.Label) (group.Id, error) {
	if name, ok := l.Name(); ok {
		id, ok := m.groupNames[name]
		if !ok {
			return group.Id{}, fmt.Errorf("group %q: %w", name, ErrNoGroupWithName)
		}
		return id, nil
	}

	id, _ := l.Id()
	if _, ok := m.groups[id]; !ok {
		return group.Id{}, fmt.Errorf("group %d: %w", id.Index(), ErrNoGroupWithName)
	}
	return id, nil
}
