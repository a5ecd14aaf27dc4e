// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"math"
	"testing"

	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/group"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/parameter"
	"github.com/ik5/audmix/resource"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/stream"
)

const testRate = 100

type recorder struct {
	got []resource.Resource
}

func (r *recorder) Reclaim(res resource.Resource) bool {
	r.got = append(r.got, res)
	return true
}

func (r *recorder) kinds() []resource.Kind {
	out := make([]resource.Kind, len(r.got))
	for i, res := range r.got {
		out[i] = res.Kind
	}
	return out
}

type gain struct{ k float32 }

func (g gain) Process(_ float64, in frame.Frame, _ *parameter.Parameters) frame.Frame {
	return in.Scale(g.k)
}

// constStream yields f for n frames, then reports itself finished.
type constStream struct {
	f frame.Frame
	n int
}

func (s *constStream) Next(float64) frame.Frame {
	if s.n <= 0 {
		return frame.Silence
	}
	s.n--
	return s.f
}

func (s *constStream) Finished() bool { return s.n <= 0 }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SampleRate = testRate
	cfg.Capacities.Commands = 32
	return cfg
}

func newTestBackend(t *testing.T, cfg config.Config) (*Backend, *command.Sender, *recorder) {
	t.Helper()

	tx, rx := command.New(cfg.Capacities.Commands)
	rec := &recorder{}
	return New(cfg, rx, rec), tx, rec
}

func send(t *testing.T, tx *command.Sender, cmds ...command.Command) {
	t.Helper()

	for _, c := range cmds {
		if err := tx.Send(c); err != nil {
			t.Fatalf("Send(%T) = %v", c, err)
		}
	}
}

// constSound lasts seconds at testRate. It has no cooldown, so tests can
// start it several times per tick.
func constSound(v float32, seconds int) *sound.Sound {
	frames := make([]frame.Frame, seconds*testRate)
	for i := range frames {
		frames[i] = frame.FromMono(v)
	}
	return sound.New(testRate, frames, sound.Settings{DefaultTrack: mixer.Main})
}

func near(a, b frame.Frame) bool {
	const eps = 1e-4
	return math.Abs(float64(a.Left-b.Left)) < eps && math.Abs(float64(a.Right-b.Right)) < eps
}

func startCommand(sid sound.Id, s *sound.Sound, settings instance.Settings) (instance.Id, command.StartInstance) {
	id := instance.NewId()
	return id, command.StartInstance{Id: id, Instance: instance.New(sid, s, settings)}
}

func TestProcess_SameBatchOrdering(t *testing.T) {
	t.Parallel()

	b, tx, _ := newTestBackend(t, testConfig())

	sid, s := sound.NewId(), constSound(0.25, 1)
	settings := instance.DefaultSettings()
	settings.Track = mixer.Named("sfx")
	_, start := startCommand(sid, s, settings)

	trackSettings := mixer.DefaultTrackSettings()
	trackSettings.Name = "sfx"

	send(t, tx,
		command.AddSound{Id: sid, Sound: s},
		command.AddSubTrack{Id: mixer.NewSubTrackId(), Track: mixer.NewTrack(trackSettings)},
		command.AddEffect{
			Track:    mixer.Named("sfx"),
			Id:       mixer.NewEffectId(mixer.Named("sfx")),
			Effect:   gain{k: 2},
			Settings: mixer.DefaultEffectSettings(),
		},
		start,
	)

	got := b.Process()
	if want := frame.FromMono(0.5); !near(got, want) {
		t.Errorf("Process() = %+v, want %+v", got, want)
	}

	st := b.Stats().Snapshot()
	if st.Applied != 4 || st.Ignored != 0 || st.Rejected != 0 || st.Ticks != 1 {
		t.Errorf("Stats = %+v, want 4 applied in 1 tick", st)
	}
}

func TestProcess_FIFO(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		addFirst  bool
		subTracks int
		ignored   uint64
	}{
		{name: "add then remove", addFirst: true, subTracks: 0, ignored: 0},
		{name: "remove then add", addFirst: false, subTracks: 1, ignored: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, tx, _ := newTestBackend(t, testConfig())
			id := mixer.NewSubTrackId()
			add := command.AddSubTrack{Id: id, Track: mixer.NewTrack(mixer.DefaultTrackSettings())}
			remove := command.RemoveSubTrack{Id: id}

			if tt.addFirst {
				send(t, tx, add, remove)
			} else {
				send(t, tx, remove, add)
			}
			b.Process()

			if got := b.mixer.SubTracks(); got != tt.subTracks {
				t.Errorf("SubTracks() = %d, want %d", got, tt.subTracks)
			}
			if got := b.Stats().Snapshot().Ignored; got != tt.ignored {
				t.Errorf("Ignored = %d, want %d", got, tt.ignored)
			}
		})
	}
}

func TestStartInstance(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Capacities.Instances = 2
	b, tx, _ := newTestBackend(t, cfg)

	sid, s := sound.NewId(), constSound(0.1, 10)
	send(t, tx, command.AddSound{Id: sid, Sound: s})

	// unknown sound
	_, orphan := startCommand(sound.NewId(), s, instance.DefaultSettings())
	send(t, tx, orphan)

	for range 3 {
		_, c := startCommand(sid, s, instance.DefaultSettings())
		send(t, tx, c)
	}
	b.Process()

	if got := b.instances.Len(); got != 2 {
		t.Errorf("instances = %d, want 2", got)
	}
	st := b.Stats().Snapshot()
	if st.Applied != 3 || st.Ignored != 1 || st.Rejected != 1 {
		t.Errorf("Stats = %+v, want 3 applied, 1 ignored, 1 rejected", st)
	}

	if got, want := b.Process(), frame.FromMono(0.2); !near(got, want) {
		t.Errorf("two instances mixed = %+v, want %+v", got, want)
	}
}

func TestInstance_Lifecycle(t *testing.T) {
	t.Parallel()

	b, tx, _ := newTestBackend(t, testConfig())
	sid, s := sound.NewId(), constSound(0.5, 10)
	id, start := startCommand(sid, s, instance.DefaultSettings())
	send(t, tx, command.AddSound{Id: sid, Sound: s}, start)
	b.Process()

	send(t, tx, command.PauseInstance{Id: id})
	if got := b.Process(); got != frame.Silence {
		t.Errorf("paused Process() = %+v, want silence", got)
	}

	send(t, tx,
		command.ResumeInstance{Id: id},
		command.SetInstanceVolume{Id: id, Volume: 0.5},
	)
	if got, want := b.Process(), frame.FromMono(0.25); !near(got, want) {
		t.Errorf("resumed Process() = %+v, want %+v", got, want)
	}

	send(t, tx, command.StopInstance{Id: id}, command.StopInstance{Id: instance.NewId()})
	b.Process()
	if got := b.instances.Len(); got != 0 {
		t.Errorf("instances after stop = %d, want 0", got)
	}
	if got := b.Stats().Snapshot().Ignored; got != 1 {
		t.Errorf("Ignored = %d, want 1", got)
	}
}

func TestSetInstancePlaybackRate(t *testing.T) {
	t.Parallel()

	b, tx, _ := newTestBackend(t, testConfig())
	sid, s := sound.NewId(), constSound(0.5, 10)
	id, start := startCommand(sid, s, instance.DefaultSettings())
	send(t, tx,
		command.AddSound{Id: sid, Sound: s},
		start,
		command.SetInstancePlaybackRate{Id: id, Rate: instance.Semitones(12)},
	)
	b.Process()

	inst, ok := b.instances.Get(id)
	if !ok {
		t.Fatal("instance missing")
	}
	if got, want := inst.Position(), 2.0/testRate; math.Abs(got-want) > 1e-9 {
		t.Errorf("Position() = %v, want %v", got, want)
	}
}

func TestStartInstance_Cooldown(t *testing.T) {
	t.Parallel()

	b, tx, _ := newTestBackend(t, testConfig())
	sid := sound.NewId()
	s := constSound(0.25, 10).WithSettings(sound.Settings{DefaultTrack: mixer.Main, Cooldown: 0.025})

	start := func() command.StartInstance {
		_, c := startCommand(sid, s, instance.DefaultSettings())
		return c
	}

	send(t, tx, command.AddSound{Id: sid, Sound: s}, start(), start())
	if got, want := b.Process(), frame.FromMono(0.25); !near(got, want) {
		t.Errorf("same-instant double start = %+v, want a single instance at %+v", got, want)
	}

	tests := []struct {
		tick    int
		started bool
	}{
		{tick: 2, started: false},
		{tick: 3, started: false},
		{tick: 4, started: true},
	}
	for _, tt := range tests {
		before := b.instances.Len()
		send(t, tx, start())
		b.Process()

		if started := b.instances.Len() > before; started != tt.started {
			t.Errorf("tick %d: started = %v, want %v", tt.tick, started, tt.started)
		}
	}

	st := b.Stats().Snapshot()
	if st.Applied != 3 || st.Suppressed != 3 {
		t.Errorf("Stats = %+v, want 3 applied, 3 suppressed", st)
	}
}

func TestProcess_DropsUnroutable(t *testing.T) {
	t.Parallel()

	b, tx, rec := newTestBackend(t, testConfig())
	sid, s := sound.NewId(), constSound(0.5, 10)
	sub := mixer.NewSubTrackId()

	settings := instance.DefaultSettings()
	settings.Track = mixer.Sub(sub)
	_, start := startCommand(sid, s, settings)
	ghost := &constStream{f: frame.FromMono(1), n: math.MaxInt}

	send(t, tx,
		command.AddSound{Id: sid, Sound: s},
		command.AddSubTrack{Id: sub, Track: mixer.NewTrack(mixer.DefaultTrackSettings())},
		start,
		command.RemoveSubTrack{Id: sub},
		command.AddStream{Id: stream.NewId(), Track: mixer.Named("ghost"), Stream: ghost},
	)
	if got := b.Process(); got != frame.Silence {
		t.Errorf("Process() = %+v, want silence", got)
	}

	if b.instances.Len() != 0 || b.streams.Len() != 0 {
		t.Errorf("%d instances and %d streams left, want none", b.instances.Len(), b.streams.Len())
	}
	if st := b.Stats().Snapshot(); st.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", st.Dropped)
	}
	if got := rec.got[len(rec.got)-1]; got.Kind != resource.KindStream || got.Value != ghost {
		t.Errorf("last reclaimed = %v, want the unroutable stream", got.Kind)
	}
}

func TestRemoveSound_StopsInstances(t *testing.T) {
	t.Parallel()

	b, tx, rec := newTestBackend(t, testConfig())
	keep, gone := sound.NewId(), sound.NewId()
	ks, gs := constSound(0.1, 10), constSound(0.1, 10)

	_, c1 := startCommand(keep, ks, instance.DefaultSettings())
	_, c2 := startCommand(gone, gs, instance.DefaultSettings())
	_, c3 := startCommand(gone, gs, instance.DefaultSettings())
	send(t, tx,
		command.AddSound{Id: keep, Sound: ks},
		command.AddSound{Id: gone, Sound: gs},
		c1, c2, c3,
	)
	b.Process()

	send(t, tx, command.RemoveSound{Id: gone})
	b.Process()

	if got := b.instances.Len(); got != 1 {
		t.Errorf("instances = %d, want 1", got)
	}
	if b.sounds.Contains(gone) {
		t.Error("removed sound still held")
	}
	if len(rec.got) != 1 || rec.got[0].Kind != resource.KindSound || rec.got[0].Value != gs {
		t.Errorf("reclaimed %v, want the removed sound", rec.kinds())
	}
}

func TestAddSound_Rejected(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Capacities.Sounds = 1
	b, tx, rec := newTestBackend(t, cfg)

	sid := sound.NewId()
	send(t, tx,
		command.AddSound{Id: sid, Sound: constSound(0, 1)},
		command.AddSound{Id: sid, Sound: constSound(0, 1)},
		command.AddSound{Id: sound.NewId(), Sound: constSound(0, 1)},
	)
	b.Process()

	if got := b.Stats().Snapshot().Rejected; got != 2 {
		t.Errorf("Rejected = %d, want 2", got)
	}
	if len(rec.got) != 2 {
		t.Errorf("reclaimed %d sounds, want 2", len(rec.got))
	}
}

func TestAddEffect_UnknownTrack(t *testing.T) {
	t.Parallel()

	b, tx, rec := newTestBackend(t, testConfig())
	send(t, tx, command.AddEffect{
		Track:    mixer.Named("nope"),
		Id:       mixer.NewEffectId(mixer.Named("nope")),
		Effect:   gain{k: 0},
		Settings: mixer.DefaultEffectSettings(),
	})
	b.Process()

	if got := b.Stats().Snapshot().Ignored; got != 1 {
		t.Errorf("Ignored = %d, want 1", got)
	}
	if len(rec.got) != 1 || rec.got[0].Kind != resource.KindEffectSlot {
		t.Errorf("reclaimed %v, want one effect slot", rec.kinds())
	}
}

func TestTrackAndEffectControl(t *testing.T) {
	t.Parallel()

	b, tx, _ := newTestBackend(t, testConfig())
	sid, s := sound.NewId(), constSound(0.5, 10)
	_, start := startCommand(sid, s, instance.DefaultSettings())
	eid := mixer.NewEffectId(mixer.Main)
	send(t, tx,
		command.AddSound{Id: sid, Sound: s},
		start,
		command.AddEffect{Track: mixer.Main, Id: eid, Effect: gain{k: 0}, Settings: mixer.DefaultEffectSettings()},
	)
	if got := b.Process(); got != frame.Silence {
		t.Errorf("muted by effect = %+v, want silence", got)
	}

	send(t, tx,
		command.SetEffectEnabled{Id: eid, Enabled: false},
		command.SetTrackVolume{Track: mixer.Main, Volume: 0.5},
	)
	if got, want := b.Process(), frame.FromMono(0.25); !near(got, want) {
		t.Errorf("effect bypassed = %+v, want %+v", got, want)
	}

	send(t, tx, command.RemoveEffect{Id: eid}, command.RemoveEffect{Id: eid})
	b.Process()
	if st := b.Stats().Snapshot(); st.Ignored != 1 {
		t.Errorf("second RemoveEffect: Ignored = %d, want 1", st.Ignored)
	}
}

func TestReclaimFull_DoesNotBlock(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	tx, rx := command.New(cfg.Capacities.Commands)
	sender, collector := resource.NewChannel(1)
	b := New(cfg, rx, sender)

	ids := []mixer.SubTrackId{mixer.NewSubTrackId(), mixer.NewSubTrackId(), mixer.NewSubTrackId()}
	for _, id := range ids {
		send(t, tx, command.AddSubTrack{Id: id, Track: mixer.NewTrack(mixer.DefaultTrackSettings())})
	}
	b.Process()

	for _, id := range ids {
		send(t, tx, command.RemoveSubTrack{Id: id})
	}
	b.Process()

	if got := b.mixer.SubTracks(); got != 0 {
		t.Errorf("SubTracks() = %d, want 0", got)
	}
	if sender.Sent() != 1 || sender.Leaked() != 2 {
		t.Errorf("Sent = %d, Leaked = %d, want 1 and 2", sender.Sent(), sender.Leaked())
	}
	if n := collector.Drain(); n != 1 {
		t.Errorf("Drain() = %d, want 1", n)
	}
}

func TestGroups(t *testing.T) {
	t.Parallel()

	b, tx, rec := newTestBackend(t, testConfig())

	parent, child, music := group.NewId(), group.NewId(), group.NewId()
	sid, s := sound.NewId(), constSound(0.1, 10)

	inChild := instance.DefaultSettings()
	inChild.Groups = group.NewSet(group.ById(child))
	inMusic := instance.DefaultSettings()
	inMusic.Groups = group.NewSet(group.ByName("music"))

	a, startA := startCommand(sid, s, inChild)
	m, startM := startCommand(sid, s, inMusic)
	free, startFree := startCommand(sid, s, instance.DefaultSettings())

	send(t, tx,
		command.AddGroup{Id: parent, Group: group.New("", group.Set{})},
		command.AddGroup{Id: child, Group: group.New("", group.NewSet(group.ById(parent)))},
		command.AddGroup{Id: music, Group: group.New("music", group.NewSet(group.ById(parent)))},
		command.AddGroup{Id: group.NewId(), Group: group.New("music", group.Set{})},
		command.AddSound{Id: sid, Sound: s},
		startA, startM, startFree,
	)
	b.Process()
	if got := b.Stats().Snapshot().Rejected; got != 1 {
		t.Errorf("duplicate group name: Rejected = %d, want 1", got)
	}

	state := func(id instance.Id) instance.State {
		t.Helper()
		inst, ok := b.instances.Get(id)
		if !ok {
			return instance.Stopped
		}
		return inst.State()
	}

	send(t, tx, command.PauseGroup{Id: parent})
	b.Process()
	if state(a) != instance.Paused || state(m) != instance.Paused || state(free) != instance.Playing {
		t.Errorf("after PauseGroup(parent): %v %v %v", state(a), state(m), state(free))
	}

	send(t, tx, command.ResumeGroup{Id: child})
	b.Process()
	if state(a) != instance.Playing || state(m) != instance.Paused {
		t.Errorf("after ResumeGroup(child): %v %v", state(a), state(m))
	}

	send(t, tx, command.StopGroup{Id: music}, command.StopGroup{Id: group.NewId()})
	b.Process()
	if state(m) != instance.Stopped || b.instances.Len() != 2 {
		t.Errorf("after StopGroup(music): %v with %d live", state(m), b.instances.Len())
	}

	send(t, tx, command.RemoveGroup{Id: parent})
	b.Process()
	send(t, tx, command.StopGroup{Id: parent})
	b.Process()
	if state(a) != instance.Playing {
		t.Error("StopGroup on a removed group reached its old members")
	}
	if kinds := rec.kinds(); len(kinds) != 2 || kinds[0] != resource.KindGroup || kinds[1] != resource.KindGroup {
		t.Errorf("reclaimed %v, want the rejected and the removed group", kinds)
	}
}

func TestStreams(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Capacities.Streams = 1
	b, tx, rec := newTestBackend(t, cfg)

	finite := &constStream{f: frame.New(0.5, -0.5), n: 2}
	send(t, tx,
		command.AddStream{Id: stream.NewId(), Track: mixer.Main, Stream: finite},
		command.AddStream{Id: stream.NewId(), Track: mixer.Main, Stream: &constStream{n: 1}},
	)

	if got := b.Process(); got != finite.f {
		t.Errorf("first frame = %+v, want %+v", got, finite.f)
	}
	if got := b.Process(); got != finite.f {
		t.Errorf("second frame = %+v, want %+v", got, finite.f)
	}
	if got := b.Process(); got != frame.Silence {
		t.Errorf("after detach = %+v, want silence", got)
	}

	st := b.Stats().Snapshot()
	if st.Rejected != 1 || st.Detached != 1 || b.streams.Len() != 0 {
		t.Errorf("Stats = %+v with %d streams, want 1 rejected, 1 detached, none left", st, b.streams.Len())
	}
	if len(rec.got) != 2 || rec.got[1].Value != finite {
		t.Errorf("reclaimed %v, want the rejected then the finished stream", rec.kinds())
	}
}

func TestRemoveStream(t *testing.T) {
	t.Parallel()

	b, tx, rec := newTestBackend(t, testConfig())
	id := stream.NewId()
	s := &constStream{f: frame.FromMono(1), n: math.MaxInt}
	send(t, tx, command.AddStream{Id: id, Track: mixer.Main, Stream: s})
	b.Process()

	send(t, tx, command.RemoveStream{Id: id}, command.RemoveStream{Id: id})
	if got := b.Process(); got != frame.Silence {
		t.Errorf("Process() after RemoveStream = %+v, want silence", got)
	}
	if st := b.Stats().Snapshot(); st.Applied != 2 || st.Ignored != 1 {
		t.Errorf("Stats = %+v, want 2 applied, 1 ignored", st)
	}
	if len(rec.got) != 1 || rec.got[0].Kind != resource.KindStream {
		t.Errorf("reclaimed %v, want one stream", rec.kinds())
	}
}

func TestSetParameter(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Capacities.Parameters = 1
	b, tx, _ := newTestBackend(t, cfg)

	p := parameter.NewId()
	send(t, tx,
		command.SetParameter{Id: p, Value: 1},
		command.SetParameter{Id: p, Value: 2},
		command.SetParameter{Id: parameter.NewId(), Value: 3},
	)
	b.Process()

	if v, _ := b.params.Get(p); v != 2 {
		t.Errorf("parameter = %v, want 2", v)
	}
	if got := b.Stats().Snapshot().Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}
}

func TestProcess_ZeroAllocs(t *testing.T) {
	b, tx, _ := newTestBackend(t, testConfig())

	sid, s := sound.NewId(), constSound(0.1, 100)
	trackSettings := mixer.DefaultTrackSettings()
	trackSettings.Name = "sfx"
	settings := instance.DefaultSettings()
	settings.Track = mixer.Named("sfx")
	settings.Panning = 0.3
	_, start := startCommand(sid, s, settings)

	send(t, tx,
		command.AddSound{Id: sid, Sound: s},
		command.AddSubTrack{Id: mixer.NewSubTrackId(), Track: mixer.NewTrack(trackSettings)},
		command.AddEffect{Track: mixer.Main, Id: mixer.NewEffectId(mixer.Main), Effect: gain{k: 0.5}, Settings: mixer.DefaultEffectSettings()},
		command.AddStream{Id: stream.NewId(), Track: mixer.Main, Stream: &constStream{f: frame.FromMono(0.1), n: math.MaxInt}},
		start,
	)
	b.Process()

	allocs := testing.AllocsPerRun(200, func() {
		b.Process()
	})
	if allocs != 0 {
		t.Errorf("Process allocated %v times per tick, want 0", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	cfg := testConfig()
	tx, rx := command.New(cfg.Capacities.Commands)
	be := New(cfg, rx, &recorder{})

	sid, s := sound.NewId(), constSound(0.1, 1000)
	_ = tx.Send(command.AddSound{Id: sid, Sound: s})
	be.Process()
	for range 16 {
		_ = tx.Send(command.StartInstance{Id: instance.NewId(), Instance: instance.New(sid, s, instance.DefaultSettings())})
	}
	be.Process()

	b.ReportAllocs()
	for b.Loop() {
		be.Process()
	}
}
