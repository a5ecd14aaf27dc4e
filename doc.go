// SPDX-License-Identifier: EPL-2.0

// Package audmix is the control side of a real-time audio mixing engine.
//
// A Manager owns a backend that renders one stereo frame per call and a
// bounded command queue that carries every change to it. Application code
// talks to the Manager from any goroutine; the device (or an offline
// renderer) calls the backend from the audio thread:
//
//	m, _ := audmix.New(config.Default())
//	go m.Run(ctx) // disposes of removed resources
//
//	snd, _ := sound.Open(reg, "hit.wav")
//	sid, _ := m.AddSound(snd)
//	_, _ = m.Play(sid, instance.DefaultSettings())
//
//	player, _ := device.Open(m.Backend(), m.Config())
//	defer player.Close()
//
// # Tracks and effects
//
// Instances and streams feed a track of the mixer: the main track, a
// sub-track by id, or a sub-track by name. Sub-tracks are summed into the
// main track after their effect chains run:
//
//	_, _ = m.AddSubTrack(mixer.TrackSettings{Volume: 0.8, Name: "sfx"})
//	_, _ = m.AddEffect(mixer.Named("sfx"), filter.New(filter.DefaultSettings()),
//		mixer.DefaultEffectSettings())
//
// # Groups
//
// Groups form a hierarchy used for batch control. Pausing a group pauses
// every instance that belongs to it directly or through a descendant.
//
// # Errors
//
// Methods fail fast with command.ErrChannelFull when the render thread has
// not caught up yet; callers may retry. Everything the backend could not
// apply is counted in Stats instead of being reported.
package audmix
