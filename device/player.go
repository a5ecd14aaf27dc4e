// SPDX-License-Identifier: EPL-2.0

// Package device connects the render loop to an audio output.
//
// Player drives a Renderer from the oto/v3 callback. Render does the same
// work offline for tests and file export.
package device

import (
	"fmt"
	"sync"

	"github.com/decred/slog"
	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audmix/config"
)

var log = slog.Disabled

// UseLogger sets the logger used by the device package.
func UseLogger(logger slog.Logger) { log = logger }

// Player owns the oto context and player. oto allows a single context
// per process.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	reader *Reader

	mtx    sync.Mutex
	closed bool
}

// Open creates the output at the configured rate and layout and starts
// pulling frames from r.
func Open(r Renderer, cfg config.Config) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.Device.BufferDuration,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready

	p := &Player{
		ctx:    ctx,
		reader: NewReader(r, cfg.Channels, cfg.Device.Gain),
	}
	p.player = ctx.NewPlayer(p.reader)
	p.player.Play()

	log.Infof("Audio output open: %d Hz, %d channels, %v buffer",
		cfg.SampleRate, cfg.Channels, cfg.Device.BufferDuration)
	return p, nil
}

// Err reports a failure of the underlying device, if any.
func (p *Player) Err() error {
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	return nil
}

func (p *Player) Pause() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.player.Pause()
	return nil
}

func (p *Player) Resume() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.player.Play()
	return nil
}

// Close stops playback. The oto context itself lives until process exit.
func (p *Player) Close() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	log.Debugf("Audio output closed")
	return nil
}
