// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"io"

	"github.com/ik5/audmix/frame"
	"github.com/ik5/audmix/parameter"
)

// Effect is one DSP stage. Process is called once per tick on the render
// thread and must not allocate, lock or block. Any state lives in the
// effect itself.
type Effect interface {
	Process(dt float64, input frame.Frame, params *parameter.Parameters) frame.Frame
}

type EffectSettings struct {
	// Enabled is whether the effect starts active.
	Enabled bool
}

func DefaultEffectSettings() EffectSettings {
	return EffectSettings{Enabled: true}
}

// EffectSlot is an installed effect plus its enabled flag.
type EffectSlot struct {
	effect  Effect
	enabled bool
}

func NewEffectSlot(effect Effect, settings EffectSettings) *EffectSlot {
	return &EffectSlot{effect: effect, enabled: settings.Enabled}
}

func (s *EffectSlot) Effect() Effect { return s.effect }

func (s *EffectSlot) Enabled() bool { return s.enabled }

func (s *EffectSlot) SetEnabled(enabled bool) { s.enabled = enabled }

// Process is a pass-through while the slot is disabled.
func (s *EffectSlot) Process(dt float64, input frame.Frame, params *parameter.Parameters) frame.Frame {
	if !s.enabled {
		return input
	}
	return s.effect.Process(dt, input, params)
}

// Close releases the effect if it holds anything closable.
func (s *EffectSlot) Close() error {
	if c, ok := s.effect.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// closeAll joins the Close errors of every slot.
func closeAll(slots []*EffectSlot) error {
	var errs []error
	for _, s := range slots {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
