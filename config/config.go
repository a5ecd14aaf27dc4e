// SPDX-License-Identifier: EPL-2.0

// Package config loads engine settings from YAML.
//
// Every field has a default, so a file only needs the values it changes:
//
//	sample_rate: 44100
//	capacities:
//	  instances: 256
//	device:
//	  gain: 0.8
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Capacities bound every table the render thread owns. Nothing grows
// past them at run time.
type Capacities struct {
	Commands   int `yaml:"commands"`
	Reclaim    int `yaml:"reclaim"`
	Instances  int `yaml:"instances"`
	Sounds     int `yaml:"sounds"`
	SubTracks  int `yaml:"sub_tracks"`
	Effects    int `yaml:"effects_per_track"`
	Groups     int `yaml:"groups"`
	Streams    int `yaml:"streams"`
	Parameters int `yaml:"parameters"`
}

type Device struct {
	// BufferDuration is the latency hint passed to the output device.
	BufferDuration time.Duration `yaml:"buffer_duration"`
	// Gain is applied to every block before clipping.
	Gain float64 `yaml:"gain"`
}

type Config struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	// StreamBufferFrames sizes the ring of each decoded stream.
	StreamBufferFrames int        `yaml:"stream_buffer_frames"`
	Capacities         Capacities `yaml:"capacities"`
	Device             Device     `yaml:"device"`
	LogLevel           string     `yaml:"log_level"`
}

func Default() Config {
	return Config{
		SampleRate:         48000,
		Channels:           2,
		StreamBufferFrames: 8192,
		Capacities: Capacities{
			Commands:   10,
			Reclaim:    100,
			Instances:  100,
			Sounds:     100,
			SubTracks:  100,
			Effects:    8,
			Groups:     100,
			Streams:    16,
			Parameters: 64,
		},
		Device: Device{
			BufferDuration: 20 * time.Millisecond,
			Gain:           1,
		},
		LogLevel: "info",
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d: %w", c.SampleRate, ErrInvalidSampleRate))
	}
	if c.Channels < 1 || c.Channels > 8 {
		errs = append(errs, fmt.Errorf("channels %d: %w", c.Channels, ErrInvalidChannels))
	}
	if c.StreamBufferFrames <= 0 {
		errs = append(errs, fmt.Errorf("stream_buffer_frames %d: %w", c.StreamBufferFrames, ErrInvalidCapacity))
	}

	caps := []struct {
		name  string
		value int
	}{
		{"commands", c.Capacities.Commands},
		{"reclaim", c.Capacities.Reclaim},
		{"instances", c.Capacities.Instances},
		{"sounds", c.Capacities.Sounds},
		{"sub_tracks", c.Capacities.SubTracks},
		{"effects_per_track", c.Capacities.Effects},
		{"groups", c.Capacities.Groups},
		{"streams", c.Capacities.Streams},
		{"parameters", c.Capacities.Parameters},
	}
	for _, cp := range caps {
		if cp.value <= 0 {
			errs = append(errs, fmt.Errorf("capacities.%s %d: %w", cp.name, cp.value, ErrInvalidCapacity))
		}
	}

	if c.Device.Gain < 0 || c.Device.Gain > 4 {
		errs = append(errs, fmt.Errorf("device.gain %v: %w", c.Device.Gain, ErrInvalidGain))
	}
	if c.Device.BufferDuration < 0 {
		errs = append(errs, fmt.Errorf("device.buffer_duration %v: %w", c.Device.BufferDuration, ErrInvalidLatency))
	}

	return errors.Join(errs...)
}

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the file at path with Parse.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders c as YAML, e.g. to write a starting config file.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}
