// SPDX-License-Identifier: EPL-2.0

// Command audmix-render mixes audio files through the engine without an
// output device and writes the result as a 16-bit WAV file.
//
//	audmix-render [-config file] [-o out.wav] [-lowpass hz] file...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/internal/cli"
	"github.com/ik5/audmix/mixer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "audmix-render: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML engine configuration")
		logLevel   = flag.String("loglevel", "", "log level, overrides the config")
		outPath    = flag.String("o", "mix.wav", "output WAV file")
		duration   = flag.Duration("duration", 0, "length to render, 0 renders the longest input")
	)
	var effects cli.Effects
	effects.Register(flag.CommandLine)
	flag.Parse()

	if flag.NArg() == 0 {
		return errors.New("no input files")
	}

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg.Capacities.Commands = max(cfg.Capacities.Commands, cli.CommandBudget(flag.NArg()))
	log, err := cli.SetupLogging(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	m, err := audmix.New(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	longest, err := cli.Start(context.Background(), m, cli.NewRegistry(), flag.Args(), false)
	if err != nil {
		return err
	}
	if _, err := effects.Apply(m, mixer.Named(cli.InputTrack)); err != nil {
		return fmt.Errorf("adding effects: %w", err)
	}

	length := *duration
	if length == 0 {
		length = longest
	}
	frames := framesFor(length, cfg.SampleRate)

	start := time.Now()
	samples := device.Render(m.Backend(), frames, cfg.Channels, cfg.Device.Gain)
	log.Infof("Rendered %v of audio in %v", length, time.Since(start).Round(time.Millisecond))

	// the collector has nothing to wait for offline; drain what was removed
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = m.Run(ctx)

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := wav.WriteWAV16(f, cfg.SampleRate, cfg.Channels, samples); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	st := m.Stats()
	log.Infof("Wrote %s: %d frames, %d commands applied, %d ignored, %d rejected",
		*outPath, frames, st.Applied, st.Ignored, st.Rejected)
	return nil
}

func framesFor(d time.Duration, sampleRate int) int {
	return int(math.Ceil(d.Seconds() * float64(sampleRate)))
}
