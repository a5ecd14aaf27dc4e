// SPDX-License-Identifier: EPL-2.0

// Command audmix-play mixes audio files through the engine and plays them
// on the default output device.
//
//	audmix-play [-config file] [-stream] [-lowpass hz] [-delay s] file...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/internal/cli"
	"github.com/ik5/audmix/mixer"
	"golang.org/x/sync/errgroup"
)

// tail keeps the device open after the longest input ends so echoes and
// device buffers can play out.
const tail = 500 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "audmix-play: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML engine configuration")
		logLevel   = flag.String("loglevel", "", "log level, overrides the config")
		streaming  = flag.Bool("stream", false, "decode while playing instead of loading up front")
		duration   = flag.Duration("duration", 0, "stop after this long, 0 plays the inputs to the end")
	)
	var effects cli.Effects
	effects.Register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	longest, err := cli.Start(ctx, m, cli.NewRegistry(), flag.Args(), *streaming)
	if err != nil {
		return err
	}
	if _, err := effects.Apply(m, mixer.Named(cli.InputTrack)); err != nil {
		return fmt.Errorf("adding effects: %w", err)
	}

	playFor := *duration
	if playFor == 0 && longest > 0 {
		playFor = longest + tail
	}

	player, err := device.Open(m.Backend(), cfg)
	if err != nil {
		return err
	}
	log.Infof("Playing %d input(s)", flag.NArg())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx) })
	g.Go(func() error {
		defer stop()
		return wait(gctx, player, playFor)
	})

	err = g.Wait()
	if cerr := player.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	st := m.Stats()
	log.Infof("Rendered %d frames: %d commands applied, %d ignored, %d rejected, %d leaked",
		st.Ticks, st.Applied, st.Ignored, st.Rejected, m.Leaked())
	return err
}

// wait blocks until ctx is done, d elapses or the device fails. A zero d
// waits for ctx only, which suits streamed inputs of unknown length.
func wait(ctx context.Context, player *device.Player, d time.Duration) error {
	var done <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		done = timer.C
	}

	check := time.NewTicker(100 * time.Millisecond)
	defer check.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case <-check.C:
			if err := player.Err(); err != nil {
				return err
			}
		}
	}
}
