package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/valerio/go-pod/pod"
	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/backend"
	"github.com/valerio/go-pod/pod/backend/headless"
	"github.com/valerio/go-pod/pod/backend/panel"
	"github.com/valerio/go-pod/pod/backend/speaker"
	"github.com/valerio/go-pod/pod/backend/wavout"
	"github.com/valerio/go-pod/pod/config"
	"github.com/valerio/go-pod/pod/sim"
	"github.com/valerio/go-pod/pod/storage"
	"github.com/valerio/go-pod/pod/timing"
)

// slice is the stretch of virtual time simulated between two front end
// updates.
const slice = 10 * time.Millisecond

func main() {
	app := cli.NewApp()
	app.Name = "pod"
	app.Description = "Host simulator for the Daisy Pod dual-rate audio firmware"
	app.Usage = "pod [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "profile",
			Usage: "Build profile: diagnostic or production (overrides the config file)",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a config file",
			Value: "pod.yaml",
		},
		cli.StringFlag{
			Name:  "card",
			Usage: "Directory served as the SD card root",
			Value: ".",
		},
		cli.StringFlag{
			Name:  "wave",
			Usage: "Sample file to load from the card root at boot",
		},
		cli.Float64Flag{
			Name:  "seconds",
			Usage: "Seconds of audio to run in headless mode",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "Capture the codec output to this .wav file",
		},
		cli.BoolFlag{
			Name:  "play",
			Usage: "Play the codec output on the host sound card (runs in real time)",
		},
		cli.BoolFlag{
			Name:  "panel",
			Usage: "Show the interactive terminal front panel",
		},
		cli.StringFlag{
			Name:  "pacing",
			Usage: "Real-time pacing: auto, none, adaptive or ticker",
			Value: "auto",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: none, error, warn, info or debug (overrides the profile)",
		},
	}
	app.Action = runInstrument

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running instrument", "error", err)
		os.Exit(1)
	}
}

func runInstrument(c *cli.Context) error {
	settings, err := config.Load(c.String("config"), c.String("profile"))
	if err != nil {
		return err
	}

	level := settings.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logFile, err := config.ConfigureLogger(level, settings.LogFile)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	slog.Info("Configuration loaded", "settings", settings.String())

	sinks, closeSinks, err := openSinks(c, settings.SampleRate)
	if err != nil {
		return err
	}
	defer closeSinks()

	board := sim.NewBoard(storage.NewDirFS(c.String("card")), sinks)

	// The front end goes up first: the panel replaces the default logger and
	// boot records belong in its log pane.
	var be backend.Backend
	switch {
	case c.Bool("panel"):
		be = panel.New(nil)
	default:
		be = headless.New(time.Duration(c.Float64("seconds") * float64(time.Second)))
	}
	if err := be.Init(backend.Config{Title: "Daisy Pod", Board: board}); err != nil {
		return err
	}
	defer be.Cleanup()

	inst, err := pod.New(settings.Profile, pod.SimPeripherals(board))
	if err != nil {
		return err
	}

	wave := settings.WaveFile
	if c.IsSet("wave") {
		wave = c.String("wave")
	}
	if _, err := inst.LoadWave(wave); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		slog.Warn("No sample file on card, input is silent", "file", wave)
	}
	board.Codec.SetSource(inst.Samples())

	lim, err := newLimiter(c.String("pacing"), c.Bool("panel"), c.Bool("play"))
	if err != nil {
		return err
	}
	if t, ok := lim.(*timing.TickerLimiter); ok {
		defer t.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = inst.Run(ctx, lim, be)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	view := inst.View()
	slog.Info("Stopped",
		"elapsed", view.Elapsed,
		"blocks", view.Audio.Blocks,
		"overruns", view.Audio.Overruns,
		"control_cycles", inst.Poller().Cycles(),
		"adc_failures", inst.Poller().ReadFailures())
	return err
}

// ErrUnpacedPlayback rejects playing through the sound card without real-time
// pacing: the speaker ring fills within its buffered span and the engine
// mutes for good.
var ErrUnpacedPlayback = errors.New("--play needs real-time pacing")

// newLimiter picks the pacing for the run loop. auto runs in real time only
// when someone is listening or watching.
func newLimiter(name string, panel, play bool) (timing.Limiter, error) {
	switch strings.ToLower(name) {
	case "auto":
		if panel || play {
			return timing.NewAdaptiveLimiter(slice), nil
		}
		return timing.NewNoOpLimiter(slice), nil
	case "none":
		if play {
			return nil, ErrUnpacedPlayback
		}
		return timing.NewNoOpLimiter(slice), nil
	case "adaptive":
		return timing.NewAdaptiveLimiter(slice), nil
	case "ticker":
		return timing.NewTickerLimiter(slice), nil
	default:
		return nil, fmt.Errorf("unknown pacing %q", name)
	}
}

// tee fans every block out to several sinks. The first failure wins.
type tee []audio.BlockSink

func (t tee) WriteBlock(out audio.Block) error {
	for _, s := range t {
		if err := s.WriteBlock(out); err != nil {
			return err
		}
	}
	return nil
}

func openSinks(c *cli.Context, sampleRate int) (audio.BlockSink, func(), error) {
	var (
		sinks   tee
		closers []func() error
	)
	closeAll := func() {
		for _, fn := range closers {
			if err := fn(); err != nil {
				slog.Error("Failed to close audio sink", "error", err)
			}
		}
	}

	if path := c.String("out"); path != "" {
		w, err := wavout.Create(path, sampleRate)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, w)
		closers = append(closers, w.Close)
		slog.Info("Capturing output", "path", path)
	}

	if c.Bool("play") {
		s, err := speaker.New(sampleRate, sampleRate/4)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("speaker: %w", err)
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}

	if len(sinks) == 0 {
		return nil, closeAll, nil
	}
	return sinks, closeAll, nil
}
