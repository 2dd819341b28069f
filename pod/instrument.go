// Package pod assembles the dual-rate instrument: an audio engine serviced
// at block rate and a control poller serviced at control rate, on a
// fixed-priority interrupt controller, fed by a bulk sample load at boot.
package pod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/backend"
	"github.com/valerio/go-pod/pod/cell"
	"github.com/valerio/go-pod/pod/config"
	"github.com/valerio/go-pod/pod/control"
	"github.com/valerio/go-pod/pod/irq"
	"github.com/valerio/go-pod/pod/storage"
	"github.com/valerio/go-pod/pod/timing"
)

var (
	ErrStarted    = errors.New("instrument already started")
	ErrNotStarted = errors.New("instrument not started")
)

// Peripherals is every piece of hardware the instrument takes ownership of.
type Peripherals struct {
	Codec   audio.Codec
	Timer   control.Timer
	ADC     control.ADC
	Devices control.Devices
	Card    storage.Card
	FS      storage.FileSystem

	// LEDs reads back the colors driven on the panel, for front ends.
	LEDs func() [2]control.Color
}

// Instrument is the running firmware.
//
// The peripherals are partitioned once in New: the codec belongs to the
// audio engine, the timer, ADC and panel devices to the control poller, and
// the card to the boot-time loader. The only value crossing priority levels
// afterwards is the control snapshot cell.
type Instrument struct {
	profile config.Profile

	engine *audio.Engine
	poller *control.Poller
	card   *storage.SDCard

	controls *cell.Cell[control.Snapshot]
	leds     func() [2]control.Color

	dispatcher *irq.Dispatcher
	clock      *irq.Clock

	samples []float32
	loaded  int
	started bool
}

// New mounts the card and builds the engine and the poller. A storage
// failure aborts startup.
func New(profile config.Profile, p Peripherals) (*Instrument, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	card, err := storage.NewSDCard(p.Card, p.FS, storage.WithChunkSize(profile.ChunkSize))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	d := irq.New()
	controls := cell.New[control.Snapshot]()
	osc := audio.NewOscillator(profile.Sweep, profile.SampleRate)

	i := &Instrument{
		profile:    profile,
		engine:     audio.NewEngine(p.Codec, profile.Mode, osc, profile.BlockSize),
		card:       card,
		controls:   controls,
		leds:       p.LEDs,
		dispatcher: d,
		clock:      irq.NewClock(d),
		samples:    make([]float32, profile.SampleBufferLen),
	}
	i.poller = control.NewPoller(p.Timer, p.ADC, p.Devices,
		control.WithPublisher(controls),
		control.WithPreemptionPoint(d.Preempt),
	)

	i.indicate(0, control.Green)

	slog.Info("Instrument initialized",
		"component", "pod",
		"profile", profile.Name,
		"mode", profile.Mode,
		"block_size", profile.BlockSize,
		"control_period", profile.ControlPeriod)

	return i, nil
}

// LoadWave bulk-loads a sample file from the card root into the sample
// buffer. It blocks until done and is only allowed before Start.
func (i *Instrument) LoadWave(name string) (int, error) {
	if i.started {
		return 0, ErrStarted
	}
	start := time.Now()
	n, err := i.card.LoadWave(name, i.samples)
	if err != nil {
		return 0, err
	}
	i.loaded = n
	i.indicate(1, control.Blue)
	slog.Info("Wave loaded", "component", "pod", "file", name, "samples", n, "took", time.Since(start))
	return n, nil
}

// Samples is the loaded part of the sample buffer.
func (i *Instrument) Samples() []float32 {
	return i.samples[:i.loaded]
}

// Start installs the two interrupt handlers and starts their clocks. After
// Start the card is no longer used.
func (i *Instrument) Start() error {
	if i.started {
		return ErrStarted
	}
	if err := i.dispatcher.Register(irq.AudioLine, irq.AudioPriority, i.engine.Process); err != nil {
		return err
	}
	if err := i.dispatcher.Register(irq.ControlLine, irq.ControlPriority, i.poller.Poll); err != nil {
		return err
	}
	if err := i.clock.Every(irq.AudioLine, i.profile.BlockPeriod()); err != nil {
		return err
	}
	if err := i.clock.Every(irq.ControlLine, i.profile.ControlPeriod); err != nil {
		return err
	}
	i.started = true
	slog.Debug("Interrupts enabled", "component", "pod", "block_period", i.profile.BlockPeriod())
	return nil
}

// Simulate advances virtual time by d, running every interrupt that comes
// due in strict priority order.
func (i *Instrument) Simulate(d time.Duration) error {
	if !i.started {
		return ErrNotStarted
	}
	i.clock.Advance(d)
	return nil
}

// Run drives the instrument in real time behind b until ctx is done or the
// backend asks to quit. Each limiter period of virtual time is simulated,
// shown, and then waited out.
func (i *Instrument) Run(ctx context.Context, lim timing.Limiter, b backend.Backend) error {
	if !i.started {
		if err := i.Start(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := i.Simulate(lim.Period()); err != nil {
			return err
		}

		events, err := b.Update(i.View())
		if err != nil {
			return fmt.Errorf("backend: %w", err)
		}
		for _, ev := range events {
			switch ev {
			case backend.Quit:
				slog.Info("Quit requested", "component", "pod", "elapsed", i.clock.Now())
				return nil
			case backend.Reset:
				lim.Reset()
			}
		}

		lim.Wait()
	}
}

// Idle is thread mode once the interrupts run on real hardware: it never
// sleeps the processor and returns only when ctx is done.
func Idle(ctx context.Context) {
	for ctx.Err() == nil {
		runtime.Gosched()
	}
}

// View collects the state a front end shows. It is the single reader of the
// control snapshot cell.
func (i *Instrument) View() backend.View {
	snapshot, ok := i.controls.Load()
	v := backend.View{
		Elapsed:  i.clock.Now(),
		Mode:     i.engine.Mode(),
		Audio:    i.engine.Stats(),
		Muted:    i.engine.Muted(),
		Fault:    i.engine.Fault(),
		Pitch:    i.engine.Oscillator().Pitch,
		Controls: snapshot,
		Valid:    ok,
		Loaded:   i.loaded,
	}
	if i.leds != nil {
		v.LEDs = i.leds()
	}
	return v
}

// indicate queues a status color on panel LED n. Only valid before Start,
// while the LEDs are not yet owned by the running poller.
func (i *Instrument) indicate(n int, c control.Color) {
	if leds := i.poller.Devices().LEDs; n < len(leds) {
		leds[n].SetColor(c)
	}
}

func (i *Instrument) Engine() *audio.Engine {
	return i.engine
}

func (i *Instrument) Poller() *control.Poller {
	return i.poller
}

func (i *Instrument) Dispatcher() *irq.Dispatcher {
	return i.dispatcher
}

func (i *Instrument) Profile() config.Profile {
	return i.profile
}
