//go:build tinygo && rp2040

package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"github.com/valerio/go-pod/pod"
	"github.com/valerio/go-pod/pod/board/rp2040"
	"github.com/valerio/go-pod/pod/config"
)

func main() {
	profile := config.Diagnostic
	profile.SampleBufferLen = rp2040.ToneLength(profile.SampleRate)

	codec, err := rp2040.NewCodec(profile.BlockSize)
	if err != nil {
		halt("codec", err)
	}
	fs, err := rp2040.NewFlashFS(config.DefaultWaveFile, profile.SampleRate)
	if err != nil {
		halt("flash", err)
	}

	inst, err := pod.New(profile, pod.Peripherals{
		Codec:   codec,
		Timer:   rp2040.Timer{},
		ADC:     rp2040.NewADC(),
		Devices: rp2040.Devices(),
		Card:    rp2040.Flash{},
		FS:      fs,
	})
	if err != nil {
		halt("init", err)
	}
	if _, err := inst.LoadWave(config.DefaultWaveFile); err != nil {
		halt("load", err)
	}
	if err := inst.Start(); err != nil {
		halt("start", err)
	}

	// The I2S FIFO blocks the audio writes, which paces virtual time.
	go func() {
		for {
			inst.Simulate(profile.BlockPeriod())
		}
	}()

	pod.Idle(context.Background())
}

// halt reports a boot failure and blinks the on-board LED forever.
func halt(stage string, err error) {
	slog.Error("Boot failed", "stage", stage, "error", err)
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(50 * time.Millisecond)
		led.Low()
		time.Sleep(50 * time.Millisecond)
	}
}
