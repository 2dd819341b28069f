package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/valerio/go-pod/pod/storage"
)

func main() {
	app := cli.NewApp()
	app.Name = "wavconv"
	app.Description = "Convert a PCM .wav file into the raw sample format loaded from the SD card"
	app.Usage = "wavconv [options] <input.wav> <output.raw>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "channel",
			Usage: "Channel to extract (-1 mixes all channels down to mono)",
			Value: -1,
		},
	}
	app.Action = convert

	if err := app.Run(os.Args); err != nil {
		slog.Error("Conversion failed", "error", err)
		os.Exit(1)
	}
}

func convert(c *cli.Context) error {
	if c.NArg() != 2 {
		cli.ShowAppHelp(c)
		return errors.New("expected an input and an output path")
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	samples, rate, err := decode(in, c.Int("channel"))
	if err != nil {
		return err
	}

	if err := storage.WriteWave(afero.NewOsFs(), out, samples, storage.FixedClock{}); err != nil {
		return err
	}
	slog.Info("Converted", "input", in, "output", out, "samples", len(samples), "sample_rate", rate)
	return nil
}

// decode reads a PCM wav file and returns one channel, or the mono mix, as
// floats in [-1, 1].
func decode(path string, channel int) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	chans := int(dec.NumChans)
	if chans == 0 || dec.BitDepth == 0 {
		return nil, 0, fmt.Errorf("%s: missing format chunk", path)
	}
	if channel >= chans {
		return nil, 0, fmt.Errorf("%s: channel %d out of range, file has %d", path, channel, chans)
	}
	scale := float32(int(1) << (dec.BitDepth - 1))

	frames := len(buf.Data) / chans
	samples := make([]float32, frames)
	for i := range samples {
		frame := buf.Data[i*chans : (i+1)*chans]
		if channel >= 0 {
			samples[i] = float32(frame[channel]) / scale
			continue
		}
		var sum float32
		for _, v := range frame {
			sum += float32(v)
		}
		samples[i] = sum / float32(chans) / scale
	}
	return samples, int(dec.SampleRate), nil
}
