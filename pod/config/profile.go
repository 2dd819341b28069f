// Package config holds the build profiles of the instrument and the host
// overrides layered on top of them.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/storage"
)

// Profile is a complete set of tunables for one build of the firmware.
type Profile struct {
	Name string

	// ControlPeriod is the interval between two control polls.
	ControlPeriod time.Duration

	Mode       audio.Mode
	Sweep      audio.Sweep
	SampleRate int
	BlockSize  int

	ChunkSize       int
	SampleBufferLen int

	LogLevel string
}

var (
	// Diagnostic polls controls slowly and plays the test sweep with debug
	// logging on.
	Diagnostic = Profile{
		Name:            "diagnostic",
		ControlPeriod:   100 * time.Millisecond,
		Mode:            audio.Synthesis,
		Sweep:           audio.DefaultSweep,
		SampleRate:      audio.SampleRate,
		BlockSize:       audio.DefaultBlockSize,
		ChunkSize:       storage.DefaultChunkSize,
		SampleBufferLen: 10 * audio.SampleRate,
		LogLevel:        "debug",
	}

	// Production polls at 100 Hz and passes the input through.
	Production = Profile{
		Name:            "production",
		ControlPeriod:   10 * time.Millisecond,
		Mode:            audio.Passthrough,
		Sweep:           audio.DefaultSweep,
		SampleRate:      audio.SampleRate,
		BlockSize:       audio.DefaultBlockSize,
		ChunkSize:       storage.DefaultChunkSize,
		SampleBufferLen: 60 * audio.SampleRate,
		LogLevel:        "info",
	}
)

var profiles = map[string]Profile{
	Diagnostic.Name: Diagnostic,
	Production.Name: Production,
}

// Lookup returns the profile called name, case-insensitively.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Validate checks the invariants the rest of the firmware relies on.
func (p Profile) Validate() error {
	switch {
	case p.ControlPeriod <= 0:
		return fmt.Errorf("%w: control period %v", ErrInvalid, p.ControlPeriod)
	case p.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, p.SampleRate)
	case p.BlockSize <= 0:
		return fmt.Errorf("%w: block size %d", ErrInvalid, p.BlockSize)
	case !storage.ValidChunkSize(p.ChunkSize):
		return fmt.Errorf("%w: chunk size %d", ErrInvalid, p.ChunkSize)
	case p.SampleBufferLen < 0:
		return fmt.Errorf("%w: sample buffer length %d", ErrInvalid, p.SampleBufferLen)
	case p.Sweep.Step <= 0 || p.Sweep.Max <= p.Sweep.Base:
		return fmt.Errorf("%w: sweep %+v", ErrInvalid, p.Sweep)
	}
	if _, err := ParseLevel(p.LogLevel); err != nil {
		return err
	}
	return nil
}

// BlockPeriod is how long one audio block lasts.
func (p Profile) BlockPeriod() time.Duration {
	return time.Duration(int64(p.BlockSize) * int64(time.Second) / int64(p.SampleRate))
}
