//go:build !headless

// Package speaker plays the codec output on the host sound card.
package speaker

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/ring"
)

// Speaker is an audio.BlockSink backed by the host sound card. Blocks are
// queued in a ring; when the card falls behind and the ring is full the
// block is rejected with audio.ErrSinkFull.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *ring.Ring

	scratch   []float32
	underruns atomic.Uint64 // written by the sound card callback

	mutex sync.Mutex // only for setup/control operations
}

// New opens the default output device. buffered is the number of frames
// the ring can hold ahead of the card.
func New(sampleRate, buffered int) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	s := &Speaker{
		ctx:     ctx,
		ring:    ring.NewRing(2 * buffered),
		scratch: make([]float32, 4096),
	}
	s.player = ctx.NewPlayer(s)
	s.player.Play()

	slog.Info("Speaker opened", "sample_rate", sampleRate, "buffered_frames", buffered)
	return s, nil
}

func (s *Speaker) WriteBlock(out audio.Block) error {
	if !s.ring.PushBlock(out) {
		return audio.ErrSinkFull
	}
	return nil
}

// Read is called by the sound card. Missing samples are played as silence.
func (s *Speaker) Read(p []byte) (int, error) {
	want := len(p) / 4
	if len(s.scratch) < want {
		s.scratch = make([]float32, want)
	}
	samples := s.scratch[:want]

	n := s.ring.Pop(samples)
	if n < want {
		s.underruns.Add(1)
		clear(samples[n:])
	}
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return want * 4, nil
}

// Underruns counts the callbacks that found the ring short of samples.
func (s *Speaker) Underruns() uint64 {
	return s.underruns.Load()
}

func (s *Speaker) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	slog.Debug("Speaker closed", "underruns", s.underruns.Load())
	return err
}
