//go:build !headless

package speaker

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/ring"
)

// newDetached builds a speaker with no sound card behind it; tests play the
// card by calling Read.
func newDetached(samples int) *Speaker {
	return &Speaker{ring: ring.NewRing(samples), scratch: make([]float32, 16)}
}

func TestSpeaker_ReadPadsUnderrunWithSilence(t *testing.T) {
	s := newDetached(8)
	require.NoError(t, s.WriteBlock(audio.Block{{Left: 0.5, Right: -0.5}}))

	p := make([]byte, 4*4)
	n, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, len(p), n)

	got := make([]float32, 4)
	for i := range got {
		got[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
	}
	assert.Equal(t, []float32{0.5, -0.5, 0, 0}, got)
	assert.Equal(t, uint64(1), s.Underruns())
}

func TestSpeaker_FullRingRejectsBlock(t *testing.T) {
	s := newDetached(8)
	block := audio.NewBlock(2)

	require.NoError(t, s.WriteBlock(block))
	require.NoError(t, s.WriteBlock(block))
	assert.ErrorIs(t, s.WriteBlock(block), audio.ErrSinkFull)
}

func TestSpeaker_UnderrunCountedFromCallbackGoroutine(t *testing.T) {
	s := newDetached(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p := make([]byte, 64)
		for range 100 {
			_, _ = s.Read(p)
		}
	}()

	var seen uint64
	for range 100 {
		seen = max(seen, s.Underruns())
	}
	wg.Wait()

	assert.Equal(t, uint64(100), s.Underruns())
	assert.LessOrEqual(t, seen, uint64(100))
}
