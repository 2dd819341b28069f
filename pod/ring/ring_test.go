package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-pod/pod/audio"
)

func TestNewRing_RoundsUpToPowerOfTwo(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 1000: 1024, 1024: 1024} {
		assert.Equal(t, want, NewRing(n).Cap(), "n=%d", n)
	}
}

func TestRing_PushPop(t *testing.T) {
	r := NewRing(8)

	require.True(t, r.PushBlock(audio.Block{{Left: 1, Right: 2}, {Left: 3, Right: 4}}))
	assert.Equal(t, 4, r.Len())

	dst := make([]float32, 3)
	assert.Equal(t, 3, r.Pop(dst))
	assert.Equal(t, []float32{1, 2, 3}, dst)

	assert.Equal(t, 1, r.Pop(dst))
	assert.Equal(t, float32(4), dst[0])
	assert.Zero(t, r.Pop(dst))
}

func TestRing_RejectsWholeBlockWhenFull(t *testing.T) {
	r := NewRing(4)
	require.True(t, r.PushBlock(audio.Block{{Left: 1, Right: 1}}))
	assert.False(t, r.PushBlock(audio.Block{{Left: 2, Right: 2}, {Left: 3, Right: 3}}))
	assert.Equal(t, 2, r.Len(), "a rejected block leaves nothing behind")

	require.True(t, r.PushBlock(audio.Block{{Left: 2, Right: 2}}))
	assert.False(t, r.PushBlock(audio.Block{{}}))
}

func TestRing_Wraps(t *testing.T) {
	r := NewRing(4)
	dst := make([]float32, 2)
	for i := range 10 {
		v := float32(i)
		require.True(t, r.PushBlock(audio.Block{{Left: v, Right: -v}}))
		require.Equal(t, 2, r.Pop(dst))
		assert.Equal(t, []float32{v, -v}, dst)
	}
}

func TestRing_ConcurrentOrder(t *testing.T) {
	r := NewRing(64)
	const frames = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < frames; {
			if r.PushBlock(audio.Block{{Left: float32(i), Right: float32(i)}}) {
				i++
			}
		}
	}()

	got := make([]float32, 0, 2*frames)
	dst := make([]float32, 7)
	for len(got) < 2*frames {
		n := r.Pop(dst)
		got = append(got, dst[:n]...)
	}
	wg.Wait()

	for i := 0; i < frames; i++ {
		require.Equal(t, float32(i), got[2*i])
		require.Equal(t, float32(i), got[2*i+1])
	}
}
