package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodec struct {
	input   Block
	written []Block
	reject  bool
}

func (c *fakeCodec) ReadBlock(in Block) int {
	return copy(in, c.input)
}

func (c *fakeCodec) WriteBlock(out Block) error {
	if c.reject {
		return ErrSinkFull
	}
	cp := make(Block, len(out))
	copy(cp, out)
	c.written = append(c.written, cp)
	return nil
}

func rampBlock(n int) Block {
	b := NewBlock(n)
	for i := range b {
		b[i] = Frame{Left: float32(i) / float32(n), Right: -float32(i) / float32(n)}
	}
	return b
}

func TestEngine_Passthrough(t *testing.T) {
	tests := []struct {
		name  string
		input Block
	}{
		{"full block", rampBlock(DefaultBlockSize)},
		{"silence", NewBlock(DefaultBlockSize)},
		{"extremes", Block{{Left: 1, Right: -1}, {Left: -1, Right: 1}, {Left: 0.5, Right: 0.25}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &fakeCodec{input: tt.input}
			e := NewEngine(codec, Passthrough, nil, len(tt.input))

			e.Process()

			require.Len(t, codec.written, 1)
			assert.Equal(t, tt.input, codec.written[0], "output block should equal input block")
		})
	}
}

func TestEngine_PassthroughShortInput(t *testing.T) {
	codec := &fakeCodec{input: rampBlock(4)}
	e := NewEngine(codec, Passthrough, nil, 8)

	e.Process()

	require.Len(t, codec.written, 1)
	out := codec.written[0]
	assert.Len(t, out, 8, "engine always produces a full block")
	assert.Equal(t, codec.input, out[:4])
	for i, f := range out[4:] {
		assert.Equal(t, Frame{}, f, "frame %d past the input should be silent", i+4)
	}
}

func TestEngine_SynthesisBounded(t *testing.T) {
	codec := &fakeCodec{input: NewBlock(DefaultBlockSize)}
	e := NewEngine(codec, Synthesis, NewOscillator(DefaultSweep, SampleRate), DefaultBlockSize)

	for range 500 {
		e.Process()
	}

	require.Len(t, codec.written, 500)
	for bi, block := range codec.written {
		for i, f := range block {
			assert.Equal(t, f.Left, f.Right, "block %d frame %d should be mono", bi, i)
			assert.LessOrEqual(t, f.Left, float32(1.0))
			assert.GreaterOrEqual(t, f.Left, float32(-1.0))
		}
	}
}

func TestEngine_SynthesisMatchesOscillator(t *testing.T) {
	codec := &fakeCodec{}
	e := NewEngine(codec, Synthesis, NewOscillator(DefaultSweep, SampleRate), 4)
	ref := NewOscillator(DefaultSweep, SampleRate)

	e.Process()

	require.Len(t, codec.written, 1)
	for i, f := range codec.written[0] {
		want := ref.Next()
		assert.Equal(t, want, f.Left, "frame %d", i)
	}
	assert.Equal(t, ref.Phase, e.Oscillator().Phase)
}

func TestEngine_OverrunEntersSafeState(t *testing.T) {
	codec := &fakeCodec{input: rampBlock(DefaultBlockSize)}
	e := NewEngine(codec, Passthrough, nil, DefaultBlockSize)

	e.Process()
	assert.False(t, e.Muted())
	assert.NoError(t, e.Fault())

	codec.reject = true
	assert.NotPanics(t, e.Process)

	assert.True(t, e.Muted(), "engine should mute after a rejected block")
	var overrun *OverrunError
	require.True(t, errors.As(e.Fault(), &overrun))
	assert.Equal(t, uint64(1), overrun.Block)
	assert.ErrorIs(t, e.Fault(), ErrSinkFull)

	// sink recovers, but the engine stays silent
	codec.reject = false
	e.Process()
	require.Len(t, codec.written, 2)
	for _, f := range codec.written[1] {
		assert.Equal(t, Frame{}, f)
	}

	stats := e.Stats()
	assert.Equal(t, uint64(3), stats.Blocks)
	assert.Equal(t, uint64(1), stats.Overruns)
}

func TestEngine_MutedSynthesisFreezesOscillator(t *testing.T) {
	codec := &fakeCodec{reject: true}
	e := NewEngine(codec, Synthesis, nil, DefaultBlockSize)

	e.Process()
	phase := e.Oscillator().Phase
	e.Process()
	e.Process()

	assert.Equal(t, phase, e.Oscillator().Phase)
	assert.Equal(t, uint64(3), e.Stats().Overruns)
}

func TestEngine_ProcessDoesNotAllocate(t *testing.T) {
	for _, mode := range []Mode{Passthrough, Synthesis} {
		t.Run(mode.String(), func(t *testing.T) {
			codec := &discardCodec{input: rampBlock(DefaultBlockSize)}
			e := NewEngine(codec, mode, nil, DefaultBlockSize)
			allocs := testing.AllocsPerRun(100, e.Process)
			assert.Zero(t, allocs)
		})
	}
}

type discardCodec struct {
	input Block
}

func (c *discardCodec) ReadBlock(in Block) int    { return copy(in, c.input) }
func (c *discardCodec) WriteBlock(out Block) error { return nil }

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Synthesis")
	require.NoError(t, err)
	assert.Equal(t, Synthesis, m)

	m, err = ParseMode("passthrough")
	require.NoError(t, err)
	assert.Equal(t, Passthrough, m)

	_, err = ParseMode("granular")
	assert.Error(t, err)
}

func TestBlock_Silence(t *testing.T) {
	b := rampBlock(8)
	b.Silence()
	for _, f := range b {
		assert.Equal(t, Frame{}, f)
	}
}
