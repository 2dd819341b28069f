package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCard struct {
	err     error
	clockHz uint32
}

func (c *fakeCard) Init(clockHz uint32) error {
	c.clockHz = clockHz
	return c.err
}

type brokenFS struct {
	volumeErr error
	rootErr   error
}

func (b brokenFS) Volume(int) (Volume, error) {
	if b.volumeErr != nil {
		return nil, b.volumeErr
	}
	return b, nil
}

func (b brokenFS) OpenRootDir() (Dir, error) {
	return nil, b.rootErr
}

func memCard(t *testing.T, files map[string][]float32) *AferoFS {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, samples := range files {
		require.NoError(t, WriteWave(fs, "/"+name, samples, nil))
	}
	return &AferoFS{Fs: fs, Root: "/"}
}

func TestNewSDCard_InitStages(t *testing.T) {
	boom := errors.New("no response")

	tests := []struct {
		name  string
		card  *fakeCard
		fs    FileSystem
		stage error
	}{
		{"card init", &fakeCard{err: boom}, brokenFS{}, ErrCardInit},
		{"volume", &fakeCard{}, brokenFS{volumeErr: boom}, ErrVolume},
		{"root dir", &fakeCard{}, brokenFS{rootErr: boom}, ErrRootDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := NewSDCard(tt.card, tt.fs)
			assert.Nil(t, card)
			require.Error(t, err)

			var initErr *InitError
			require.True(t, errors.As(err, &initErr))
			assert.ErrorIs(t, err, tt.stage)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestNewSDCard_RootIsNotADirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/image", []byte("x"), 0o644))

	_, err := NewSDCard(&fakeCard{}, &AferoFS{Fs: fs, Root: "/image"})
	assert.ErrorIs(t, err, ErrRootDir)
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestNewSDCard_MissingVolume(t *testing.T) {
	a := &AferoFS{Fs: afero.NewMemMapFs(), Root: "/"}
	_, err := a.Volume(1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSDCard_RejectsBadChunkSize(t *testing.T) {
	for _, n := range []int{0, -8, 10_001} {
		_, err := NewSDCard(&fakeCard{}, memCard(t, nil), WithChunkSize(n))
		assert.ErrorIs(t, err, ErrChunkSize, "chunk size %d", n)
	}
}

func TestSDCard_LoadWave(t *testing.T) {
	want := ramp(2600)
	card := &fakeCard{}
	sd, err := NewSDCard(card, memCard(t, map[string][]float32{"loop.raw": want}), WithChunkSize(1000))
	require.NoError(t, err)
	assert.Equal(t, uint32(CardClockHz), card.clockHz)
	assert.Equal(t, 1000, sd.ChunkSize())

	sdram := make([]float32, 4096)
	n, err := sd.LoadWave("loop.raw", sdram)
	require.NoError(t, err)
	assert.Equal(t, 2600, n)
	assert.Equal(t, want, sdram[:n])
	assert.Len(t, sdram, 4096, "destination is never resized")

	desc, err := sd.Load("loop.raw", sdram)
	require.NoError(t, err)
	assert.Equal(t, 11, desc.Chunks, "10 full chunks and one partial")
}

func TestSDCard_LoadWaveMissingFile(t *testing.T) {
	sd, err := NewSDCard(&fakeCard{}, memCard(t, nil))
	require.NoError(t, err)

	n, err := sd.LoadWave("nope.raw", make([]float32, 16))
	assert.Zero(t, n)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "open", loadErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteWave_UsesFixedClock(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteWave(fs, "/t.raw", []float32{1, 2}, nil))

	info, err := fs.Stat("/t.raw")
	require.NoError(t, err)
	assert.Equal(t, int64(PrefixSize+2*SampleSize), info.Size())
	assert.True(t, info.ModTime().Equal(FixedClock{}.Now()))
}
