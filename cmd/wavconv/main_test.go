package main

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-pod/pod/storage"
)

func writeWav(t *testing.T, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 48000, 16, 2, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: 48000},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDecode(t *testing.T) {
	path := writeWav(t, []int{16384, 0, -32768, -32768, 0, 16384})

	tests := []struct {
		name    string
		channel int
		want    []float32
	}{
		{"mix", -1, []float32{0.25, -1, 0.25}},
		{"left", 0, []float32{0.5, -1, 0}},
		{"right", 1, []float32{0, -1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, rate, err := decode(path, tt.channel)
			require.NoError(t, err)
			assert.Equal(t, 48000, rate)
			assert.Equal(t, tt.want, samples)
		})
	}

	_, _, err := decode(path, 2)
	assert.Error(t, err)
}

func TestDecode_NotAWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff"), 0o644))

	_, _, err := decode(path, -1)
	assert.Error(t, err)
}

func TestDecode_ConvertedFileLoads(t *testing.T) {
	path := writeWav(t, []int{16384, 16384, -16384, -16384})
	samples, _, err := decode(path, -1)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, storage.WriteWave(fs, "/out.raw", samples, storage.FixedClock{}))

	f, err := fs.Open("/out.raw")
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(storage.PrefixSize+2*storage.SampleSize), info.Size())
}
