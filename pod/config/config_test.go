package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-pod/pod/audio"
)

func TestProfiles(t *testing.T) {
	tests := []struct {
		profile Profile
		period  time.Duration
		mode    audio.Mode
		level   string
	}{
		{Diagnostic, 100 * time.Millisecond, audio.Synthesis, "debug"},
		{Production, 10 * time.Millisecond, audio.Passthrough, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.profile.Name, func(t *testing.T) {
			require.NoError(t, tt.profile.Validate())
			assert.Equal(t, tt.period, tt.profile.ControlPeriod)
			assert.Equal(t, tt.mode, tt.profile.Mode)
			assert.Equal(t, tt.level, tt.profile.LogLevel)
			assert.Equal(t, 10000, tt.profile.ChunkSize)
			assert.Equal(t, 48000, tt.profile.SampleRate)
		})
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup(" Diagnostic ")
	require.NoError(t, err)
	assert.Equal(t, Diagnostic, p)

	_, err = Lookup("studio")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"zero period", func(p *Profile) { p.ControlPeriod = 0 }},
		{"zero block", func(p *Profile) { p.BlockSize = 0 }},
		{"odd chunk", func(p *Profile) { p.ChunkSize = 10 }},
		{"inverted sweep", func(p *Profile) { p.Sweep.Max = p.Sweep.Base - 1 }},
		{"zero step", func(p *Profile) { p.Sweep.Step = 0 }},
		{"bad level", func(p *Profile) { p.LogLevel = "loud" }},
		{"negative buffer", func(p *Profile) { p.SampleBufferLen = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Production
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalid)
		})
	}
}

func TestProfile_BlockPeriod(t *testing.T) {
	p := Production
	p.BlockSize = 48
	assert.Equal(t, time.Millisecond, p.BlockPeriod())
}

func TestLoad_NoFile(t *testing.T) {
	s, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Production, s.Profile)
	assert.Equal(t, DefaultWaveFile, s.WaveFile)

	s, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), "diagnostic")
	require.NoError(t, err)
	assert.Equal(t, Diagnostic, s.Profile)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: diagnostic
loglevel: warn
mode: passthrough
controlperiod: 50ms
blocksize: 64
chunksize: 4000
wavefile: drums.raw
sweep:
  base: 220
  max: 880
  step: 0.5
`), 0o644))

	s, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "diagnostic", s.Name)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, audio.Passthrough, s.Mode)
	assert.Equal(t, 50*time.Millisecond, s.ControlPeriod)
	assert.Equal(t, 64, s.BlockSize)
	assert.Equal(t, 4000, s.ChunkSize)
	assert.Equal(t, "drums.raw", s.WaveFile)
	assert.Equal(t, audio.Sweep{Base: 220, Max: 880, Step: 0.5}, s.Sweep)
	assert.Equal(t, Diagnostic.SampleBufferLen, s.SampleBufferLen)

	// the argument wins over the file
	s, err = Load(path, "production")
	require.NoError(t, err)
	assert.Equal(t, "production", s.Name)
	assert.Equal(t, 64, s.BlockSize)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		body string
	}{
		{"chunk size", "chunksize: 10\n"},
		{"mode", "mode: granular\n"},
		{"profile", "profile: studio\n"},
		{"malformed", "blocksize: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path, "")
			assert.Error(t, err)
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	f, err := ConfigureLogger("debug", "")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	f, err = ConfigureLogger("none", "")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelError))

	path := filepath.Join(t.TempDir(), "pod.log")
	f, err = ConfigureLogger("warn", path)
	require.NoError(t, err)
	require.NotNil(t, f)
	slog.Warn("Written to file", "key", 1)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Written to file"`)

	_, err = ConfigureLogger("loud", "")
	assert.ErrorIs(t, err, ErrInvalid)
}
