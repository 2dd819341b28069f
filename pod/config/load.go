package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/valerio/go-pod/pod/audio"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrInvalid        = errors.New("invalid configuration")
)

// Settings is a profile plus the host-only options.
type Settings struct {
	Profile

	LogFile  string
	WaveFile string
}

// Keys understood in a config file.
const (
	KeyProfile       = "profile"
	KeyLogLevel      = "loglevel"
	KeyLogFile       = "logfile"
	KeyMode          = "mode"
	KeyControlPeriod = "controlperiod"
	KeyBlockSize     = "blocksize"
	KeyChunkSize     = "chunksize"
	KeyBufferLen     = "samplebufferlen"
	KeySweepBase     = "sweep.base"
	KeySweepMax      = "sweep.max"
	KeySweepStep     = "sweep.step"
	KeyWaveFile      = "wavefile"
)

// DefaultWaveFile is the sample loaded from the card root at boot.
const DefaultWaveFile = "loop.raw"

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyProfile, Production.Name)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyWaveFile, DefaultWaveFile)
}

// Load builds Settings from the named profile with the values of the config
// file at path layered on top. A missing file is not an error, and an empty
// path skips the file entirely. A non-empty profile argument wins over the
// profile named in the file.
func Load(path, profile string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Settings{}, fmt.Errorf("read config %s: %w", path, err)
			}
			slog.Info("No config file found", "path", path)
		}
	}

	if profile == "" {
		profile = v.GetString(KeyProfile)
	}
	p, err := Lookup(profile)
	if err != nil {
		return Settings{}, err
	}

	if err := override(v, &p); err != nil {
		return Settings{}, err
	}
	if err := p.Validate(); err != nil {
		return Settings{}, err
	}

	return Settings{
		Profile:  p,
		LogFile:  v.GetString(KeyLogFile),
		WaveFile: v.GetString(KeyWaveFile),
	}, nil
}

func override(v *viper.Viper, p *Profile) error {
	if v.IsSet(KeyLogLevel) {
		p.LogLevel = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyMode) {
		m, err := audio.ParseMode(v.GetString(KeyMode))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		p.Mode = m
	}
	if v.IsSet(KeyControlPeriod) {
		p.ControlPeriod = v.GetDuration(KeyControlPeriod)
	}
	if v.IsSet(KeyBlockSize) {
		p.BlockSize = v.GetInt(KeyBlockSize)
	}
	if v.IsSet(KeyChunkSize) {
		p.ChunkSize = v.GetInt(KeyChunkSize)
	}
	if v.IsSet(KeyBufferLen) {
		p.SampleBufferLen = v.GetInt(KeyBufferLen)
	}
	if v.IsSet(KeySweepBase) {
		p.Sweep.Base = float32(v.GetFloat64(KeySweepBase))
	}
	if v.IsSet(KeySweepMax) {
		p.Sweep.Max = float32(v.GetFloat64(KeySweepMax))
	}
	if v.IsSet(KeySweepStep) {
		p.Sweep.Step = float32(v.GetFloat64(KeySweepStep))
	}
	return nil
}

// String is a one-line summary for the startup log.
func (s Settings) String() string {
	return fmt.Sprintf("%s mode=%s control=%v block=%d chunk=%d", s.Name, s.Mode, s.ControlPeriod.Round(time.Millisecond), s.BlockSize, s.ChunkSize)
}
