package storage

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CardClockHz is the SDMMC bus clock used once the card is identified.
const CardClockHz = 50_000_000

// Card is the SD card block device.
type Card interface {
	// Init identifies the card and switches the bus to clockHz.
	Init(clockHz uint32) error
}

// FileSystem is the FAT layer on top of the card.
type FileSystem interface {
	Volume(index int) (Volume, error)
}

// Volume is one FAT partition.
type Volume interface {
	OpenRootDir() (Dir, error)
}

// Dir is an open directory.
type Dir interface {
	OpenFile(name string) (File, error)
}

// TimeSource supplies FAT timestamps. The board has no RTC.
type TimeSource interface {
	Now() time.Time
}

// FixedClock reports the same instant forever.
type FixedClock struct{}

// Now returns 2022-01-01 00:00:01 UTC.
func (FixedClock) Now() time.Time {
	return time.Date(2022, time.January, 1, 0, 0, 1, 0, time.UTC)
}

// SDCard is a mounted card with its root directory open, ready for bulk
// loads. It must only be used while the audio and control interrupts are
// not running: it shares the bus with nothing and takes as long as it takes.
type SDCard struct {
	root  Dir
	chunk []byte
	clock TimeSource

	session uuid.UUID
}

// Option configures an SDCard.
type Option func(*SDCard)

// WithChunkSize sets the read window in bytes. It must be a positive multiple
// of 4; NewSDCard rejects anything else.
func WithChunkSize(n int) Option {
	return func(c *SDCard) {
		if n < 0 {
			n = 0
		}
		c.chunk = make([]byte, n)
	}
}

// WithTimeSource replaces FixedClock.
func WithTimeSource(ts TimeSource) Option {
	return func(c *SDCard) { c.clock = ts }
}

// NewSDCard initializes the card, mounts volume 0 and opens its root
// directory. Any failure is returned as an *InitError; the caller cannot load
// anything without a card and should abort startup.
func NewSDCard(card Card, fs FileSystem, opts ...Option) (*SDCard, error) {
	c := &SDCard{
		clock:   FixedClock{},
		session: uuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chunk == nil {
		c.chunk = make([]byte, DefaultChunkSize)
	}
	if !ValidChunkSize(len(c.chunk)) {
		return nil, &InitError{Stage: ErrCardInit, Err: ErrChunkSize}
	}

	if err := card.Init(CardClockHz); err != nil {
		c.logger().Error("SD card init failed", "clock_hz", CardClockHz, "error", err)
		return nil, &InitError{Stage: ErrCardInit, Err: err}
	}

	volume, err := fs.Volume(0)
	if err != nil {
		c.logger().Error("Failed to open FAT volume", "index", 0, "error", err)
		return nil, &InitError{Stage: ErrVolume, Err: err}
	}

	root, err := volume.OpenRootDir()
	if err != nil {
		c.logger().Error("Failed to open root directory", "error", err)
		return nil, &InitError{Stage: ErrRootDir, Err: err}
	}
	c.root = root

	c.logger().Info("SD card mounted", "clock_hz", CardClockHz, "chunk_size", len(c.chunk), "mounted_at", c.clock.Now())
	return c, nil
}

// LoadWave loads the raw wave file name into dst and returns the number of
// samples decoded, (length-2)/4. That is length/4 for any file made of a
// prefix and whole samples, and one less when the payload ends in two or
// three stray bytes. dst is never resized.
func (c *SDCard) LoadWave(name string, dst []float32) (int, error) {
	desc, err := c.Load(name, dst)
	return desc.Decoded, err
}

// Load is LoadWave returning the full file descriptor.
func (c *SDCard) Load(name string, dst []float32) (WaveFile, error) {
	f, err := c.root.OpenFile(name)
	if err != nil {
		return WaveFile{Name: name}, &LoadError{Op: "open", Name: name, Err: err}
	}
	defer f.Close()

	start := time.Now()
	desc, err := LoadChunked(name, f, c.chunk, dst)
	if err != nil {
		c.logger().Error("Wave load failed", "file", name, "error", err)
		return desc, err
	}

	c.logger().Info("Wave loaded",
		"file", name,
		"bytes", desc.LengthBytes,
		"samples", desc.Decoded,
		"chunks", desc.Chunks,
		"elapsed", time.Since(start))
	return desc, nil
}

// logger is resolved on every use so that a handler installed after the
// card was mounted still receives its records.
func (c *SDCard) logger() *slog.Logger {
	return slog.Default().With("component", "sdcard", "session", c.session)
}

// ChunkSize is the read window in bytes.
func (c *SDCard) ChunkSize() int {
	return len(c.chunk)
}
