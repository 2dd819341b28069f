package storage

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/afero"
)

// ErrNotDir is returned when the volume root is not a directory.
var ErrNotDir = errors.New("not a directory")

// AferoFS exposes an afero filesystem as a single-volume card, so the loader
// can run against a host directory or an in-memory image.
type AferoFS struct {
	Fs   afero.Fs
	Root string
}

// NewDirFS serves the host directory dir as volume 0.
func NewDirFS(dir string) *AferoFS {
	return &AferoFS{Fs: afero.NewBasePathFs(afero.NewOsFs(), dir), Root: "/"}
}

func (a *AferoFS) Volume(index int) (Volume, error) {
	if index != 0 {
		return nil, fmt.Errorf("volume %d: %w", index, os.ErrNotExist)
	}
	return aferoVolume{fs: a.Fs, root: a.Root}, nil
}

type aferoVolume struct {
	fs   afero.Fs
	root string
}

func (v aferoVolume) OpenRootDir() (Dir, error) {
	info, err := v.fs.Stat(v.root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", v.root, ErrNotDir)
	}
	return aferoDir(v), nil
}

type aferoDir struct {
	fs   afero.Fs
	root string
}

func (d aferoDir) OpenFile(name string) (File, error) {
	f, err := d.fs.Open(path.Join(d.root, name))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s: is a directory", name)
	}
	return &aferoFile{File: f, length: info.Size()}, nil
}

type aferoFile struct {
	afero.File
	length int64
}

func (f *aferoFile) Length() int64 {
	return f.length
}

// WriteWave stores samples as a raw wave file, stamping it with the card's
// fixed FAT time.
func WriteWave(fs afero.Fs, name string, samples []float32, clock TimeSource) error {
	f, err := fs.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := EncodeWave(f, [PrefixSize]byte{}, samples); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if clock == nil {
		clock = FixedClock{}
	}
	now := clock.Now()
	return fs.Chtimes(name, now, now)
}
