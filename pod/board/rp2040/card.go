//go:build tinygo && rp2040

package rp2040

import (
	"math"

	"github.com/spf13/afero"

	"github.com/valerio/go-pod/pod/storage"
)

// Flash is a card image kept in RAM. The Pico build has no SD slot, so a
// short test tone is written to it at boot.
type Flash struct{}

func (Flash) Init(uint32) error { return nil }

// ToneLength is the number of samples in the boot tone, 100 ms.
func ToneLength(sampleRate int) int {
	return sampleRate / 10
}

// NewFlashFS returns a volume holding name with a short 220 Hz sine.
func NewFlashFS(name string, sampleRate int) (*storage.AferoFS, error) {
	fs := afero.NewMemMapFs()
	tone := make([]float32, ToneLength(sampleRate))
	for i := range tone {
		tone[i] = float32(math.Sin(2 * math.Pi * 220 * float64(i) / float64(sampleRate)))
	}
	if err := storage.WriteWave(fs, "/"+name, tone, storage.FixedClock{}); err != nil {
		return nil, err
	}
	return &storage.AferoFS{Fs: fs, Root: "/"}, nil
}
