//go:build headless

package speaker

import (
	"errors"

	"github.com/valerio/go-pod/pod/audio"
)

// Speaker is unavailable in headless builds.
type Speaker struct{}

func New(sampleRate, buffered int) (*Speaker, error) {
	return nil, errors.New("speaker output not available in headless builds")
}

func (s *Speaker) WriteBlock(audio.Block) error {
	return audio.ErrSinkFull
}

func (s *Speaker) Close() error {
	return nil
}

func (s *Speaker) Underruns() uint64 {
	return 0
}
