// Package wavout captures the codec output to a 16-bit stereo .wav file.
package wavout

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/valerio/go-pod/pod/audio"
)

const bitDepth = 16

// Writer is an audio.BlockSink that encodes every block it receives.
type Writer struct {
	enc    *wav.Encoder
	file   io.Closer
	buf    *goaudio.IntBuffer
	frames int
}

// Create opens path for writing and returns a Writer encoding into it.
func Create(path string, sampleRate int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}
	w := New(f, sampleRate)
	w.file = f
	return w, nil
}

// New returns a Writer encoding into ws. ws is not closed by Close.
func New(ws io.WriteSeeker, sampleRate int) *Writer {
	return &Writer{
		enc: wav.NewEncoder(ws, sampleRate, bitDepth, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

// WriteBlock converts out to interleaved 16-bit PCM and appends it.
func (w *Writer) WriteBlock(out audio.Block) error {
	need := 2 * len(out)
	if cap(w.buf.Data) < need {
		w.buf.Data = make([]int, need)
	}
	w.buf.Data = w.buf.Data[:need]
	for i, f := range out {
		w.buf.Data[2*i] = toPCM(f.Left)
		w.buf.Data[2*i+1] = toPCM(f.Right)
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	w.frames += len(out)
	return nil
}

// Frames is the number of frames written.
func (w *Writer) Frames() int {
	return w.frames
}

// Close finalizes the wav header and closes the file if Create opened it.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func toPCM(s float32) int {
	s = max(-1, min(s, 1))
	return int(math.Round(float64(s) * math.MaxInt16))
}
