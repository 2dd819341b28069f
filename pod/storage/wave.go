package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Raw wave file layout: a 2-byte framing prefix followed by little-endian
// IEEE-754 float32 samples.
const (
	PrefixSize = 2
	SampleSize = 4

	// DefaultChunkSize is the read window in bytes. Bigger chunks load faster
	// but cost more RAM; it has to stay a multiple of SampleSize.
	DefaultChunkSize = 10_000
)

// File is an open, read-only file on the card.
type File interface {
	io.Reader
	io.Seeker
	io.Closer

	// Length is the file size in bytes.
	Length() int64
}

// WaveFile describes a file being loaded.
type WaveFile struct {
	Name          string
	LengthBytes   int64
	LengthSamples int
	ByteOffset    int64

	// Chunks is the number of reads issued, including a trailing partial one.
	Chunks int
	// Decoded is the number of samples written to the destination.
	Decoded int
}

// ValidChunkSize reports whether n can be used as a read window.
func ValidChunkSize(n int) bool {
	return n > 0 && n%SampleSize == 0
}

// DecodeChunk decodes every whole 4-byte group of chunk into dst, in order,
// and returns the number of samples written. Trailing bytes that do not make
// a whole sample are ignored.
func DecodeChunk(chunk []byte, dst []float32) int {
	n := min(len(chunk)/SampleSize, len(dst))
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(chunk[i*SampleSize:]))
	}
	return n
}

// EncodeWave writes samples in the raw wave layout behind the given prefix.
func EncodeWave(w io.Writer, prefix [PrefixSize]byte, samples []float32) error {
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write prefix: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// LoadChunked streams f into dst through the chunk buffer.
//
// The prefix is skipped, then the payload is read one chunk at a time and
// decoded into dst at increasing indices with no gaps. A final chunk shorter
// than len(chunk) is read and decoded too; any bytes past the last whole
// sample are dropped.
//
// dst must hold at least Length()/4 samples. No allocation happens here:
// chunk is the only scratch memory.
func LoadChunked(name string, f File, chunk []byte, dst []float32) (WaveFile, error) {
	if !ValidChunkSize(len(chunk)) {
		return WaveFile{}, &LoadError{Op: "capacity", Name: name, Err: ErrChunkSize}
	}

	desc := WaveFile{
		Name:          name,
		LengthBytes:   f.Length(),
		LengthSamples: int(f.Length() / SampleSize),
		ByteOffset:    PrefixSize,
	}
	if desc.LengthBytes < PrefixSize {
		return desc, &LoadError{Op: "read", Name: name, Err: ErrShortFile}
	}
	if len(dst) < desc.LengthSamples {
		return desc, &LoadError{
			Op:   "capacity",
			Name: name,
			Err:  fmt.Errorf("%w: need %d samples, have %d", ErrBufferTooSmall, desc.LengthSamples, len(dst)),
		}
	}

	if _, err := f.Seek(desc.ByteOffset, io.SeekStart); err != nil {
		return desc, &LoadError{Op: "seek", Name: name, Err: err}
	}

	payload := desc.LengthBytes - desc.ByteOffset
	for payload > 0 {
		n := int(min(payload, int64(len(chunk))))
		if _, err := io.ReadFull(f, chunk[:n]); err != nil {
			return desc, &LoadError{Op: "read", Name: name, Err: err}
		}
		desc.Decoded += DecodeChunk(chunk[:n], dst[desc.Decoded:])
		desc.Chunks++
		payload -= int64(n)
	}

	return desc, nil
}
