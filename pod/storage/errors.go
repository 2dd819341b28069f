package storage

import (
	"errors"
	"fmt"
)

var (
	ErrCardInit       = errors.New("sd card init failed")
	ErrVolume         = errors.New("fat volume not found")
	ErrRootDir        = errors.New("root directory not available")
	ErrBufferTooSmall = errors.New("destination buffer too small")
	ErrChunkSize      = errors.New("chunk size must be a positive multiple of 4")
	ErrShortFile      = errors.New("file shorter than its framing prefix")
)

// InitError is returned when the card cannot be brought up. Stage is one of
// ErrCardInit, ErrVolume or ErrRootDir; nothing can be loaded after it.
type InitError struct {
	Stage error
	Err   error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return e.Stage.Error()
	}
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage}
	}
	return []error{e.Stage, e.Err}
}

// LoadError is returned when a wave file cannot be loaded. Op names the step
// that failed: "open", "seek", "read" or "capacity".
type LoadError struct {
	Op   string
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Name, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
