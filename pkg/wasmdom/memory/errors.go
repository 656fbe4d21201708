package memory

import (
	"errors"
	"fmt"
)

// Sentinel errors for memory access.
var (
	// ErrUnsupportedWidth indicates a word width other than 4 or 8.
	ErrUnsupportedWidth = errors.New("unsupported word width")

	// ErrOutOfRange indicates an access outside the current buffer.
	ErrOutOfRange = errors.New("memory access out of range")
)

// ConfigError reports an invalid accessor configuration.
// It is fatal for the call that observes it.
type ConfigError struct {
	Width int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("word width %d: must be 4 or 8", e.Width)
}

func (e *ConfigError) Unwrap() error {
	return ErrUnsupportedWidth
}

// FaultError describes an out-of-range read or write.
//
// Accessor methods do not return errors; a fault is raised as a panic with a
// *FaultError value. Inside a wazero host function the panic aborts the
// current guest call and surfaces as its error.
type FaultError struct {
	Op   string // e.g. "load u32"
	Addr uint32
	Size int
	Len  int // buffer length at the time of the access
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s at %#x (+%d): buffer is %d bytes", e.Op, e.Addr, e.Size, e.Len)
}

func (e *FaultError) Unwrap() error {
	return ErrOutOfRange
}
