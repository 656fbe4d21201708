// Package wasm runs wasm guests under wazero and provides the odin_env and
// odin_dom host modules they import.
package wasm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWasm indicates the module bytes are not valid wasm.
	ErrInvalidWasm = errors.New("invalid wasm module")

	// ErrMissingExport indicates a required export is missing.
	ErrMissingExport = errors.New("missing required export")

	// ErrFileTooLarge indicates the module file exceeds MaxWasmFileSize.
	ErrFileTooLarge = errors.New("wasm file too large")

	// ErrClosed indicates use of a closed engine or instance.
	ErrClosed = errors.New("wasm engine closed")

	// ErrTrap indicates the guest trapped or aborted.
	ErrTrap = errors.New("guest trap")

	// ErrUnknownInstance indicates a host call from a module this engine
	// did not instantiate.
	ErrUnknownInstance = errors.New("host call from unknown instance")
)

// ABIError represents an error related to ABI validation.
type ABIError struct {
	Export string
	Reason string
}

func (e *ABIError) Error() string {
	return fmt.Sprintf("abi error in %s: %s", e.Export, e.Reason)
}

func (e *ABIError) Unwrap() error {
	return ErrMissingExport
}

// TrapError is raised by host functions that end the guest call: trap,
// abort and writes to an unknown descriptor.
type TrapError struct {
	Func    string
	Message string
}

func (e *TrapError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("guest %s: %s", e.Func, e.Message)
	}
	return "guest " + e.Func
}

func (e *TrapError) Unwrap() error {
	return ErrTrap
}

// RuntimeError represents a wazero runtime error.
type RuntimeError struct {
	Operation string
	Err       error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("wasm runtime error during %s: %v", e.Operation, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
