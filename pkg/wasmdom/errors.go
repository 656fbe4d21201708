package wasmdom

import (
	"errors"

	"github.com/wasmdom/wasmdom-go/internal/wasm"
)

// Sentinel errors.
var (
	// ErrInvalidWasm indicates the module bytes are not valid wasm.
	ErrInvalidWasm = wasm.ErrInvalidWasm

	// ErrMissingExport indicates the guest lacks an export the host needs.
	ErrMissingExport = wasm.ErrMissingExport

	// ErrFileTooLarge indicates the module file exceeds the size limit.
	ErrFileTooLarge = wasm.ErrFileTooLarge

	// ErrClosed indicates use of a closed runtime or instance.
	ErrClosed = wasm.ErrClosed

	// ErrTrap indicates the guest trapped or aborted.
	ErrTrap = wasm.ErrTrap

	// ErrUnknownTarget indicates an event target that does not resolve.
	ErrUnknownTarget = errors.New("unknown event target")
)

// ABIError reports a missing or unusable guest export.
type ABIError = wasm.ABIError

// TrapError reports a guest trap, abort or invalid write.
type TrapError = wasm.TrapError

// RuntimeError wraps a wazero failure.
type RuntimeError = wasm.RuntimeError

// TargetError reports an event target name that does not resolve.
type TargetError struct {
	Name string
}

func (e *TargetError) Error() string {
	return "unknown event target " + e.Name
}

func (e *TargetError) Unwrap() error {
	return ErrUnknownTarget
}
