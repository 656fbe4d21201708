package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/event"
)

// Invoker calls into the guest.
type Invoker interface {
	// ContextPointer returns the opaque execution context the guest
	// callback expects as its last argument.
	ContextPointer(ctx context.Context) (uint32, error)
	// Callback runs the guest's event callback trampoline.
	Callback(ctx context.Context, data, callback, execCtx uint32) error
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Bridge stages fired events and hands them to the guest. At most one event
// is staged at a time; a nested dispatch from inside a callback stages its
// own event and restores the outer one when it returns.
type Bridge struct {
	invoker Invoker
	logger  *slog.Logger
	staged  *event.Staged
	errs    []error
}

// NewBridge returns a bridge calling inv. A nil logger discards output.
func NewBridge(inv Invoker, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = discardLogger
	}
	return &Bridge{invoker: inv, logger: logger}
}

// Staged returns the staged event, or nil.
func (b *Bridge) Staged() *event.Staged {
	return b.staged
}

func (b *Bridge) listener(key Key, tokens Tokens) *dom.Listener {
	return dom.NewListener(func(ctx context.Context, e dom.Event) {
		b.fire(ctx, key, tokens, e)
	})
}

func (b *Bridge) fire(ctx context.Context, key Key, tokens Tokens, e dom.Event) {
	prev := b.staged
	b.staged = &event.Staged{
		Event:    e,
		NameCode: tokens.NameCode,
		IDPtr:    tokens.IDPtr,
		IDLen:    tokens.IDLen,
	}
	defer func() { b.staged = prev }()

	execCtx, err := b.invoker.ContextPointer(ctx)
	if err == nil {
		err = b.invoker.Callback(ctx, key.Data, key.Callback, execCtx)
	}
	if err != nil {
		b.logger.Warn("event callback failed", "listener", key.String(), "error", err)
		b.errs = append(b.errs, fmt.Errorf("listener %s: %w", key, err))
	}
}

// StopPropagation stops the staged event. It reports false when nothing is
// staged.
func (b *Bridge) StopPropagation() bool {
	if b.staged == nil {
		return false
	}
	b.staged.Event.Base().StopPropagation()
	return true
}

// StopImmediatePropagation is StopPropagation that also skips the
// remaining listeners on the current target.
func (b *Bridge) StopImmediatePropagation() bool {
	if b.staged == nil {
		return false
	}
	b.staged.Event.Base().StopImmediatePropagation()
	return true
}

// PreventDefault cancels the staged event.
func (b *Bridge) PreventDefault() bool {
	if b.staged == nil {
		return false
	}
	b.staged.Event.Base().PreventDefault()
	return true
}

// TakeErrors returns the callback failures collected since the last call,
// joined, and resets the list.
func (b *Bridge) TakeErrors() error {
	err := errors.Join(b.errs...)
	b.errs = nil
	return err
}
