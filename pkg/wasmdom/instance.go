package wasmdom

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wasmdom/wasmdom-go/internal/wasm"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// DefaultFrameInterval is the time between frames in Run.
const DefaultFrameInterval = 16 * time.Millisecond

// Target names accepted by Instance.Target besides element ids.
const (
	TargetWindow   = "#window"
	TargetDocument = "#document"
)

// ConsoleLine is one line of guest output.
type ConsoleLine = wasm.ConsoleLine

// Stream identifies a guest output stream.
type Stream = wasm.Stream

// Guest output streams.
const (
	Stdout = wasm.Stdout
	Stderr = wasm.Stderr
)

// Instance is a running guest. Its methods serialize access to the guest,
// so event sources on other goroutines can dispatch while Run is stepping.
type Instance struct {
	mu     sync.Mutex
	inst   *wasm.Instance
	logger *slog.Logger
}

// Name returns the unique module name of the instance.
func (i *Instance) Name() string { return i.inst.Name() }

// Realm returns the instance's DOM. Mutate it through Update once the
// instance is shared between goroutines.
func (i *Instance) Realm() *dom.Realm { return i.inst.Realm() }

// Memory returns an accessor over guest memory.
func (i *Instance) Memory() *memory.Accessor { return i.inst.Memory() }

// Listeners returns the number of listeners the guest has registered.
func (i *Instance) Listeners() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inst.Registry().Len()
}

// ConsoleLines returns the retained guest output, oldest first.
func (i *Instance) ConsoleLines() []ConsoleLine {
	return i.inst.Console().Lines()
}

// Start runs the guest's _start.
func (i *Instance) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inst.Start(ctx)
}

// Step runs a single frame with dt seconds elapsed.
func (i *Instance) Step(ctx context.Context, dt float64) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.inst.HasExport(wasm.ExportStep) {
		return false, nil
	}
	odinCtx, err := i.inst.ContextPointer(ctx)
	if err != nil {
		return false, err
	}
	return i.inst.Step(ctx, dt, odinCtx)
}

// End runs the guest's _end if it exports one.
func (i *Instance) End(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inst.End(ctx)
}

// RunOptions configures Run.
type RunOptions struct {
	// FrameInterval is the time between frames. Default: 16ms.
	FrameInterval time.Duration

	// MaxFrames stops the loop after this many frames. Zero means no limit.
	MaxFrames int
}

// Run drives the guest's frame loop. It calls step each frame until the
// guest returns false or MaxFrames is reached, then calls _end. A guest
// without a step export gets _end right away. When ctx ends first, Run
// returns ctx.Err() without calling _end.
//
// The first frame has dt 0; later frames get the realm time elapsed since
// the previous frame in seconds.
func (i *Instance) Run(ctx context.Context, opts RunOptions) (frames int, err error) {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	i.mu.Lock()
	hasStep := i.inst.HasExport(wasm.ExportStep)
	var odinCtx uint32
	if hasStep {
		odinCtx, err = i.inst.ContextPointer(ctx)
	}
	i.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if !hasStep {
		return 0, i.End(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	realm := i.Realm()
	prev := realm.Now()
	for {
		now := realm.Now()
		dt := (now - prev) * 0.001
		prev = now

		i.mu.Lock()
		more, err := i.inst.Step(ctx, dt, odinCtx)
		i.mu.Unlock()
		if err != nil {
			return frames, err
		}
		frames++

		if !more || (opts.MaxFrames > 0 && frames >= opts.MaxFrames) {
			i.logger.Debug("frame loop finished", "frames", frames, "guest_stopped", !more)
			return frames, i.End(ctx)
		}

		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		case <-ticker.C:
		}
	}
}

// DispatchEvent dispatches ev to target. It returns false if a listener
// prevented the default action, and the joined errors of any guest
// callbacks that failed. Callback failures do not stop the dispatch.
func (i *Instance) DispatchEvent(ctx context.Context, target dom.Target, ev dom.Event) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inst.DispatchEvent(ctx, target, ev)
}

// Target resolves "#window", "#document" or an element id.
func (i *Instance) Target(name string) (dom.Target, error) {
	realm := i.Realm()
	switch name {
	case TargetWindow:
		return realm.Window, nil
	case TargetDocument:
		return realm.Document, nil
	}
	i.mu.Lock()
	el, ok := realm.Element(strings.TrimPrefix(name, "#"))
	i.mu.Unlock()
	if !ok {
		return nil, &TargetError{Name: name}
	}
	return el, nil
}

// Update runs fn with exclusive access to the realm.
func (i *Instance) Update(fn func(r *dom.Realm)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	fn(i.inst.Realm())
}

// Close detaches the guest's listeners and closes the guest.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.inst.Close(ctx)
}
