package wasm

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/event"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/listener"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// Opener handles odin_env.open requests.
type Opener func(url, name, specs string)

// InstanceConfig holds the host state given to one guest.
type InstanceConfig struct {
	Realm   *dom.Realm
	Console *Console
	Rand    io.Reader
	Opener  Opener
	Logger  *slog.Logger
}

// Instance is one running guest with its own realm, listener registry and
// console. Guest calls are synchronous; an Instance must not be used from
// more than one goroutine at a time.
type Instance struct {
	engine   *Engine
	module   *Module
	name     string
	guest    api.Module
	width    memory.Width
	mem      *memory.Accessor
	realm    *dom.Realm
	env      event.Env
	console  *Console
	rand     io.Reader
	opener   Opener
	logger   *slog.Logger
	bridge   *listener.Bridge
	registry *listener.Registry
}

// Instantiate creates a guest instance of m. The start function is not run;
// call Start.
func (e *Engine) Instantiate(ctx context.Context, m *Module, cfg InstanceConfig) (*Instance, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	realm := cfg.Realm
	if realm == nil {
		realm = dom.NewRealm()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = e.logger
	}
	console := cfg.Console
	if console == nil {
		console = NewConsole(ConsoleConfig{Logger: logger})
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	opener := cfg.Opener
	if opener == nil {
		opener = func(url, name, specs string) {
			logger.Info("guest requested window.open", "url", url, "name", name, "specs", specs)
		}
	}

	inst := &Instance{
		engine:  e,
		module:  m,
		name:    fmt.Sprintf("guest-%d", e.counter.Add(1)),
		width:   e.cfg.Width,
		realm:   realm,
		env:     event.RealmEnv(realm),
		console: console,
		rand:    rnd,
		opener:  opener,
		logger:  logger,
	}
	inst.bridge = listener.NewBridge(inst, logger)
	inst.registry = listener.NewRegistry(inst.bridge)

	// Register before instantiation so host calls made during it resolve
	e.register(inst)

	modConfig := wazero.NewModuleConfig().
		WithName(inst.name).
		WithStartFunctions()
	guest, err := e.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		e.unregister(inst.name)
		return nil, &RuntimeError{Operation: "module instantiation", Err: err}
	}
	inst.guest = guest

	mem := guest.ExportedMemory(ExportMemory)
	if mem == nil {
		inst.Close(context.Background())
		return nil, &ABIError{Export: ExportMemory, Reason: "not exported"}
	}
	inst.mem, err = memory.New(memory.Wazero(mem), inst.width)
	if err != nil {
		inst.Close(context.Background())
		return nil, err
	}
	return inst, nil
}

// Name returns the unique module name of the instance.
func (i *Instance) Name() string { return i.name }

// Realm returns the instance's DOM realm.
func (i *Instance) Realm() *dom.Realm { return i.realm }

// Registry returns the listener registry.
func (i *Instance) Registry() *listener.Registry { return i.registry }

// Memory returns an accessor over the guest memory.
func (i *Instance) Memory() *memory.Accessor { return i.mem }

// Console returns the guest console.
func (i *Instance) Console() *Console { return i.console }

// HasExport reports whether the guest exports the function name.
func (i *Instance) HasExport(name string) bool { return i.module.HasExport(name) }

// Call invokes an exported guest function.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	if i.guest == nil || i.guest.IsClosed() {
		return nil, ErrClosed
	}
	fn := i.guest.ExportedFunction(name)
	if fn == nil {
		return nil, &ABIError{Export: name, Reason: "not exported"}
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, &RuntimeError{Operation: "call " + name, Err: err}
	}
	return results, nil
}

// Start runs the guest's _start.
func (i *Instance) Start(ctx context.Context) error {
	_, err := i.Call(ctx, ExportStart)
	return err
}

// Step runs one frame with dt seconds elapsed and reports whether the guest
// wants more frames. odinCtx is the guest's default context pointer. A
// guest without a step export never wants frames.
func (i *Instance) Step(ctx context.Context, dt float64, odinCtx uint32) (bool, error) {
	if !i.HasExport(ExportStep) {
		return false, nil
	}
	results, err := i.Call(ctx, ExportStep, api.EncodeF64(dt), api.EncodeU32(odinCtx))
	if err != nil {
		return false, err
	}
	return len(results) > 0 && api.DecodeU32(results[0]) != 0, nil
}

// End runs the guest's _end if it exports one.
func (i *Instance) End(ctx context.Context) error {
	if !i.HasExport(ExportEnd) {
		return nil
	}
	_, err := i.Call(ctx, ExportEnd)
	i.console.Flush()
	return err
}

// ContextPointer implements listener.Invoker.
func (i *Instance) ContextPointer(ctx context.Context) (uint32, error) {
	if !i.HasExport(ExportContextPtr) {
		return 0, &ABIError{Export: ExportContextPtr, Reason: "not exported"}
	}
	results, err := i.Call(ctx, ExportContextPtr)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, &ABIError{Export: ExportContextPtr, Reason: "no return value"}
	}
	return api.DecodeU32(results[0]), nil
}

// Callback implements listener.Invoker.
func (i *Instance) Callback(ctx context.Context, data, callback, odinCtx uint32) error {
	_, err := i.Call(ctx, ExportEventCallback,
		api.EncodeU32(data), api.EncodeU32(callback), api.EncodeU32(odinCtx))
	return err
}

// DispatchEvent dispatches ev to target and returns whether the default
// action is still allowed, plus any guest callback failures.
func (i *Instance) DispatchEvent(ctx context.Context, target dom.Target, ev dom.Event) (bool, error) {
	i.realm.Stamp(ev)
	ok := target.DispatchEvent(ctx, ev)
	return ok, i.bridge.TakeErrors()
}

// Close detaches all listeners and closes the guest module.
func (i *Instance) Close(ctx context.Context) error {
	i.registry.Clear()
	i.console.Flush()
	i.engine.unregister(i.name)
	if i.guest == nil {
		return nil
	}
	return i.guest.Close(ctx)
}
