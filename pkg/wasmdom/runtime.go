package wasmdom

import (
	"context"
	"io"
	"log/slog"

	"github.com/wasmdom/wasmdom-go/internal/wasm"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Runtime compiles and instantiates guests. It is safe for concurrent use.
type Runtime struct {
	engine *wasm.Engine
	logger *slog.Logger
}

// Module is a compiled guest module.
type Module struct {
	mod *wasm.Module
}

// Digest returns the hex SHA-256 of the module bytes.
func (m *Module) Digest() string { return m.mod.Digest }

// HasExport reports whether the module exports the function name.
func (m *Module) HasExport(name string) bool { return m.mod.HasExport(name) }

// New creates a runtime with the host modules installed.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.logger
	if logger == nil {
		logger = discardLogger
	}

	engine, err := wasm.NewEngine(ctx, wasm.EngineConfig{
		Width:            cfg.width,
		Logger:           logger,
		MemoryLimitPages: cfg.memoryLimitPages,
		CacheDir:         cfg.cacheDir,
		DisableDiskCache: !cfg.diskCache,
		ModuleCacheSize:  cfg.moduleCacheSize,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{engine: engine, logger: logger}, nil
}

// WordWidth returns the guest word width.
func (r *Runtime) WordWidth() memory.Width {
	return r.engine.Width()
}

// Load reads and compiles a module file.
func (r *Runtime) Load(ctx context.Context, path string) (*Module, error) {
	m, err := r.engine.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded module", "path", path, "digest", m.Digest)
	return &Module{mod: m}, nil
}

// LoadBytes compiles module bytes.
func (r *Runtime) LoadBytes(ctx context.Context, wasmBytes []byte) (*Module, error) {
	m, err := r.engine.Compile(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	return &Module{mod: m}, nil
}

// Instantiate creates a guest instance. The guest's _start is not run
// until Start.
func (r *Runtime) Instantiate(ctx context.Context, m *Module, opts ...InstanceOption) (*Instance, error) {
	cfg := applyInstanceOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.logger
	if logger == nil {
		logger = r.logger
	}
	realm := cfg.realm
	if realm == nil {
		realm = dom.NewRealm(dom.WithClock(cfg.clock))
	}

	console := wasm.NewConsole(wasm.ConsoleConfig{
		Stdout:    cfg.stdout,
		Stderr:    cfg.stderr,
		Logger:    logger,
		RateLimit: cfg.consoleRate,
		History:   cfg.consoleHistory,
	})
	inst, err := r.engine.Instantiate(ctx, m.mod, wasm.InstanceConfig{
		Realm:   realm,
		Console: console,
		Rand:    cfg.rand,
		Opener:  cfg.opener,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return &Instance{inst: inst, logger: logger}, nil
}

// Close releases the runtime. Instances it created stop working.
// Safe to call multiple times.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}
