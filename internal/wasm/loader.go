package wasm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wasmdom/wasmdom-go/internal/safefile"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

const (
	// MaxWasmFileSize is the maximum size of a Wasm file (64MB).
	MaxWasmFileSize = 64 * 1024 * 1024

	// Host module names imported by guests.
	EnvModule = "odin_env"
	DOMModule = "odin_dom"
)

// Exports the engine looks for.
const (
	ExportMemory        = "memory"
	ExportStart         = "_start"
	ExportEnd           = "_end"
	ExportStep          = "step"
	ExportContextPtr    = "default_context_ptr"
	ExportEventCallback = "odin_dom_do_event_callback"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	// Width is the guest word width. It selects the host function
	// signatures, so every module run by one engine shares it.
	Width memory.Width

	Logger *slog.Logger

	// MemoryLimitPages caps guest memory (64KiB pages). Zero keeps the
	// wazero default.
	MemoryLimitPages uint32

	// CacheDir overrides the on-disk compilation cache directory.
	CacheDir string

	// DisableDiskCache turns the on-disk compilation cache off.
	DisableDiskCache bool

	// ModuleCacheSize is the number of compiled modules kept in memory.
	ModuleCacheSize int
}

// Module is a compiled, ABI-checked guest module.
type Module struct {
	Digest   string
	compiled wazero.CompiledModule
	exports  map[string]bool
}

// HasExport reports whether the module exports a function named name.
func (m *Module) HasExport(name string) bool {
	return m.exports[name]
}

// Engine owns a wazero runtime with the host modules installed.
// It is safe for concurrent use; the instances it creates are not.
type Engine struct {
	cfg     EngineConfig
	logger  *slog.Logger
	runtime wazero.Runtime
	cache   wazero.CompilationCache
	modules *moduleCache

	mu        sync.RWMutex
	instances map[string]*Instance
	counter   atomic.Uint64
	closed    atomic.Bool
}

// NewEngine creates a runtime, instantiates WASI and the host modules.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	if err := cfg.Width.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rtConfig := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	// Setup disk cache
	var cache wazero.CompilationCache
	if !cfg.DisableDiskCache {
		cacheDir, err := getCacheDir(cfg.CacheDir)
		if err == nil {
			cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		}
		if err == nil {
			rtConfig = rtConfig.WithCompilationCache(cache)
			logger.Debug("using wasm compilation cache", "dir", cacheDir)
		} else {
			logger.Warn("failed to create compilation cache, continuing without cache", "error", err)
		}
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		runtime:   wazero.NewRuntimeWithConfig(ctx, rtConfig),
		cache:     cache,
		modules:   newModuleCache(cfg.ModuleCacheSize),
		instances: make(map[string]*Instance),
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, e.runtime); err != nil {
		e.Close(context.Background())
		return nil, &RuntimeError{Operation: "wasi instantiation", Err: err}
	}
	if err := e.instantiateHost(ctx, EnvModule, envFunctions()); err != nil {
		e.Close(context.Background())
		return nil, err
	}
	if err := e.instantiateHost(ctx, DOMModule, domFunctions()); err != nil {
		e.Close(context.Background())
		return nil, err
	}
	return e, nil
}

// Width returns the engine's guest word width.
func (e *Engine) Width() memory.Width {
	return e.cfg.Width
}

// Close releases the runtime and every compiled module. Instances created
// by the engine stop working. Safe to call multiple times.
func (e *Engine) Close(ctx context.Context) error {
	if e.closed.Swap(true) {
		return nil
	}
	var firstErr error

	if err := e.modules.Close(ctx); err != nil {
		firstErr = err
	}

	// Close runtime before the cache it writes to
	if e.runtime != nil {
		if err := e.runtime.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if e.cache != nil {
		if err := e.cache.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// LoadFile reads and compiles a module file.
func (e *Engine) LoadFile(ctx context.Context, path string) (*Module, error) {
	wasmBytes, err := ReadModuleFile(path)
	if err != nil {
		return nil, err
	}
	return e.Compile(ctx, wasmBytes)
}

// Compile compiles wasm bytes and validates the exports. Modules are cached
// by content, so compiling the same bytes twice is cheap.
func (e *Engine) Compile(ctx context.Context, wasmBytes []byte) (*Module, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	sum := sha256.Sum256(wasmBytes)
	digest := hex.EncodeToString(sum[:])
	if m, ok := e.modules.Get(digest); ok {
		return m, nil
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, &RuntimeError{Operation: "wasm compilation", Err: fmt.Errorf("%w: %v", ErrInvalidWasm, err)}
	}
	if err := validateABI(compiled); err != nil {
		compiled.Close(context.Background())
		return nil, err
	}

	exports := make(map[string]bool)
	for name := range compiled.ExportedFunctions() {
		exports[name] = true
	}
	m, evicted := e.modules.Put(&Module{Digest: digest, compiled: compiled, exports: exports})
	for _, old := range evicted {
		old.compiled.Close(context.Background())
	}
	e.logger.Debug("compiled wasm module", "digest", digest[:12], "exports", len(exports))
	return m, nil
}

// ReadModuleFile reads a module file with symlink and size protection.
func ReadModuleFile(path string) ([]byte, error) {
	wasmBytes, err := safefile.ReadRegular(path, MaxWasmFileSize)
	switch {
	case errors.Is(err, safefile.ErrTooLarge):
		return nil, ErrFileTooLarge
	case errors.Is(err, safefile.ErrNotRegularFile):
		return nil, fmt.Errorf("wasm path is not a regular file: %w", err)
	case err != nil:
		return nil, fmt.Errorf("failed to read wasm file: %w", err)
	}
	return wasmBytes, nil
}

// validateABI checks the exports every guest needs. Event callbacks and the
// frame loop are optional and checked when used.
func validateABI(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		return &ABIError{Export: ExportMemory, Reason: "missing required export"}
	}
	if _, ok := compiled.ExportedFunctions()[ExportStart]; !ok {
		return &ABIError{Export: ExportStart, Reason: "missing required export"}
	}
	return nil
}

// getCacheDir returns the wazero compilation cache directory.
// It follows the XDG Base Directory specification.
func getCacheDir(override string) (string, error) {
	dir := override
	if dir == "" {
		cacheHome := os.Getenv("XDG_CACHE_HOME")
		if cacheHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			cacheHome = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(cacheHome, "wasmdom", "wasm")
	}

	// Create directory with 0700 permissions (user-only access)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func (e *Engine) register(inst *Instance) {
	e.mu.Lock()
	e.instances[inst.name] = inst
	e.mu.Unlock()
}

func (e *Engine) unregister(name string) {
	e.mu.Lock()
	delete(e.instances, name)
	e.mu.Unlock()
}

func (e *Engine) lookup(m api.Module) *Instance {
	return e.lookupName(m.Name())
}

func (e *Engine) lookupName(name string) *Instance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.instances[name]
}
