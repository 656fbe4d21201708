package wasmdom

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// Option configures a Runtime using the functional options pattern.
type Option func(*config)

type config struct {
	width            memory.Width
	logger           *slog.Logger
	memoryLimitPages uint32
	cacheDir         string
	diskCache        bool
	moduleCacheSize  int
}

func defaultConfig() *config {
	return &config{
		width:     memory.Width32,
		diskCache: true,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) validate() error {
	if err := c.width.Validate(); err != nil {
		return err
	}
	if c.moduleCacheSize < 0 {
		return fmt.Errorf("module cache size must be non-negative, got %d", c.moduleCacheSize)
	}
	return nil
}

// WithWordWidth sets the guest int size in bytes: 4 for js_wasm32, 8 for
// js_wasm64p32. Default: 4.
func WithWordWidth(n int) Option {
	return func(c *config) {
		c.width = memory.Width(n)
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *config) {
		c.memoryLimitPages = pages
	}
}

// WithCacheDir overrides the compilation cache directory.
// Default: $XDG_CACHE_HOME/wasmdom/wasm.
func WithCacheDir(dir string) Option {
	return func(c *config) {
		c.cacheDir = dir
	}
}

// WithDiskCache turns the on-disk compilation cache on or off.
// Default: on.
func WithDiskCache(enabled bool) Option {
	return func(c *config) {
		c.diskCache = enabled
	}
}

// WithModuleCacheSize sets how many compiled modules are kept in memory.
func WithModuleCacheSize(n int) Option {
	return func(c *config) {
		c.moduleCacheSize = n
	}
}

// InstanceOption configures one guest instance.
type InstanceOption func(*instanceConfig)

type instanceConfig struct {
	realm          *dom.Realm
	clock          func() time.Time
	stdout         io.Writer
	stderr         io.Writer
	consoleRate    float64
	consoleHistory int
	rand           io.Reader
	opener         func(url, name, specs string)
	logger         *slog.Logger
}

func applyInstanceOptions(opts []InstanceOption) *instanceConfig {
	cfg := &instanceConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *instanceConfig) validate() error {
	if c.consoleRate < 0 {
		return fmt.Errorf("console rate limit must be non-negative, got %v", c.consoleRate)
	}
	if c.consoleHistory < 0 {
		return fmt.Errorf("console history must be non-negative, got %d", c.consoleHistory)
	}
	return nil
}

// WithRealm uses r as the instance's DOM instead of an empty one.
// WithClock is ignored when a realm is given.
func WithRealm(r *dom.Realm) InstanceOption {
	return func(c *instanceConfig) {
		c.realm = r
	}
}

// WithClock replaces time.Now for time_now, tick_now and event timestamps.
func WithClock(now func() time.Time) InstanceOption {
	return func(c *instanceConfig) {
		c.clock = now
	}
}

// WithStdout sets where guest stdout lines are written. Default: discard.
func WithStdout(w io.Writer) InstanceOption {
	return func(c *instanceConfig) {
		c.stdout = w
	}
}

// WithStderr sets where guest stderr lines are written. Default: discard.
func WithStderr(w io.Writer) InstanceOption {
	return func(c *instanceConfig) {
		c.stderr = w
	}
}

// WithConsoleRateLimit sets how many guest lines per second are mirrored
// to the logger. Default: 50.
func WithConsoleRateLimit(perSecond float64) InstanceOption {
	return func(c *instanceConfig) {
		c.consoleRate = perSecond
	}
}

// WithConsoleHistory sets how many guest lines ConsoleLines retains.
// Default: 512.
func WithConsoleHistory(n int) InstanceOption {
	return func(c *instanceConfig) {
		c.consoleHistory = n
	}
}

// WithRand sets the source for rand_bytes. Default: crypto/rand.
func WithRand(r io.Reader) InstanceOption {
	return func(c *instanceConfig) {
		c.rand = r
	}
}

// WithOpener handles the guest's requests to open a window.
// Default: log the request.
func WithOpener(fn func(url, name, specs string)) InstanceOption {
	return func(c *instanceConfig) {
		c.opener = fn
	}
}

// WithInstanceLogger overrides the runtime logger for one instance.
func WithInstanceLogger(logger *slog.Logger) InstanceOption {
	return func(c *instanceConfig) {
		c.logger = logger
	}
}
