package wasm

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

const (
	// MaxConsoleLineSize is the longest console line kept (4KB).
	MaxConsoleLineSize = 4096

	// DefaultConsoleHistory is the number of console lines retained.
	DefaultConsoleHistory = 512

	// DefaultConsoleRateLimit is the number of console lines per second
	// mirrored to the logger.
	DefaultConsoleRateLimit = 50
)

// Stream identifies a guest output stream by its descriptor.
type Stream uint32

const (
	Stdout Stream = 1
	Stderr Stream = 2
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// ConsoleLine is one complete line of guest output.
type ConsoleLine struct {
	Stream Stream
	Text   string
}

// ConsoleConfig configures a Console. Zero values select the defaults;
// nil writers discard.
type ConsoleConfig struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	RateLimit float64
	History   int
}

// Console buffers guest writes per stream and emits complete lines.
type Console struct {
	mu          sync.Mutex
	out         [3]io.Writer
	logger      *slog.Logger
	rateLimiter *rate.Limiter
	partial     [3]strings.Builder
	history     []ConsoleLine
	maxHistory  int
}

// NewConsole creates a console.
func NewConsole(cfg ConsoleConfig) *Console {
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = DefaultConsoleRateLimit
	}
	history := cfg.History
	if history <= 0 {
		history = DefaultConsoleHistory
	}
	c := &Console{
		logger:      cfg.Logger,
		rateLimiter: rate.NewLimiter(rate.Limit(limit), int(limit)),
		maxHistory:  history,
	}
	c.out[Stdout] = cfg.Stdout
	c.out[Stderr] = cfg.Stderr
	return c
}

// Write appends guest output to stream. Text after the last newline is held
// until the next write or Flush.
func (c *Console) Write(stream Stream, s string) {
	if stream != Stdout && stream != Stderr {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		buf := &c.partial[stream]
		buf.WriteString(s[:i])
		line := buf.String()
		buf.Reset()
		c.emit(stream, line)
		s = s[i+1:]
	}
	c.partial[stream].WriteString(s)
}

// Flush emits any held partial lines.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, stream := range []Stream{Stdout, Stderr} {
		if buf := &c.partial[stream]; buf.Len() > 0 {
			line := buf.String()
			buf.Reset()
			c.emit(stream, line)
		}
	}
}

// Lines returns a copy of the retained history, oldest first.
func (c *Console) Lines() []ConsoleLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConsoleLine(nil), c.history...)
}

func (c *Console) emit(stream Stream, line string) {
	line = strings.TrimSuffix(line, "\r")
	line = strings.ToValidUTF8(line, "�")
	if len(line) > MaxConsoleLineSize {
		line = memory.TruncateUTF8(line, MaxConsoleLineSize) + " [truncated]"
	}

	c.history = append(c.history, ConsoleLine{Stream: stream, Text: line})
	if n := len(c.history) - c.maxHistory; n > 0 {
		c.history = append(c.history[:0], c.history[n:]...)
	}

	if w := c.out[stream]; w != nil {
		io.WriteString(w, line+"\n")
	}

	// Rate limiting only applies to the log mirror
	if c.logger == nil || !c.rateLimiter.Allow() {
		return
	}
	if stream == Stderr {
		c.logger.Error("[guest] " + line)
	} else {
		c.logger.Info("[guest] " + line)
	}
}
