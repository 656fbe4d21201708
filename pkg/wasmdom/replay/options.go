package replay

import (
	"fmt"
	"log/slog"
)

// DefaultMaxLastN is the largest accepted WithLastN value.
const DefaultMaxLastN = 10000

// Option configures a Player.
type Option func(*config)

type config struct {
	follow        bool
	poll          bool
	lastN         int
	maxLastNBytes int // 0 = unlimited
	maxLineBytes  int // 0 = unlimited
	stopOnError   bool
	logger        *slog.Logger
}

func defaultConfig() *config {
	return &config{
		maxLastNBytes: 10 * 1024 * 1024,
		maxLineBytes:  64 * 1024,
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
	if c.lastN < 0 {
		return fmt.Errorf("last N must be non-negative, got %d", c.lastN)
	}
	if c.lastN > DefaultMaxLastN {
		return fmt.Errorf("last N (%d) exceeds maximum of %d", c.lastN, DefaultMaxLastN)
	}
	if c.maxLastNBytes < 0 {
		return fmt.Errorf("max last N bytes must be non-negative, got %d", c.maxLastNBytes)
	}
	if c.maxLineBytes < 0 {
		return fmt.Errorf("max line bytes must be non-negative, got %d", c.maxLineBytes)
	}
	return nil
}

// WithFollow keeps reading lines appended to the script after the
// existing ones have been played.
func WithFollow(follow bool) Option {
	return func(c *config) {
		c.follow = follow
	}
}

// WithPoll makes follow mode poll the file instead of using inotify.
func WithPoll(poll bool) Option {
	return func(c *config) {
		c.poll = poll
	}
}

// WithLastN plays only the last n non-empty lines already in the script.
// Zero plays every line.
func WithLastN(n int) Option {
	return func(c *config) {
		c.lastN = n
	}
}

// WithMaxLastNBytes bounds the bytes read backwards for WithLastN.
// Default 10MB; 0 means unlimited.
func WithMaxLastNBytes(n int) Option {
	return func(c *config) {
		c.maxLastNBytes = n
	}
}

// WithMaxLineBytes bounds a single script line. Default 64KB; 0 means
// unlimited.
func WithMaxLineBytes(n int) Option {
	return func(c *config) {
		c.maxLineBytes = n
	}
}

// WithStopOnError ends playback at the first parse or dispatch error.
// By default bad lines are reported and skipped.
func WithStopOnError(stop bool) Option {
	return func(c *config) {
		c.stopOnError = stop
	}
}

// WithLogger sets a logger for debug output. nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
