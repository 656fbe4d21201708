package remote

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Server.
type Option func(*config)

type config struct {
	readLimit    int64
	pingInterval time.Duration
	writeWait    time.Duration
	checkOrigin  func(*http.Request) bool
	logger       *slog.Logger
}

func defaultConfig() *config {
	return &config{
		readLimit:    64 * 1024,
		pingInterval: 30 * time.Second,
		writeWait:    10 * time.Second,
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
	if c.readLimit <= 0 {
		return fmt.Errorf("read limit must be positive, got %d", c.readLimit)
	}
	if c.pingInterval <= 0 {
		return fmt.Errorf("ping interval must be positive, got %v", c.pingInterval)
	}
	return nil
}

// pongWait is how long a connection may stay silent.
func (c *config) pongWait() time.Duration {
	return c.pingInterval * 2
}

// WithReadLimit bounds the size of one message. Default 64KB.
func WithReadLimit(n int64) Option {
	return func(c *config) {
		c.readLimit = n
	}
}

// WithPingInterval sets the keepalive ping interval. Default 30s.
func WithPingInterval(d time.Duration) Option {
	return func(c *config) {
		c.pingInterval = d
	}
}

// WithCheckOrigin sets the upgrade origin check. By default only
// same-origin requests and requests without an Origin header are accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *config) {
		c.checkOrigin = fn
	}
}

// WithLogger sets the server logger. nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
