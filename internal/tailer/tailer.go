// Package tailer follows a growing text file line by line.
package tailer

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// Config configures a Tailer.
type Config struct {
	// FromStart reads existing content before following; otherwise only
	// lines appended after New are delivered.
	FromStart bool
	// Poll uses polling instead of inotify.
	Poll bool
	// ReOpen follows the path across truncation and recreation.
	ReOpen bool
}

// DefaultConfig returns the configuration used for event scripts.
func DefaultConfig() Config {
	return Config{ReOpen: true}
}

// Tailer delivers lines appended to a file.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New starts following path. Both channels close when ctx ends or Stop is
// called.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    cfg.ReOpen,
		MustExist: true,
		Poll:      cfg.Poll,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the line channel. Trailing carriage returns are removed.
func (tl *Tailer) Lines() <-chan string { return tl.lines }

// Errors returns read errors.
func (tl *Tailer) Errors() <-chan error { return tl.errs }

// Stop stops following and waits for the reader goroutine to exit.
func (tl *Tailer) Stop() error {
	var err error
	tl.once.Do(func() {
		tl.cancel()
		<-tl.done
		err = tl.t.Stop()
		tl.t.Cleanup()
	})
	return err
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case tl.errs <- line.Err:
				case <-ctx.Done():
					return
				default:
				}
				continue
			}
			select {
			case tl.lines <- strings.TrimRight(line.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}
