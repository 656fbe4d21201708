package replay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/wasmdom/wasmdom-go/internal/safefile"
	"github.com/wasmdom/wasmdom-go/internal/script"
	"github.com/wasmdom/wasmdom-go/internal/tailer"
)

// errBuffer is the buffer size of the error channel.
const errBuffer = 16

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Result reports one dispatched record.
type Result struct {
	// Line counts the lines this player has read, starting at 1.
	Line             int
	Record           *script.Record
	DefaultPrevented bool
}

// Player plays an event script into a Dispatcher.
type Player struct {
	cfg  config
	path string
	d    Dispatcher
	log  *slog.Logger

	mu      sync.Mutex
	closed  bool
	playing bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewPlayer validates the options and checks that path is a regular file.
// It does not start reading.
func NewPlayer(path string, d Dispatcher, opts ...Option) (*Player, error) {
	if d == nil {
		return nil, errors.New("replay: nil dispatcher")
	}
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, fmt.Errorf("opening event script: %w", err)
	}
	f.Close()

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	return &Player{cfg: *cfg, path: path, d: d, log: log}, nil
}

// Play starts playback and returns its channels. Both close when the
// script is exhausted (without WithFollow), ctx ends, Close is called, or
// WithStopOnError stops playback.
//
// Returns ErrPlayerClosed after Close and ErrAlreadyPlaying on a second
// call.
func (p *Player) Play(ctx context.Context) (<-chan Result, <-chan error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, nil, ErrPlayerClosed
	}
	if p.playing {
		return nil, nil, ErrAlreadyPlaying
	}
	p.playing = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.doneCh = make(chan struct{})

	out := make(chan Result)
	errCh := make(chan error, errBuffer)
	go p.run(ctx, out, errCh)
	return out, errCh, nil
}

// Close stops playback and waits for it to exit. Safe to call more than
// once.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	doneCh := p.doneCh
	p.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (p *Player) run(ctx context.Context, out chan<- Result, errCh chan<- error) {
	defer close(p.doneCh)
	defer close(out)
	defer close(errCh)

	n := 0
	fromStart := true
	if p.cfg.lastN > 0 {
		lines, err := readLastNLines(p.path, p.cfg.lastN, p.cfg.maxLastNBytes, p.cfg.maxLineBytes)
		if err != nil {
			sendError(ctx, errCh, &PlayError{Op: OpLastN, Err: err})
			return
		}
		p.log.Debug("replaying last lines", "n", len(lines), "path", p.path)
		for _, line := range lines {
			n++
			if !p.playLine(ctx, n, line, out, errCh) {
				return
			}
		}
		if !p.cfg.follow {
			return
		}
		fromStart = false
	}

	if !p.cfg.follow {
		p.readOnce(ctx, out, errCh)
		return
	}

	cfg := tailer.DefaultConfig()
	cfg.FromStart = fromStart
	cfg.Poll = p.cfg.poll
	t, err := tailer.New(ctx, p.path, cfg)
	if err != nil {
		sendError(ctx, errCh, &PlayError{Op: OpTail, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()
	p.log.Debug("following event script", "path", p.path, "from_start", fromStart)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			n++
			if p.cfg.maxLineBytes > 0 && len(line) > p.cfg.maxLineBytes {
				sendError(ctx, errCh, &PlayError{Op: OpRead, Line: n, Err: ErrReplayLimitExceeded})
				if p.cfg.stopOnError {
					return
				}
				continue
			}
			if !p.playLine(ctx, n, line, out, errCh) {
				return
			}
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, &PlayError{Op: OpTail, Err: err})
		}
	}
}

func (p *Player) readOnce(ctx context.Context, out chan<- Result, errCh chan<- error) {
	f, _, err := safefile.OpenRegular(p.path)
	if err != nil {
		sendError(ctx, errCh, &PlayError{Op: OpOpen, Err: err})
		return
	}
	defer f.Close()

	maxLine := p.cfg.maxLineBytes
	if maxLine == 0 {
		maxLine = math.MaxInt32
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), maxLine)

	n := 0
	for sc.Scan() {
		n++
		if !p.playLine(ctx, n, sc.Text(), out, errCh) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = ErrReplayLimitExceeded
		}
		sendError(ctx, errCh, &PlayError{Op: OpRead, Line: n + 1, Err: err})
	}
}

// playLine parses and dispatches one line. It returns false when playback
// should stop.
func (p *Player) playLine(ctx context.Context, n int, line string, out chan<- Result, errCh chan<- error) bool {
	if ctx.Err() != nil {
		return false
	}
	rec, err := script.Parse(line)
	if err != nil {
		sendError(ctx, errCh, &PlayError{Op: OpParse, Line: n, Err: err})
		return !p.cfg.stopOnError
	}
	if rec == nil {
		return true
	}

	prevented, err := Apply(ctx, p.d, rec)
	if err != nil {
		sendError(ctx, errCh, &PlayError{Op: OpDispatch, Line: n, Err: err})
		return !p.cfg.stopOnError
	}

	select {
	case out <- Result{Line: n, Record: rec, DefaultPrevented: prevented}:
		return true
	case <-ctx.Done():
		return false
	}
}

// sendError never blocks; errors are dropped only when the buffer is full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
