package replay

import (
	"errors"
	"fmt"
)

var (
	// ErrPlayerClosed is returned by Play after Close.
	ErrPlayerClosed = errors.New("player closed")

	// ErrAlreadyPlaying is returned by a second call to Play.
	ErrAlreadyPlaying = errors.New("already playing")

	// ErrReplayLimitExceeded is returned when WithLastN reading exceeds the
	// byte or line size limits.
	ErrReplayLimitExceeded = errors.New("replay limit exceeded")
)

// Op identifies the player stage that failed.
type Op string

const (
	OpOpen     Op = "open"
	OpRead     Op = "read"
	OpLastN    Op = "last_n"
	OpTail     Op = "tail"
	OpParse    Op = "parse"
	OpDispatch Op = "dispatch"
)

// PlayError is sent on the error channel for failures while playing.
// Line is the 1-based script line, or 0 when no line is involved.
type PlayError struct {
	Op   Op
	Line int
	Err  error
}

func (e *PlayError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("replay %s: line %d: %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("replay %s: %v", e.Op, e.Err)
}

func (e *PlayError) Unwrap() error {
	return e.Err
}
