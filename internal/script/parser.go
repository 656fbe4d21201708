package script

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineBytes is the longest line Read accepts.
const MaxLineBytes = 64 * 1024

var (
	// ErrInvalidRecord is wrapped by every validation failure.
	ErrInvalidRecord = errors.New("invalid event record")
)

// LineError reports a parse failure on a numbered script line.
type LineError struct {
	Line int // 1-based
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse parses one script line.
//
// Returns:
//   - (*Record, nil): a valid record
//   - (nil, nil): a blank or comment line ("#" or "//")
//   - (nil, error): malformed JSON or an invalid record
func Parse(line string) (*Record, error) {
	line = strings.TrimSpace(strings.TrimRight(line, "\r"))
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return nil, nil
	}

	var r Record
	dec := json.NewDecoder(strings.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after record", ErrInvalidRecord)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the record and defaults an empty Kind to KindEvent.
func (r *Record) Validate() error {
	if r.Target == "" {
		return fmt.Errorf("%w: target is required", ErrInvalidRecord)
	}
	if r.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidRecord)
	}
	if r.Kind == "" {
		r.Kind = KindEvent
	}

	payloads := map[Kind]bool{
		KindMouse:    r.Mouse != nil,
		KindPointer:  r.Pointer != nil,
		KindWheel:    r.Wheel != nil,
		KindKeyboard: r.Keyboard != nil,
		KindGamepad:  r.Gamepad != nil,
	}
	if _, ok := payloads[r.Kind]; !ok && r.Kind != KindEvent {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, r.Kind)
	}
	for k, set := range payloads {
		if set && k != r.Kind {
			return fmt.Errorf("%w: %s payload on a %s record", ErrInvalidRecord, k, r.Kind)
		}
	}
	if r.Kind == KindGamepad {
		if r.Gamepad == nil {
			return fmt.Errorf("%w: gamepad record needs a gamepad payload", ErrInvalidRecord)
		}
		if r.Gamepad.Index < 0 {
			return fmt.Errorf("%w: gamepad index must not be negative", ErrInvalidRecord)
		}
	}
	if r.TimeStamp < 0 {
		return fmt.Errorf("%w: time_stamp must not be negative", ErrInvalidRecord)
	}
	return nil
}

// Read parses a whole script. Parse failures are returned as *LineError
// after the records read so far.
func Read(r io.Reader) ([]*Record, error) {
	var records []*Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLineBytes)
	n := 0
	for sc.Scan() {
		n++
		rec, err := Parse(sc.Text())
		if err != nil {
			return records, &LineError{Line: n, Err: err}
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return records, &LineError{Line: n + 1, Err: err}
	}
	return records, nil
}

// Marshal encodes r as a single script line without a trailing newline.
func Marshal(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
