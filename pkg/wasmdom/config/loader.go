package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wasmdom/wasmdom-go/internal/safefile"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

const (
	// MaxFileSize is the maximum size of a configuration file (1MB).
	MaxFileSize = 1 * 1024 * 1024

	// MaxElements is the maximum number of document elements.
	MaxElements = 10000

	// SupportedVersion is the supported configuration format version.
	SupportedVersion = 1
)

// sanitizePathError removes the path from os.PathError so error messages
// don't expose file system paths.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and validates a configuration file. Symlinks and special
// files are rejected.
func Load(path string) (*File, error) {
	data, err := safefile.ReadRegular(path, MaxFileSize)
	if err != nil {
		if errors.Is(err, safefile.ErrNotRegularFile) {
			return nil, errors.New("config file must be a regular file (not a symlink, FIFO, or device)")
		}
		return nil, fmt.Errorf("failed to read config file: %w", sanitizePathError(err))
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates configuration data. Unknown keys are
// rejected.
func LoadBytes(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, errors.New("config file is empty")
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file for structural errors.
func (f *File) Validate() error {
	if f.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", f.Version, SupportedVersion),
		}
	}
	if f.WordWidth != 0 && f.WordWidth != 4 && f.WordWidth != 8 {
		return &ValidationError{Field: "word_width", Message: fmt.Sprintf("must be 4 or 8, got %d", f.WordWidth)}
	}
	if f.FrameInterval < 0 {
		return &ValidationError{Field: "frame_interval", Message: "must not be negative"}
	}
	if f.Console.RateLimit < 0 {
		return &ValidationError{Field: "console.rate_limit", Message: "must not be negative"}
	}
	if f.Console.History < 0 {
		return &ValidationError{Field: "console.history", Message: "must not be negative"}
	}
	if f.Window.DevicePixelRatio < 0 {
		return &ValidationError{Field: "window.device_pixel_ratio", Message: "must not be negative"}
	}
	if len(f.Document.Elements) > MaxElements {
		return &ValidationError{
			Field:   "document.elements",
			Message: fmt.Sprintf("too many elements (%d), maximum allowed is %d", len(f.Document.Elements), MaxElements),
		}
	}

	seenIDs := make(map[string]int, len(f.Document.Elements))
	for i, el := range f.Document.Elements {
		if el.ID == "" {
			return &ElementError{Index: i, Field: "id", Message: "id is required"}
		}
		if el.Tag == "" {
			return &ElementError{Index: i, ID: el.ID, Field: "tag", Message: "tag is required"}
		}
		if prev, exists := seenIDs[el.ID]; exists {
			return &ElementError{
				Index:   i,
				ID:      el.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at elements[%d])", prev),
			}
		}
		// Parents must come first, which also rules out cycles
		if el.Parent != "" {
			if _, ok := seenIDs[el.Parent]; !ok {
				return &ElementError{
					Index:   i,
					ID:      el.ID,
					Field:   "parent",
					Message: fmt.Sprintf("parent %q must be defined before its children", el.Parent),
				}
			}
		}
		seenIDs[el.ID] = i

		if el.Value != nil {
			if _, err := toValue(el.Value); err != nil {
				return &ElementError{Index: i, ID: el.ID, Field: "value", Message: "unsupported value type", Cause: err}
			}
		}
		for name, v := range el.Properties {
			if _, ok := dom.LookupProperty(name); !ok {
				return &ElementError{Index: i, ID: el.ID, Field: "properties", Message: fmt.Sprintf("unsupported property %q", name)}
			}
			if _, err := toValue(v); err != nil {
				return &ElementError{Index: i, ID: el.ID, Field: "properties." + name, Message: "unsupported value type", Cause: err}
			}
		}
	}

	seenPads := make(map[int]bool, len(f.Gamepads))
	for i, g := range f.Gamepads {
		field := fmt.Sprintf("gamepads[%d]", i)
		if g.Index < 0 {
			return &ValidationError{Field: field + ".index", Message: "must not be negative"}
		}
		if seenPads[g.Index] {
			return &ValidationError{Field: field + ".index", Message: fmt.Sprintf("duplicate gamepad index %d", g.Index)}
		}
		seenPads[g.Index] = true
	}
	return nil
}

// errUnsupportedValue is the cause for non-scalar element values.
var errUnsupportedValue = errors.New("value must be a number, string or boolean")

func toValue(v any) (dom.Value, error) {
	switch x := v.(type) {
	case string:
		return dom.StringValue(x), nil
	case bool:
		return dom.BoolValue(x), nil
	case int:
		return dom.NumberValue(float64(x)), nil
	case int64:
		return dom.NumberValue(float64(x)), nil
	case uint64:
		return dom.NumberValue(float64(x)), nil
	case float64:
		return dom.NumberValue(x), nil
	}
	return dom.Value{}, fmt.Errorf("%w, got %T", errUnsupportedValue, v)
}
