package event

import (
	"fmt"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

var shapes = []struct {
	name  string
	event func() dom.Event
}{
	{"prefix", func() dom.Event { return &dom.BaseEvent{Type: "custom"} }},
	{"wheel", func() dom.Event { return &dom.WheelEvent{} }},
	{"mouse", func() dom.Event { return &dom.MouseEvent{} }},
	{"pointer", func() dom.Event { return &dom.PointerEvent{} }},
	{"keyboard", func() dom.Event { return &dom.KeyboardEvent{} }},
	{"scroll", func() dom.Event { return &dom.BaseEvent{Type: "scroll"} }},
	{"visibility", func() dom.Event { return &dom.BaseEvent{Type: "visibilitychange"} }},
	{"gamepad", func() dom.Event { return &dom.GamepadEvent{} }},
	{"gamepad_state", nil},
}

// Shapes lists the record shapes Describe accepts.
func Shapes() []string {
	names := make([]string, len(shapes))
	for i, s := range shapes {
		names[i] = s.name
	}
	return names
}

// Describe returns the field table and total size of a record shape for the
// given word width. Offsets are relative to an 8-aligned record address.
func Describe(shape string, width memory.Width) ([]Field, uint32, error) {
	if err := width.Validate(); err != nil {
		return nil, 0, err
	}
	for _, s := range shapes {
		if s.name != shape {
			continue
		}
		w := newWriter(nil, 0, width)
		w.record = true
		if s.event == nil {
			encodeGamepad(w, "", nil)
		} else {
			encode(w, &Staged{Event: s.event()}, nil)
		}
		return w.fields, w.size(), nil
	}
	return nil, 0, fmt.Errorf("unknown record shape %q", shape)
}
