package event

import "github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"

// Kind selects the body written after the common prefix.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindWheel
	KindPointerLike
	KindKeyboard
	KindScroll
	KindVisibility
	KindGamepad
)

func (k Kind) String() string {
	switch k {
	case KindWheel:
		return "wheel"
	case KindPointerLike:
		return "pointer-like"
	case KindKeyboard:
		return "keyboard"
	case KindScroll:
		return "scroll"
	case KindVisibility:
		return "visibility"
	case KindGamepad:
		return "gamepad"
	}
	return "unknown"
}

type mouseLike interface {
	Mouse() *dom.MouseEvent
}

// Classify picks the record body for e. Wheel events are also mouse events,
// so the checks run in a fixed priority order.
func Classify(e dom.Event) Kind {
	if e == nil {
		return KindUnknown
	}
	if _, ok := e.(*dom.WheelEvent); ok {
		return KindWheel
	}
	if _, ok := e.(mouseLike); ok {
		return KindPointerLike
	}
	if _, ok := e.(*dom.KeyboardEvent); ok {
		return KindKeyboard
	}
	switch e.Base().Type {
	case "scroll":
		return KindScroll
	case "visibilitychange":
		return KindVisibility
	}
	if _, ok := e.(*dom.GamepadEvent); ok {
		return KindGamepad
	}
	return KindUnknown
}
