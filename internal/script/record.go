// Package script parses event scripts: JSON Lines files with one synthetic
// UI event per line.
package script

import (
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

// Kind selects the event variant a record builds.
type Kind string

const (
	KindEvent    Kind = "event"
	KindMouse    Kind = "mouse"
	KindPointer  Kind = "pointer"
	KindWheel    Kind = "wheel"
	KindKeyboard Kind = "keyboard"
	KindGamepad  Kind = "gamepad"
)

// Record is one scripted event. Target is an element id, "#window" or
// "#document". Kind defaults to KindEvent.
type Record struct {
	Seq         int64   `json:"seq,omitempty"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Kind        Kind    `json:"kind,omitempty"`
	Bubbles     bool    `json:"bubbles,omitempty"`
	Cancelable  bool    `json:"cancelable,omitempty"`
	Composed    bool    `json:"composed,omitempty"`
	IsComposing bool    `json:"is_composing,omitempty"`
	TimeStamp   float64 `json:"time_stamp,omitempty"`

	Mouse    *Mouse    `json:"mouse,omitempty"`
	Pointer  *Pointer  `json:"pointer,omitempty"`
	Wheel    *Wheel    `json:"wheel,omitempty"`
	Keyboard *Keyboard `json:"keyboard,omitempty"`
	Gamepad  *Gamepad  `json:"gamepad,omitempty"`

	// Applied to the realm before dispatch.
	Scroll *Scroll `json:"scroll,omitempty"`
	Hidden *bool   `json:"hidden,omitempty"`
}

// Mouse is the mouse payload, shared by pointer and wheel records.
type Mouse struct {
	ScreenX   float64 `json:"screen_x,omitempty"`
	ScreenY   float64 `json:"screen_y,omitempty"`
	ClientX   float64 `json:"client_x,omitempty"`
	ClientY   float64 `json:"client_y,omitempty"`
	OffsetX   float64 `json:"offset_x,omitempty"`
	OffsetY   float64 `json:"offset_y,omitempty"`
	PageX     float64 `json:"page_x,omitempty"`
	PageY     float64 `json:"page_y,omitempty"`
	MovementX float64 `json:"movement_x,omitempty"`
	MovementY float64 `json:"movement_y,omitempty"`
	Ctrl      bool    `json:"ctrl,omitempty"`
	Shift     bool    `json:"shift,omitempty"`
	Alt       bool    `json:"alt,omitempty"`
	Meta      bool    `json:"meta,omitempty"`
	Button    int16   `json:"button,omitempty"`
	Buttons   uint16  `json:"buttons,omitempty"`
}

// Pointer is the pointer payload.
type Pointer struct {
	Mouse
	AltitudeAngle      float64 `json:"altitude_angle,omitempty"`
	AzimuthAngle       float64 `json:"azimuth_angle,omitempty"`
	PersistentDeviceID int64   `json:"persistent_device_id,omitempty"`
	PointerID          int64   `json:"pointer_id,omitempty"`
	Width              float64 `json:"width,omitempty"`
	Height             float64 `json:"height,omitempty"`
	Pressure           float64 `json:"pressure,omitempty"`
	TangentialPressure float64 `json:"tangential_pressure,omitempty"`
	TiltX              float64 `json:"tilt_x,omitempty"`
	TiltY              float64 `json:"tilt_y,omitempty"`
	Twist              float64 `json:"twist,omitempty"`
	PointerType        string  `json:"pointer_type,omitempty"`
	IsPrimary          bool    `json:"is_primary,omitempty"`
}

// Wheel is the wheel payload.
type Wheel struct {
	Mouse
	DeltaX    float64 `json:"delta_x,omitempty"`
	DeltaY    float64 `json:"delta_y,omitempty"`
	DeltaZ    float64 `json:"delta_z,omitempty"`
	DeltaMode uint32  `json:"delta_mode,omitempty"`
}

// Keyboard is the keyboard payload.
type Keyboard struct {
	Key      string `json:"key"`
	Code     string `json:"code,omitempty"`
	Location uint8  `json:"location,omitempty"`
	Ctrl     bool   `json:"ctrl,omitempty"`
	Shift    bool   `json:"shift,omitempty"`
	Alt      bool   `json:"alt,omitempty"`
	Meta     bool   `json:"meta,omitempty"`
	Repeat   bool   `json:"repeat,omitempty"`
	CharCode int32  `json:"char_code,omitempty"`
}

// Gamepad is the gamepad payload. The pad also replaces (or, when not
// connected, clears) the navigator slot at Index.
type Gamepad struct {
	Index     int             `json:"index"`
	ID        string          `json:"id"`
	Mapping   string          `json:"mapping,omitempty"`
	Connected bool            `json:"connected"`
	Timestamp float64         `json:"timestamp,omitempty"`
	Buttons   []GamepadButton `json:"buttons,omitempty"`
	Axes      []float64       `json:"axes,omitempty"`
}

// GamepadButton is one button state.
type GamepadButton struct {
	Value   float64 `json:"value"`
	Pressed bool    `json:"pressed,omitempty"`
	Touched bool    `json:"touched,omitempty"`
}

// Scroll is a window scroll position.
type Scroll struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event builds a fresh event from the record. Each call returns a new
// value, so the same record can be dispatched more than once.
func (r *Record) Event() dom.Event {
	base := dom.BaseEvent{
		Type:        r.Type,
		Bubbles:     r.Bubbles,
		Cancelable:  r.Cancelable,
		Composed:    r.Composed,
		IsComposing: r.IsComposing,
		IsTrusted:   true,
		TimeStamp:   r.TimeStamp,
	}

	switch r.Kind {
	case KindMouse:
		ev := mouseEvent(base, r.Mouse)
		return &ev
	case KindPointer:
		ev := &dom.PointerEvent{MouseEvent: mouseEvent(base, nil)}
		if p := r.Pointer; p != nil {
			ev.MouseEvent = mouseEvent(base, &p.Mouse)
			ev.AltitudeAngle = p.AltitudeAngle
			ev.AzimuthAngle = p.AzimuthAngle
			ev.PersistentDeviceID = p.PersistentDeviceID
			ev.PointerID = p.PointerID
			ev.Width, ev.Height = p.Width, p.Height
			ev.Pressure = p.Pressure
			ev.TangentialPressure = p.TangentialPressure
			ev.TiltX, ev.TiltY = p.TiltX, p.TiltY
			ev.Twist = p.Twist
			ev.PointerType = p.PointerType
			ev.IsPrimary = p.IsPrimary
		}
		return ev
	case KindWheel:
		ev := &dom.WheelEvent{MouseEvent: mouseEvent(base, nil)}
		if w := r.Wheel; w != nil {
			ev.MouseEvent = mouseEvent(base, &w.Mouse)
			ev.DeltaX, ev.DeltaY, ev.DeltaZ = w.DeltaX, w.DeltaY, w.DeltaZ
			ev.DeltaMode = w.DeltaMode
		}
		return ev
	case KindKeyboard:
		ev := &dom.KeyboardEvent{BaseEvent: base}
		if k := r.Keyboard; k != nil {
			ev.Key, ev.Code = k.Key, k.Code
			ev.Location = k.Location
			ev.CtrlKey, ev.ShiftKey, ev.AltKey, ev.MetaKey = k.Ctrl, k.Shift, k.Alt, k.Meta
			ev.Repeat = k.Repeat
			ev.CharCode = k.CharCode
		}
		return ev
	case KindGamepad:
		return &dom.GamepadEvent{BaseEvent: base, Gamepad: r.Gamepad.Pad()}
	}
	return &base
}

// Pad converts the payload to a navigator gamepad. It returns nil for a
// nil payload.
func (g *Gamepad) Pad() *dom.Gamepad {
	if g == nil {
		return nil
	}
	pad := &dom.Gamepad{
		ID:        g.ID,
		Mapping:   g.Mapping,
		Index:     g.Index,
		Connected: g.Connected,
		Timestamp: g.Timestamp,
		Axes:      append([]float64(nil), g.Axes...),
	}
	for _, b := range g.Buttons {
		pad.Buttons = append(pad.Buttons, dom.GamepadButton{Value: b.Value, Pressed: b.Pressed, Touched: b.Touched})
	}
	return pad
}

func mouseEvent(base dom.BaseEvent, m *Mouse) dom.MouseEvent {
	ev := dom.MouseEvent{BaseEvent: base}
	if m == nil {
		return ev
	}
	ev.ScreenX, ev.ScreenY = m.ScreenX, m.ScreenY
	ev.ClientX, ev.ClientY = m.ClientX, m.ClientY
	ev.OffsetX, ev.OffsetY = m.OffsetX, m.OffsetY
	ev.PageX, ev.PageY = m.PageX, m.PageY
	ev.MovementX, ev.MovementY = m.MovementX, m.MovementY
	ev.CtrlKey, ev.ShiftKey, ev.AltKey, ev.MetaKey = m.Ctrl, m.Shift, m.Alt, m.Meta
	ev.Button = m.Button
	ev.Buttons = m.Buttons
	return ev
}
