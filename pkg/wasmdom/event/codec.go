// Package event encodes staged DOM events into the fixed binary records a
// guest decodes.
//
// Every record starts with a common prefix. The body that follows depends on
// the event's Kind; the guest knows which body to read from the event name
// it subscribed to, so no tag is stored. Events of KindUnknown get the
// prefix only.
//
// Multi-byte fields use C struct layout with natural alignment capped at the
// guest word width. The prefix and body are each aligned to 8.
package event

import (
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// Fixed string and slot capacities shared with the guest.
const (
	KeyFieldSize   = 32
	CodeFieldSize  = 32
	GamepadIDSize  = 96
	GamepadMapSize = 64
	GamepadButtons = 64
	GamepadAxes    = 16
	ellipsis       = "..."
)

// Option bits of the prefix options byte and of dispatch_custom_event.
const (
	OptionBubbles    = 1 << 0
	OptionCancelable = 1 << 1
	OptionComposed   = 1 << 2
)

// Pointer type codes.
const (
	PointerOther uint8 = iota
	PointerPen
	PointerTouch
)

// Staged is an event waiting for the guest to decode it, together with the
// tokens captured when its listener was registered.
type Staged struct {
	Event    dom.Event
	NameCode uint32
	IDPtr    uint32
	IDLen    uint64
}

// Encode writes the record for s at addr and reports whether anything was
// written. A nil s, or one without an event, is a no-op.
func Encode(mem *memory.Accessor, addr uint32, s *Staged, env Env) bool {
	if s == nil || s.Event == nil {
		return false
	}
	w := newWriter(mem, addr, mem.Width())
	encode(w, s, env)
	return true
}

func encode(w *writer, s *Staged, env Env) {
	e := s.Event
	b := e.Base()

	w.u32("kind", s.NameCode)
	w.u32("target_kind", uint32(classify(env, b.Target())))
	w.u32("current_target_kind", uint32(classify(env, b.CurrentTarget())))

	w.alignTo(w.width())
	w.uword("id.ptr", uint64(s.IDPtr))
	w.uword("id.len", s.IDLen)

	w.alignTo(8)
	w.f64("timestamp", b.TimeStamp*1e-3)
	w.u8("phase", uint8(b.Phase()))
	w.u8("options", options(b))
	w.flag("is_composing", b.IsComposing)
	w.flag("is_trusted", b.IsTrusted)

	w.alignTo(8)
	switch Classify(e) {
	case KindWheel:
		encodeWheel(w, e.(*dom.WheelEvent))
	case KindPointerLike:
		encodeMouse(w, e.(mouseLike).Mouse())
		if p, ok := e.(*dom.PointerEvent); ok {
			encodePointer(w, p)
		}
	case KindKeyboard:
		encodeKeyboard(w, e.(*dom.KeyboardEvent))
	case KindScroll:
		var x, y float64
		if env != nil {
			x, y = env.Scroll()
		}
		w.f64("scroll.x", x)
		w.f64("scroll.y", y)
	case KindVisibility:
		visible := true
		if env != nil {
			visible = env.Visible()
		}
		w.flag("visibility.is_visible", visible)
	case KindGamepad:
		encodeGamepad(w, "gamepad.", e.(*dom.GamepadEvent).Gamepad)
	}
}

func classify(env Env, t dom.Target) dom.Scope {
	if env == nil {
		return dom.ScopeNone
	}
	return env.Classify(t)
}

func options(b *dom.BaseEvent) uint8 {
	var o uint8
	if b.Bubbles {
		o |= OptionBubbles
	}
	if b.Cancelable {
		o |= OptionCancelable
	}
	if b.Composed {
		o |= OptionComposed
	}
	return o
}

func encodeWheel(w *writer, e *dom.WheelEvent) {
	w.f64("wheel.delta_x", e.DeltaX)
	w.f64("wheel.delta_y", e.DeltaY)
	w.f64("wheel.delta_z", e.DeltaZ)
	w.u32("wheel.delta_mode", e.DeltaMode)
}

func encodeMouse(w *writer, m *dom.MouseEvent) {
	w.i64("mouse.screen_x", memory.TruncInt64(m.ScreenX))
	w.i64("mouse.screen_y", memory.TruncInt64(m.ScreenY))
	w.i64("mouse.client_x", memory.TruncInt64(m.ClientX))
	w.i64("mouse.client_y", memory.TruncInt64(m.ClientY))
	w.i64("mouse.offset_x", memory.TruncInt64(m.OffsetX))
	w.i64("mouse.offset_y", memory.TruncInt64(m.OffsetY))
	w.i64("mouse.page_x", memory.TruncInt64(m.PageX))
	w.i64("mouse.page_y", memory.TruncInt64(m.PageY))
	w.i64("mouse.movement_x", memory.TruncInt64(m.MovementX))
	w.i64("mouse.movement_y", memory.TruncInt64(m.MovementY))

	w.flag("mouse.ctrl", m.CtrlKey)
	w.flag("mouse.shift", m.ShiftKey)
	w.flag("mouse.alt", m.AltKey)
	w.flag("mouse.meta", m.MetaKey)

	w.i16("mouse.button", m.Button)
	w.u16("mouse.buttons", m.Buttons)
}

func encodePointer(w *writer, p *dom.PointerEvent) {
	w.f64("pointer.altitude_angle", p.AltitudeAngle)
	w.f64("pointer.azimuth_angle", p.AzimuthAngle)
	w.word("pointer.persistent_device_id", p.PersistentDeviceID)
	w.word("pointer.pointer_id", p.PointerID)
	w.word("pointer.width", memory.TruncInt64(p.Width))
	w.word("pointer.height", memory.TruncInt64(p.Height))
	w.f64("pointer.pressure", p.Pressure)
	w.f64("pointer.tangential_pressure", p.TangentialPressure)
	w.f64("pointer.tilt_x", p.TiltX)
	w.f64("pointer.tilt_y", p.TiltY)
	w.f64("pointer.twist", p.Twist)
	w.u8("pointer.pointer_type", pointerType(p.PointerType))
	w.flag("pointer.is_primary", p.IsPrimary)
}

func pointerType(s string) uint8 {
	switch s {
	case "pen":
		return PointerPen
	case "touch":
		return PointerTouch
	}
	return PointerOther
}

// encodeKeyboard leaves the key and code string headers to the guest, which
// points them at the byte fields using the lengths written here.
func encodeKeyboard(w *writer, k *dom.KeyboardEvent) {
	ww := w.width()
	w.slot("key.key", "string", 2*ww, ww)
	w.slot("key.code", "string", 2*ww, ww)

	w.u8("key.location", k.Location)
	w.flag("key.ctrl", k.CtrlKey)
	w.flag("key.shift", k.ShiftKey)
	w.flag("key.alt", k.AltKey)
	w.flag("key.meta", k.MetaKey)
	w.flag("key.repeat", k.Repeat)
	w.i32("key.char", k.CharCode)

	key := memory.TruncateUTF8(k.Key, KeyFieldSize)
	code := memory.TruncateUTF8(k.Code, CodeFieldSize)
	w.word("key.key_len", int64(len(key)))
	w.word("key.code_len", int64(len(code)))
	w.text("key.key_buf", key, KeyFieldSize)
	w.text("key.code_buf", code, CodeFieldSize)
}
