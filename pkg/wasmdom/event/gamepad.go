package event

import (
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// EncodeGamepadState writes the standalone gamepad state record at addr.
func EncodeGamepadState(mem *memory.Accessor, addr uint32, g *dom.Gamepad) {
	w := newWriter(mem, addr, mem.Width())
	encodeGamepad(w, "", g)
}

func encodeGamepad(w *writer, prefix string, g *dom.Gamepad) {
	if g == nil {
		g = &dom.Gamepad{}
	}
	ww := w.width()
	w.slot(prefix+"id", "string", 2*ww, ww)
	w.slot(prefix+"mapping", "string", 2*ww, ww)

	w.word(prefix+"index", int64(g.Index))
	w.flag(prefix+"connected", g.Connected)
	w.f64a(prefix+"timestamp", g.Timestamp)

	buttons := min(len(g.Buttons), GamepadButtons)
	axes := min(len(g.Axes), GamepadAxes)
	w.word(prefix+"button_count", int64(buttons))
	w.word(prefix+"axis_count", int64(axes))

	w.array(prefix+"buttons", "[64]{f64,bool,bool}", 8, GamepadButtons, func(i int) {
		if i >= buttons {
			w.slot("", "", 16, 8)
			return
		}
		btn := g.Buttons[i]
		w.f64a("", btn.Value)
		w.flag("", btn.Pressed)
		w.flag("", btn.Touched)
	})
	w.array(prefix+"axes", "[16]f64", 8, GamepadAxes, func(i int) {
		if i >= axes {
			w.slot("", "", 8, 8)
			return
		}
		w.f64a("", g.Axes[i])
	})

	id := clip(g.ID, GamepadIDSize)
	mapping := clip(g.Mapping, GamepadMapSize)
	w.word(prefix+"id_len", int64(len(id)))
	w.word(prefix+"mapping_len", int64(len(mapping)))
	w.text(prefix+"id_buf", id, GamepadIDSize)
	w.text(prefix+"mapping_buf", mapping, GamepadMapSize)
}

// clip shortens s to at most size bytes, replacing the tail with "...".
func clip(s string, size int) string {
	if len(s) <= size {
		return s
	}
	return memory.TruncateUTF8(s, size-len(ellipsis)) + ellipsis
}
