package event

import (
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/layout"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// Field describes one field of an encoded record.
type Field struct {
	Name   string `json:"name"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
	Type   string `json:"type"`
}

// writer stores fields through a cursor. With a nil accessor it only lays
// fields out, which is how Describe shares the encoders.
type writer struct {
	mem    *memory.Accessor
	cur    *layout.Cursor
	base   uint32
	fields []Field
	record bool
	muted  bool
}

func newWriter(mem *memory.Accessor, base uint32, width memory.Width) *writer {
	return &writer{mem: mem, cur: layout.New(base, width), base: base}
}

func (w *writer) width() uint32 { return uint32(w.cur.Width()) }

func (w *writer) note(name, typ string, addr, size uint32) {
	if w.record && !w.muted {
		w.fields = append(w.fields, Field{Name: name, Offset: addr - w.base, Size: size, Type: typ})
	}
}

func (w *writer) at(name, typ string, size, align uint32) uint32 {
	addr := w.cur.ReserveAligned(size, align)
	w.note(name, typ, addr, size)
	return addr
}

func (w *writer) natural(name, typ string, size uint32) uint32 {
	return w.at(name, typ, size, min(size, w.width()))
}

func (w *writer) alignTo(n uint32) { w.cur.AlignTo(n) }

func (w *writer) u8(name string, v uint8) {
	if a := w.natural(name, "u8", 1); w.mem != nil {
		w.mem.StoreU8(a, v)
	}
}

func (w *writer) flag(name string, v bool) {
	if a := w.natural(name, "bool", 1); w.mem != nil {
		w.mem.StoreBool(a, v)
	}
}

func (w *writer) i16(name string, v int16) {
	if a := w.natural(name, "i16", 2); w.mem != nil {
		w.mem.StoreI16(a, v)
	}
}

func (w *writer) u16(name string, v uint16) {
	if a := w.natural(name, "u16", 2); w.mem != nil {
		w.mem.StoreU16(a, v)
	}
}

func (w *writer) u32(name string, v uint32) {
	if a := w.natural(name, "u32", 4); w.mem != nil {
		w.mem.StoreU32(a, v)
	}
}

func (w *writer) i32(name string, v int32) {
	if a := w.natural(name, "i32", 4); w.mem != nil {
		w.mem.StoreI32(a, v)
	}
}

func (w *writer) i64(name string, v int64) {
	if a := w.natural(name, "i64", 8); w.mem != nil {
		w.mem.StoreI64(a, v)
	}
}

// f64 uses natural alignment, which is 4 on a 4-byte guest.
func (w *writer) f64(name string, v float64) {
	if a := w.natural(name, "f64", 8); w.mem != nil {
		w.mem.StoreF64(a, v)
	}
}

// f64a always aligns to 8.
func (w *writer) f64a(name string, v float64) {
	if a := w.at(name, "f64", 8, 8); w.mem != nil {
		w.mem.StoreF64(a, v)
	}
}

func (w *writer) word(name string, v int64) {
	if a := w.at(name, "int", w.width(), w.width()); w.mem != nil {
		w.mem.StoreInt(a, v)
	}
}

func (w *writer) uword(name string, v uint64) {
	if a := w.at(name, "uint", w.width(), w.width()); w.mem != nil {
		w.mem.StoreUint(a, v)
	}
}

// slot reserves space the guest fills in itself.
func (w *writer) slot(name, typ string, size, align uint32) {
	w.at(name, typ, size, align)
}

// text writes s into a zero-filled fixed field. s must already fit.
func (w *writer) text(name string, s string, size uint32) {
	a := w.at(name, "[]u8", size, 1)
	if w.mem != nil {
		w.mem.Zero(a, int(size))
		w.mem.StoreString(a, s)
	}
}

// array lays out n elements with fn, recording them as a single field.
func (w *writer) array(name, typ string, align uint32, n int, fn func(i int)) {
	w.alignTo(align)
	start := w.cur.Offset()
	muted := w.muted
	w.muted = true
	for i := range n {
		fn(i)
	}
	w.muted = muted
	w.note(name, typ, start, w.cur.Offset()-start)
}

func (w *writer) size() uint32 { return w.cur.Offset() - w.base }
