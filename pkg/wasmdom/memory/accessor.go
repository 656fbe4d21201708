// Package memory provides typed little-endian access to a guest's linear
// memory.
//
// An Accessor never caches a view of the buffer: every load and store asks
// the Buffer for its current bytes, so growth between calls is harmless.
// Slices returned by LoadBytes and the typed-array views alias guest memory
// and are only valid until the guest runs again.
package memory

import (
	"encoding/binary"
	"math"
	"strings"
)

// Accessor reads and writes typed values in a Buffer.
type Accessor struct {
	buf   Buffer
	width Width
}

// New returns an Accessor over buf for a guest with the given word width.
func New(buf Buffer, width Width) (*Accessor, error) {
	if err := width.Validate(); err != nil {
		return nil, err
	}
	return &Accessor{buf: buf, width: width}, nil
}

// Width returns the guest word width.
func (a *Accessor) Width() Width {
	return a.width
}

// Len returns the current buffer length.
func (a *Accessor) Len() int {
	return len(a.buf.Bytes())
}

// span returns b[addr:addr+n] of the live buffer or panics with a *FaultError.
func (a *Accessor) span(op string, addr uint32, n int) []byte {
	b := a.buf.Bytes()
	end := uint64(addr) + uint64(n)
	if n < 0 || end > uint64(len(b)) {
		panic(&FaultError{Op: op, Addr: addr, Size: n, Len: len(b)})
	}
	return b[addr:end:end]
}

// LoadU8 reads one byte.
func (a *Accessor) LoadU8(addr uint32) uint8 {
	return a.span("load u8", addr, 1)[0]
}

// LoadI8 reads one signed byte.
func (a *Accessor) LoadI8(addr uint32) int8 {
	return int8(a.LoadU8(addr))
}

// LoadU16 reads a little-endian u16.
func (a *Accessor) LoadU16(addr uint32) uint16 {
	return binary.LittleEndian.Uint16(a.span("load u16", addr, 2))
}

// LoadI16 reads a little-endian i16.
func (a *Accessor) LoadI16(addr uint32) int16 {
	return int16(a.LoadU16(addr))
}

// LoadU32 reads a little-endian u32.
func (a *Accessor) LoadU32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(a.span("load u32", addr, 4))
}

// LoadI32 reads a little-endian i32.
func (a *Accessor) LoadI32(addr uint32) int32 {
	return int32(a.LoadU32(addr))
}

// LoadU64 reads two consecutive 32-bit words, low word first.
func (a *Accessor) LoadU64(addr uint32) uint64 {
	b := a.span("load u64", addr, 8)
	lo := binary.LittleEndian.Uint32(b[0:4])
	hi := binary.LittleEndian.Uint32(b[4:8])
	return uint64(lo) | uint64(hi)<<32
}

// LoadI64 is LoadU64 with a signed high word, i.e. lo + hi*2^32.
func (a *Accessor) LoadI64(addr uint32) int64 {
	return int64(a.LoadU64(addr))
}

// LoadF32 reads a little-endian IEEE 754 single.
func (a *Accessor) LoadF32(addr uint32) float32 {
	return math.Float32frombits(a.LoadU32(addr))
}

// LoadF64 reads a little-endian IEEE 754 double.
func (a *Accessor) LoadF64(addr uint32) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(a.span("load f64", addr, 8)))
}

// LoadBool reads a one-byte boolean.
func (a *Accessor) LoadBool(addr uint32) bool {
	return a.LoadU8(addr) != 0
}

// LoadB32 reads a four-byte boolean.
func (a *Accessor) LoadB32(addr uint32) bool {
	return a.LoadU32(addr) != 0
}

// LoadPtr reads a guest pointer. Pointers are 32-bit for every word width.
func (a *Accessor) LoadPtr(addr uint32) uint32 {
	return a.LoadU32(addr)
}

// LoadInt reads a guest-width signed int.
func (a *Accessor) LoadInt(addr uint32) int64 {
	switch a.width {
	case Width32:
		return int64(a.LoadI32(addr))
	case Width64:
		return a.LoadI64(addr)
	}
	panic(&ConfigError{Width: int(a.width)})
}

// LoadUint reads a guest-width unsigned int.
func (a *Accessor) LoadUint(addr uint32) uint64 {
	switch a.width {
	case Width32:
		return uint64(a.LoadU32(addr))
	case Width64:
		return a.LoadU64(addr)
	}
	panic(&ConfigError{Width: int(a.width)})
}

// LoadBytes returns a view of n bytes at addr. The view aliases guest memory.
func (a *Accessor) LoadBytes(addr uint32, n int) []byte {
	return a.span("load bytes", addr, n)
}

// LoadString decodes n bytes at addr as UTF-8. Invalid sequences are
// replaced with U+FFFD.
func (a *Accessor) LoadString(addr uint32, n int) string {
	return strings.ToValidUTF8(string(a.span("load string", addr, n)), "�")
}

// LoadCString reads a zero-terminated string starting at addr. A zero
// pointer yields ok == false.
func (a *Accessor) LoadCString(addr uint32) (s string, ok bool) {
	if addr == 0 {
		return "", false
	}
	b := a.buf.Bytes()
	if uint64(addr) >= uint64(len(b)) {
		panic(&FaultError{Op: "load cstring", Addr: addr, Size: 1, Len: len(b)})
	}
	end := addr
	for int(end) < len(b) && b[end] != 0 {
		end++
	}
	if int(end) == len(b) {
		panic(&FaultError{Op: "load cstring", Addr: addr, Size: int(end-addr) + 1, Len: len(b)})
	}
	return strings.ToValidUTF8(string(b[addr:end]), "�"), true
}
