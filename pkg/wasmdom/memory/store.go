package memory

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// StoreU8 writes one byte.
func (a *Accessor) StoreU8(addr uint32, v uint8) {
	a.span("store u8", addr, 1)[0] = v
}

// StoreI8 writes one signed byte.
func (a *Accessor) StoreI8(addr uint32, v int8) {
	a.StoreU8(addr, uint8(v))
}

// StoreU16 writes a little-endian u16.
func (a *Accessor) StoreU16(addr uint32, v uint16) {
	binary.LittleEndian.PutUint16(a.span("store u16", addr, 2), v)
}

// StoreI16 writes a little-endian i16.
func (a *Accessor) StoreI16(addr uint32, v int16) {
	a.StoreU16(addr, uint16(v))
}

// StoreU32 writes a little-endian u32.
func (a *Accessor) StoreU32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(a.span("store u32", addr, 4), v)
}

// StoreI32 writes a little-endian i32.
func (a *Accessor) StoreI32(addr uint32, v int32) {
	a.StoreU32(addr, uint32(v))
}

// StoreU64 writes v as a low and a high 32-bit word.
func (a *Accessor) StoreU64(addr uint32, v uint64) {
	b := a.span("store u64", addr, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(v))
	binary.LittleEndian.PutUint32(b[4:8], uint32(v>>32))
}

// StoreI64 writes the low word (v mod 2^32) and the high word
// (floor(v / 2^32)).
func (a *Accessor) StoreI64(addr uint32, v int64) {
	b := a.span("store i64", addr, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(v))
	binary.LittleEndian.PutUint32(b[4:8], uint32(v>>32))
}

// StoreF32 writes a little-endian IEEE 754 single.
func (a *Accessor) StoreF32(addr uint32, v float32) {
	a.StoreU32(addr, math.Float32bits(v))
}

// StoreF64 writes a little-endian IEEE 754 double.
func (a *Accessor) StoreF64(addr uint32, v float64) {
	binary.LittleEndian.PutUint64(a.span("store f64", addr, 8), math.Float64bits(v))
}

// StoreBool writes a one-byte boolean.
func (a *Accessor) StoreBool(addr uint32, v bool) {
	var b uint8
	if v {
		b = 1
	}
	a.StoreU8(addr, b)
}

// StoreB32 writes a four-byte boolean.
func (a *Accessor) StoreB32(addr uint32, v bool) {
	var b uint32
	if v {
		b = 1
	}
	a.StoreU32(addr, b)
}

// StorePtr writes a 32-bit guest pointer.
func (a *Accessor) StorePtr(addr uint32, v uint32) {
	a.StoreU32(addr, v)
}

// StoreInt writes a guest-width signed int. On a 4-byte guest v wraps to 32 bits.
func (a *Accessor) StoreInt(addr uint32, v int64) {
	switch a.width {
	case Width32:
		a.StoreI32(addr, int32(v))
	case Width64:
		a.StoreI64(addr, v)
	default:
		panic(&ConfigError{Width: int(a.width)})
	}
}

// StoreUint writes a guest-width unsigned int.
func (a *Accessor) StoreUint(addr uint32, v uint64) {
	switch a.width {
	case Width32:
		a.StoreU32(addr, uint32(v))
	case Width64:
		a.StoreU64(addr, v)
	default:
		panic(&ConfigError{Width: int(a.width)})
	}
}

// StoreBytes copies p to addr and returns len(p).
func (a *Accessor) StoreBytes(addr uint32, p []byte) int {
	return copy(a.span("store bytes", addr, len(p)), p)
}

// Zero clears n bytes at addr.
func (a *Accessor) Zero(addr uint32, n int) {
	clear(a.span("zero", addr, n))
}

// StoreString writes s as UTF-8 and returns the number of bytes written,
// which is the byte length of s rather than its rune count.
func (a *Accessor) StoreString(addr uint32, s string) int {
	return copy(a.span("store string", addr, len(s)), s)
}

// StoreStringN writes at most max bytes of s. When s does not fit it is cut
// at the last rune boundary at or before max, so valid UTF-8 input stays
// valid. It returns the number of bytes written.
func (a *Accessor) StoreStringN(addr uint32, s string, max int) int {
	return a.StoreString(addr, TruncateUTF8(s, max))
}

// TruncateUTF8 returns the longest prefix of s that is at most max bytes
// long and does not end inside a multi-byte sequence.
func TruncateUTF8(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// TruncInt64 converts a float to an int64 by truncating toward zero.
// NaN maps to 0 and out-of-range values saturate.
func TruncInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}
