package memory

import (
	"encoding/binary"
	"math"
)

// Float64s is a zero-copy view of consecutive f64 values.
type Float64s struct {
	b []byte
}

// LoadF64s returns a view of n f64 values at addr.
func (a *Accessor) LoadF64s(addr uint32, n int) Float64s {
	return Float64s{b: a.span("load f64 array", addr, n*8)}
}

// Len returns the number of values in the view.
func (v Float64s) Len() int { return len(v.b) / 8 }

// At returns value i.
func (v Float64s) At(i int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(v.b[i*8:]))
}

// Set stores f as value i.
func (v Float64s) Set(i int, f float64) {
	binary.LittleEndian.PutUint64(v.b[i*8:], math.Float64bits(f))
}

// Uint32s is a zero-copy view of consecutive u32 values.
type Uint32s struct {
	b []byte
}

// LoadU32s returns a view of n u32 values at addr.
func (a *Accessor) LoadU32s(addr uint32, n int) Uint32s {
	return Uint32s{b: a.span("load u32 array", addr, n*4)}
}

// Len returns the number of values in the view.
func (v Uint32s) Len() int { return len(v.b) / 4 }

// At returns value i.
func (v Uint32s) At(i int) uint32 {
	return binary.LittleEndian.Uint32(v.b[i*4:])
}

// Set stores x as value i.
func (v Uint32s) Set(i int, x uint32) {
	binary.LittleEndian.PutUint32(v.b[i*4:], x)
}

// Float32s is a zero-copy view of consecutive f32 values.
type Float32s struct {
	b []byte
}

// LoadF32s returns a view of n f32 values at addr.
func (a *Accessor) LoadF32s(addr uint32, n int) Float32s {
	return Float32s{b: a.span("load f32 array", addr, n*4)}
}

// Len returns the number of values in the view.
func (v Float32s) Len() int { return len(v.b) / 4 }

// At returns value i.
func (v Float32s) At(i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(v.b[i*4:]))
}

// Set stores f as value i.
func (v Float32s) Set(i int, f float32) {
	binary.LittleEndian.PutUint32(v.b[i*4:], math.Float32bits(f))
}

// Int32s is a zero-copy view of consecutive i32 values.
type Int32s struct {
	b []byte
}

// LoadI32s returns a view of n i32 values at addr.
func (a *Accessor) LoadI32s(addr uint32, n int) Int32s {
	return Int32s{b: a.span("load i32 array", addr, n*4)}
}

// Len returns the number of values in the view.
func (v Int32s) Len() int { return len(v.b) / 4 }

// At returns value i.
func (v Int32s) At(i int) int32 {
	return int32(binary.LittleEndian.Uint32(v.b[i*4:]))
}

// Set stores x as value i.
func (v Int32s) Set(i int, x int32) {
	binary.LittleEndian.PutUint32(v.b[i*4:], uint32(x))
}
