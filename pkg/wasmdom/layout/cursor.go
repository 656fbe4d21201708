// Package layout packs C-style structs into guest memory one field at a time.
package layout

import "github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"

// Cursor is a sequential field allocator. Natural alignment is capped at the
// guest word width, so a fixed guest struct declaration lines up byte for
// byte with the addresses a Cursor hands out.
type Cursor struct {
	offset uint32
	width  memory.Width
}

// New returns a cursor starting at base.
func New(base uint32, width memory.Width) *Cursor {
	return &Cursor{offset: base, width: width}
}

// Offset returns the next unreserved address.
func (c *Cursor) Offset() uint32 {
	return c.offset
}

// Width returns the word width the cursor aligns for.
func (c *Cursor) Width() memory.Width {
	return c.width
}

// Reserve reserves size bytes aligned to min(size, width) and returns the
// field address.
func (c *Cursor) Reserve(size uint32) uint32 {
	return c.ReserveAligned(size, min(size, uint32(c.width)))
}

// ReserveAligned reserves size bytes at the next multiple of align.
func (c *Cursor) ReserveAligned(size, align uint32) uint32 {
	c.AlignTo(align)
	addr := c.offset
	c.offset += size
	return addr
}

// AlignTo rounds the offset up to a multiple of align without reserving.
func (c *Cursor) AlignTo(align uint32) {
	if align <= 1 {
		return
	}
	if rem := c.offset % align; rem != 0 {
		c.offset += align - rem
	}
}

// Word reserves one guest-width slot.
func (c *Cursor) Word() uint32 {
	w := uint32(c.width)
	return c.ReserveAligned(w, w)
}
