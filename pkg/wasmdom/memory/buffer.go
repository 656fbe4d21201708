package memory

import "github.com/tetratelabs/wazero/api"

// Buffer is a guest's linear memory.
//
// Bytes returns the live backing slice. Growth may replace it, so callers
// must fetch it again for every access and never keep the result across a
// call into the guest.
type Buffer interface {
	Bytes() []byte
}

// Wazero adapts a wazero memory to Buffer.
func Wazero(mem api.Memory) Buffer {
	return wazeroBuffer{mem: mem}
}

type wazeroBuffer struct {
	mem api.Memory
}

func (w wazeroBuffer) Bytes() []byte {
	if w.mem == nil {
		return nil
	}
	b, ok := w.mem.Read(0, w.mem.Size())
	if !ok {
		return nil
	}
	return b
}

// SliceBuffer is a heap-backed Buffer. Grow reallocates the backing array,
// which matches how guest memory growth invalidates earlier views.
type SliceBuffer struct {
	b []byte
}

// NewSliceBuffer returns a zeroed buffer of size bytes.
func NewSliceBuffer(size int) *SliceBuffer {
	return &SliceBuffer{b: make([]byte, size)}
}

// Bytes implements Buffer.
func (s *SliceBuffer) Bytes() []byte {
	return s.b
}

// Grow extends the buffer by n bytes into a new backing array.
func (s *SliceBuffer) Grow(n int) {
	nb := make([]byte, len(s.b)+n)
	copy(nb, s.b)
	s.b = nb
}
