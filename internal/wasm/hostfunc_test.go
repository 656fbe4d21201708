package wasm

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/tetratelabs/wazero/api"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/event"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/listener"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// fakeGuest stands in for the guest's callback trampoline.
type fakeGuest struct {
	inst       *Instance
	calls      [][3]uint32
	onCallback func(inst *Instance)
}

func (g *fakeGuest) ContextPointer(context.Context) (uint32, error) { return 0xC0, nil }

func (g *fakeGuest) Callback(_ context.Context, data, callback, execCtx uint32) error {
	g.calls = append(g.calls, [3]uint32{data, callback, execCtx})
	if g.onCallback != nil {
		g.onCallback(g.inst)
	}
	return nil
}

type testHost struct {
	inst   *Instance
	buf    *memory.SliceBuffer
	guest  *fakeGuest
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	next   uint32 // scratch allocator
}

var testEpoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// newTestHost builds an Instance over a plain slice so host functions can
// be called without compiling a guest.
func newTestHost(t *testing.T, width memory.Width) *testHost {
	t.Helper()
	buf := memory.NewSliceBuffer(1 << 16)
	mem, err := memory.New(buf, width)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	now := testEpoch
	realm := dom.NewRealm(dom.WithClock(func() time.Time { return now }))
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	guest := &fakeGuest{}
	inst := &Instance{
		name:    "test",
		width:   width,
		mem:     mem,
		realm:   realm,
		env:     event.RealmEnv(realm),
		console: NewConsole(ConsoleConfig{Stdout: stdout, Stderr: stderr}),
		rand:    bytes.NewReader(bytes.Repeat([]byte{0xAB}, 64)),
		opener:  func(string, string, string) {},
		logger:  logger,
	}
	inst.bridge = listener.NewBridge(guest, logger)
	inst.registry = listener.NewRegistry(inst.bridge)
	guest.inst = inst
	return &testHost{inst: inst, buf: buf, guest: guest, stdout: stdout, stderr: stderr, next: 1024}
}

func (h *testHost) mem() *memory.Accessor { return h.inst.mem }

// str places s in scratch memory and returns its (ptr, len) parameters.
func (h *testHost) str(s string) []uint64 {
	ptr := h.next
	h.mem().StoreString(ptr, s)
	h.next += uint32(len(s)) + 8
	return []uint64{api.EncodeU32(ptr), h.word(int64(len(s)))}
}

// word encodes a guest int parameter.
func (h *testHost) word(v int64) uint64 {
	if h.inst.width == memory.Width32 {
		return api.EncodeI32(int32(v))
	}
	return api.EncodeI64(v)
}

func u32(v uint32) uint64 { return api.EncodeU32(v) }

func f64(v float64) uint64 { return api.EncodeF64(v) }

func args(groups ...[]uint64) []uint64 {
	var out []uint64
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// call runs the named host function and returns the first stack slot.
func (h *testHost) call(t *testing.T, name string, params ...uint64) uint64 {
	t.Helper()
	fn, ok := lookupHostFunc(name)
	if !ok {
		t.Fatalf("no host function %q", name)
	}
	if len(params) != len(fn.params) {
		t.Fatalf("%s: got %d params, want %d", name, len(params), len(fn.params))
	}
	stack := make([]uint64, max(len(params), len(fn.results), 1))
	copy(stack, params)
	fn.fn(context.Background(), &call{inst: h.inst, stack: stack})
	return stack[0]
}

func lookupHostFunc(name string) (hostFunc, bool) {
	for _, fns := range [][]hostFunc{envFunctions(), domFunctions()} {
		for _, f := range fns {
			if f.name == name {
				return f, true
			}
		}
	}
	return hostFunc{}, false
}

func TestHostFunctions_UniqueNames(t *testing.T) {
	for _, fns := range [][]hostFunc{envFunctions(), domFunctions()} {
		seen := make(map[string]bool)
		for _, f := range fns {
			if seen[f.name] {
				t.Errorf("duplicate host function %q", f.name)
			}
			seen[f.name] = true
			if f.fn == nil {
				t.Errorf("host function %q has no body", f.name)
			}
		}
	}
}

func TestValueKind_Width(t *testing.T) {
	tests := []struct {
		kind  valueKind
		width memory.Width
		want  api.ValueType
	}{
		{kI32, memory.Width64, api.ValueTypeI32},
		{kInt, memory.Width32, api.ValueTypeI32},
		{kInt, memory.Width64, api.ValueTypeI64},
		{kI64, memory.Width32, api.ValueTypeI64},
		{kF64, memory.Width32, api.ValueTypeF64},
	}
	for _, tt := range tests {
		if got := tt.kind.valueType(tt.width); got != tt.want {
			t.Errorf("valueType(%d, %v) = %v, want %v", tt.kind, tt.width, got, tt.want)
		}
	}
}

func TestCall_WordSignExtends(t *testing.T) {
	h := newTestHost(t, memory.Width32)
	c := &call{inst: h.inst, stack: []uint64{api.EncodeI32(-5)}}
	if got := c.word(); got != -5 {
		t.Errorf("word() = %d, want -5", got)
	}

	h = newTestHost(t, memory.Width64)
	c = &call{inst: h.inst, stack: []uint64{api.EncodeI64(-1 << 40)}}
	if got := c.word(); got != -1<<40 {
		t.Errorf("word() = %d, want %d", got, int64(-1<<40))
	}
	c.setInt(7)
	if c.stack[0] != 7 {
		t.Errorf("setInt stored %d", c.stack[0])
	}
}
