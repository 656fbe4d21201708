package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/memory"
)

// valueKind is a host parameter or result type before the word width is
// known. Guest ints are i32 or i64 depending on the width; pointers, bools
// and enums are always i32.
type valueKind uint8

const (
	kI32 valueKind = iota
	kInt
	kI64
	kF64
)

func (k valueKind) valueType(w memory.Width) api.ValueType {
	switch k {
	case kInt:
		if w == memory.Width64 {
			return api.ValueTypeI64
		}
		return api.ValueTypeI32
	case kI64:
		return api.ValueTypeI64
	case kF64:
		return api.ValueTypeF64
	}
	return api.ValueTypeI32
}

type hostFunc struct {
	name    string
	params  []valueKind
	results []valueKind
	fn      func(ctx context.Context, c *call)
}

func params(kinds ...valueKind) []valueKind { return kinds }

// instantiateHost exports fns as a host module. Each call is routed to the
// Instance that owns the calling guest.
func (e *Engine) instantiateHost(ctx context.Context, module string, fns []hostFunc) error {
	builder := e.runtime.NewHostModuleBuilder(module)
	for _, f := range fns {
		fn := f.fn
		goFunc := api.GoModuleFunc(func(ctx context.Context, m api.Module, stack []uint64) {
			inst := e.lookup(m)
			if inst == nil {
				panic(ErrUnknownInstance)
			}
			fn(ctx, &call{inst: inst, stack: stack})
		})
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(goFunc, e.valueTypes(f.params), e.valueTypes(f.results)).
			WithName(f.name).
			Export(f.name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return &RuntimeError{Operation: module + " registration", Err: err}
	}
	return nil
}

func (e *Engine) valueTypes(kinds []valueKind) []api.ValueType {
	types := make([]api.ValueType, len(kinds))
	for i, k := range kinds {
		types[i] = k.valueType(e.cfg.Width)
	}
	return types
}

// call decodes parameters in order and encodes the result into the stack.
// All parameters must be read before a result is set.
type call struct {
	inst  *Instance
	stack []uint64
	next  int
}

func (c *call) raw() uint64 {
	v := c.stack[c.next]
	c.next++
	return v
}

func (c *call) mem() *memory.Accessor { return c.inst.mem }

func (c *call) u32() uint32 { return api.DecodeU32(c.raw()) }

func (c *call) i32() int32 { return api.DecodeI32(c.raw()) }

func (c *call) flag() bool { return c.u32() != 0 }

func (c *call) f64() float64 { return api.DecodeF64(c.raw()) }

// word reads a guest-width int.
func (c *call) word() int64 {
	v := c.raw()
	if c.inst.width == memory.Width32 {
		return int64(api.DecodeI32(v))
	}
	return int64(v)
}

// str reads a (pointer, guest-width length) pair and loads the string.
func (c *call) str() string {
	ptr := c.u32()
	n := c.word()
	if n <= 0 {
		return ""
	}
	return c.mem().LoadString(ptr, int(n))
}

func (c *call) setBool(v bool) {
	if v {
		c.stack[0] = 1
	} else {
		c.stack[0] = 0
	}
}

func (c *call) setInt(v int64) {
	if c.inst.width == memory.Width32 {
		c.stack[0] = api.EncodeI32(int32(v))
		return
	}
	c.stack[0] = api.EncodeI64(v)
}

func (c *call) setI64(v int64) { c.stack[0] = api.EncodeI64(v) }

func (c *call) setF64(v float64) { c.stack[0] = api.EncodeF64(v) }
