package wasm

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
)

func envFunctions() []hostFunc {
	return []hostFunc{
		{name: "write", params: params(kI32, kI32, kInt), fn: envWrite},
		{name: "trap", fn: func(context.Context, *call) {
			panic(&TrapError{Func: "trap", Message: "guest trap"})
		}},
		{name: "abort", fn: func(context.Context, *call) {
			panic(&TrapError{Func: "abort", Message: "guest abort"})
		}},
		{name: "alert", params: params(kI32, kInt), fn: func(_ context.Context, c *call) {
			c.inst.logger.Warn("guest alert", "message", c.str())
		}},
		{name: "evaluate", params: params(kI32, kInt), fn: func(_ context.Context, c *call) {
			c.inst.logger.Warn("guest evaluate is not supported, ignoring", "source", c.str())
		}},
		{name: "open", params: params(kI32, kInt, kI32, kInt, kI32, kInt), fn: func(_ context.Context, c *call) {
			url, name, specs := c.str(), c.str(), c.str()
			c.inst.opener(url, name, specs)
		}},
		{name: "time_now", results: params(kI64), fn: func(_ context.Context, c *call) {
			c.setI64(c.inst.realm.Clock().UnixMilli())
		}},
		{name: "tick_now", results: params(kF64), fn: func(_ context.Context, c *call) {
			c.setF64(c.inst.realm.Now())
		}},
		{name: "time_sleep", params: params(kI32), fn: func(context.Context, *call) {}},

		unaryMath("sqrt", math.Sqrt),
		unaryMath("sin", math.Sin),
		unaryMath("cos", math.Cos),
		unaryMath("ln", math.Log),
		unaryMath("exp", math.Exp),
		{name: "pow", params: params(kF64, kF64), results: params(kF64), fn: func(_ context.Context, c *call) {
			x, y := c.f64(), c.f64()
			c.setF64(math.Pow(x, y))
		}},
		{name: "fmuladd", params: params(kF64, kF64, kF64), results: params(kF64), fn: func(_ context.Context, c *call) {
			x, y, z := c.f64(), c.f64(), c.f64()
			// The conversion forces rounding of the product (no FMA).
			c.setF64(float64(x*y) + z)
		}},
		{name: "ldexp", params: params(kF64, kI32), results: params(kF64), fn: func(_ context.Context, c *call) {
			x, exp := c.f64(), c.i32()
			c.setF64(math.Ldexp(x, int(exp)))
		}},

		{name: "rand_bytes", params: params(kI32, kInt), fn: envRandBytes},
	}
}

func unaryMath(name string, f func(float64) float64) hostFunc {
	return hostFunc{
		name:    name,
		params:  params(kF64),
		results: params(kF64),
		fn: func(_ context.Context, c *call) {
			c.setF64(f(c.f64()))
		},
	}
}

func envWrite(_ context.Context, c *call) {
	fd := c.u32()
	s := c.str()
	switch Stream(fd) {
	case Stdout, Stderr:
		c.inst.console.Write(Stream(fd), s)
	default:
		panic(&TrapError{Func: "write", Message: fmt.Sprintf("invalid fd %d: %s", fd, strings.TrimRight(s, "\n"))})
	}
}

func envRandBytes(_ context.Context, c *call) {
	ptr := c.u32()
	n := c.word()
	if n <= 0 {
		return
	}
	buf := c.mem().LoadBytes(ptr, int(n))
	if _, err := io.ReadFull(c.inst.rand, buf); err != nil {
		panic(&TrapError{Func: "rand_bytes", Message: err.Error()})
	}
}
