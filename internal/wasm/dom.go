package wasm

import (
	"context"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/event"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/listener"
)

// Guest strings are (ptr, int) pairs.
var (
	strParam = []valueKind{kI32, kInt}
	boolRes  = params(kI32)
	intRes   = params(kInt)
	floatRes = params(kF64)
)

func join(groups ...[]valueKind) []valueKind {
	var out []valueKind
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func domFunctions() []hostFunc {
	return []hostFunc{
		{name: "init_event_raw", params: params(kI32), fn: domInitEvent},

		{name: "add_event_listener", params: join(strParam, strParam, params(kI32, kI32, kI32, kI32)), results: boolRes, fn: domAddElementListener},
		{name: "add_window_event_listener", params: join(strParam, params(kI32, kI32, kI32, kI32)), results: boolRes, fn: scopedAdd(listener.ScopeWindow)},
		{name: "add_document_event_listener", params: join(strParam, params(kI32, kI32, kI32, kI32)), results: boolRes, fn: scopedAdd(listener.ScopeDocument)},
		{name: "remove_event_listener", params: join(strParam, strParam, params(kI32, kI32, kI32)), results: boolRes, fn: domRemoveElementListener},
		{name: "remove_window_event_listener", params: join(strParam, params(kI32, kI32, kI32)), results: boolRes, fn: scopedRemove(listener.ScopeWindow)},
		{name: "remove_document_event_listener", params: join(strParam, params(kI32, kI32, kI32)), results: boolRes, fn: scopedRemove(listener.ScopeDocument)},

		{name: "event_stop_propagation", fn: func(_ context.Context, c *call) { c.inst.bridge.StopPropagation() }},
		{name: "event_stop_immediate_propagation", fn: func(_ context.Context, c *call) { c.inst.bridge.StopImmediatePropagation() }},
		{name: "event_prevent_default", fn: func(_ context.Context, c *call) { c.inst.bridge.PreventDefault() }},

		{name: "dispatch_custom_event", params: join(strParam, strParam, params(kI32)), results: boolRes, fn: domDispatchCustom},
		{name: "get_gamepad_state", params: params(kInt, kI32), results: boolRes, fn: domGamepadState},

		{name: "get_element_value_f64", params: strParam, results: floatRes, fn: func(_ context.Context, c *call) {
			el := c.element()
			c.setF64(propertyFloat(el, dom.PropValue, true))
		}},
		{name: "get_element_value_string", params: join(strParam, params(kI32, kInt)), results: intRes, fn: func(_ context.Context, c *call) {
			el := c.element()
			c.copyOut(el, dom.PropValue, true)
		}},
		{name: "get_element_value_string_length", params: strParam, results: intRes, fn: func(_ context.Context, c *call) {
			el := c.element()
			c.setInt(int64(len(propertyString(el, dom.PropValue, true))))
		}},
		{name: "get_element_min_max", params: join(params(kI32), strParam), fn: func(_ context.Context, c *call) {
			ptr := c.u32()
			el := c.element()
			if el == nil {
				return
			}
			values := c.mem().LoadF64s(ptr, 2)
			values.Set(0, el.Get(dom.PropMin).Float())
			values.Set(1, el.Get(dom.PropMax).Float())
		}},
		{name: "set_element_value_f64", params: join(strParam, params(kF64)), fn: func(_ context.Context, c *call) {
			el, v := c.element(), c.f64()
			if el != nil {
				el.Set(dom.PropValue, dom.NumberValue(v))
			}
		}},
		{name: "set_element_value_string", params: join(strParam, strParam), fn: func(_ context.Context, c *call) {
			el, v := c.element(), c.str()
			if el != nil {
				el.Set(dom.PropValue, dom.StringValue(v))
			}
		}},
		{name: "set_element_style", params: join(strParam, strParam, strParam), fn: func(_ context.Context, c *call) {
			el, key, v := c.element(), c.str(), c.str()
			if el != nil {
				el.SetStyle(key, v)
			}
		}},

		{name: "get_element_key_f64", params: join(strParam, strParam), results: floatRes, fn: func(_ context.Context, c *call) {
			el, p, ok := c.elementKey()
			c.setF64(propertyFloat(el, p, ok))
		}},
		{name: "get_element_key_string", params: join(strParam, strParam, params(kI32, kInt)), results: intRes, fn: func(_ context.Context, c *call) {
			el, p, ok := c.elementKey()
			c.copyOut(el, p, ok)
		}},
		{name: "get_element_key_string_length", params: join(strParam, strParam), results: intRes, fn: func(_ context.Context, c *call) {
			el, p, ok := c.elementKey()
			c.setInt(int64(len(propertyString(el, p, ok))))
		}},
		{name: "set_element_key_f64", params: join(strParam, strParam, params(kF64)), fn: func(_ context.Context, c *call) {
			el, p, ok := c.elementKey()
			v := c.f64()
			if el != nil && ok {
				el.Set(p, dom.NumberValue(v))
			}
		}},
		{name: "set_element_key_string", params: join(strParam, strParam, strParam), fn: func(_ context.Context, c *call) {
			el, p, ok := c.elementKey()
			v := c.str()
			if el != nil && ok {
				el.Set(p, dom.StringValue(v))
			}
		}},
		{name: "get_bounding_client_rect", params: join(params(kI32), strParam), fn: func(_ context.Context, c *call) {
			ptr := c.u32()
			if el := c.element(); el != nil {
				c.storeRect(ptr, el.BoundingClientRect())
			}
		}},

		{name: "window_get_rect", params: params(kI32), fn: func(_ context.Context, c *call) {
			c.storeRect(c.u32(), c.inst.realm.Window.ScreenRect())
		}},
		{name: "window_get_scroll", params: params(kI32), fn: func(_ context.Context, c *call) {
			values := c.mem().LoadF64s(c.u32(), 2)
			x, y := c.inst.realm.Window.Scroll()
			values.Set(0, x)
			values.Set(1, y)
		}},
		{name: "window_set_scroll", params: params(kF64, kF64), fn: func(_ context.Context, c *call) {
			x, y := c.f64(), c.f64()
			c.inst.realm.Window.ScrollTo(x, y)
		}},
		{name: "device_pixel_ratio", results: floatRes, fn: func(_ context.Context, c *call) {
			c.setF64(c.inst.realm.Window.DevicePixelRatio())
		}},
	}
}

func domInitEvent(_ context.Context, c *call) {
	ep := c.u32()
	event.Encode(c.mem(), ep, c.inst.bridge.Staged(), c.inst.env)
}

func domAddElementListener(_ context.Context, c *call) {
	idPtr := c.u32()
	idLen := c.word()
	id := c.mem().LoadString(idPtr, int(max(idLen, 0)))
	name := c.str()
	nameCode, data, cb, capture := c.u32(), c.u32(), c.u32(), c.flag()

	el, ok := c.inst.realm.Element(id)
	if !ok {
		c.setBool(false)
		return
	}
	key := listener.Key{Scope: listener.ScopeElement, TargetID: id, Name: name, Data: data, Callback: cb, Capture: capture}
	tokens := listener.Tokens{NameCode: nameCode, IDPtr: idPtr, IDLen: uint64(max(idLen, 0))}
	c.setBool(c.inst.registry.Add(key, el, tokens))
}

func scopedAdd(scope listener.Scope) func(context.Context, *call) {
	return func(_ context.Context, c *call) {
		name := c.str()
		nameCode, data, cb, capture := c.u32(), c.u32(), c.u32(), c.flag()
		key := listener.Key{Scope: scope, Name: name, Data: data, Callback: cb, Capture: capture}
		c.setBool(c.inst.registry.Add(key, c.scopeTarget(scope), listener.Tokens{NameCode: nameCode}))
	}
}

func domRemoveElementListener(_ context.Context, c *call) {
	id, name := c.str(), c.str()
	data, cb, capture := c.u32(), c.u32(), c.flag()
	if _, ok := c.inst.realm.Element(id); !ok {
		c.setBool(false)
		return
	}
	key := listener.Key{Scope: listener.ScopeElement, TargetID: id, Name: name, Data: data, Callback: cb, Capture: capture}
	c.setBool(c.inst.registry.Remove(key))
}

func scopedRemove(scope listener.Scope) func(context.Context, *call) {
	return func(_ context.Context, c *call) {
		name := c.str()
		data, cb, capture := c.u32(), c.u32(), c.flag()
		key := listener.Key{Scope: scope, Name: name, Data: data, Callback: cb, Capture: capture}
		c.setBool(c.inst.registry.Remove(key))
	}
}

func domDispatchCustom(ctx context.Context, c *call) {
	el, name, opts := c.element(), c.str(), c.u32()
	if el == nil {
		c.setBool(false)
		return
	}
	ev := &dom.BaseEvent{
		Type:       name,
		Bubbles:    opts&event.OptionBubbles != 0,
		Cancelable: opts&event.OptionCancelable != 0,
		Composed:   opts&event.OptionComposed != 0,
	}
	c.inst.realm.Stamp(ev)
	el.DispatchEvent(ctx, ev)
	c.setBool(true)
}

func domGamepadState(_ context.Context, c *call) {
	index, ep := c.word(), c.u32()
	g, ok := c.inst.realm.Navigator.Gamepad(int(index))
	if !ok {
		c.setBool(false)
		return
	}
	event.EncodeGamepadState(c.mem(), ep, g)
	c.setBool(true)
}

// element reads an id string and resolves it. It returns nil for an
// unknown id.
func (c *call) element() *dom.Element {
	el, ok := c.inst.realm.Element(c.str())
	if !ok {
		return nil
	}
	return el
}

// elementKey reads an id and a property name.
func (c *call) elementKey() (*dom.Element, dom.Property, bool) {
	el := c.element()
	name := c.str()
	p, ok := dom.LookupProperty(name)
	if !ok && el != nil {
		c.inst.logger.Debug("unsupported element property", "id", el.ID(), "key", name)
	}
	return el, p, ok
}

// copyOut reads (buf_ptr, buf_len), copies the property text into the
// buffer and sets the number of bytes written.
func (c *call) copyOut(el *dom.Element, p dom.Property, ok bool) {
	ptr := c.u32()
	n := c.word()
	if el == nil || !ok || ptr == 0 || n <= 0 {
		c.setInt(0)
		return
	}
	s := el.Get(p).String()
	c.setInt(int64(c.mem().StoreStringN(ptr, s, int(n))))
}

func (c *call) storeRect(ptr uint32, r dom.Rect) {
	values := c.mem().LoadF64s(ptr, 4)
	values.Set(0, r.X)
	values.Set(1, r.Y)
	values.Set(2, r.Width)
	values.Set(3, r.Height)
}

func (c *call) scopeTarget(scope listener.Scope) dom.Target {
	if scope == listener.ScopeDocument {
		return c.inst.realm.Document
	}
	return c.inst.realm.Window
}

func propertyFloat(el *dom.Element, p dom.Property, ok bool) float64 {
	if el == nil || !ok {
		return 0
	}
	return el.Get(p).Float()
}

func propertyString(el *dom.Element, p dom.Property, ok bool) string {
	if el == nil || !ok {
		return ""
	}
	return el.Get(p).String()
}
