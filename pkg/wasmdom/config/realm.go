package config

import (
	"time"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

// BuildRealm creates the DOM the file describes. The file must have passed
// Validate.
func (f *File) BuildRealm(opts ...dom.RealmOption) (*dom.Realm, error) {
	r := dom.NewRealm(opts...)

	w := f.Window
	r.Window.SetScreenRect(dom.Rect{X: w.ScreenX, Y: w.ScreenY, Width: w.ScreenWidth, Height: w.ScreenHeight})
	r.Window.ScrollTo(w.ScrollX, w.ScrollY)
	if w.DevicePixelRatio > 0 {
		r.Window.SetDevicePixelRatio(w.DevicePixelRatio)
	}
	r.Document.SetHidden(f.Document.Hidden)

	for i, spec := range f.Document.Elements {
		el, err := r.Document.CreateElement(spec.Tag, spec.ID)
		if err != nil {
			return nil, &ElementError{Index: i, ID: spec.ID, Field: "id", Message: "cannot create element", Cause: err}
		}
		if spec.Parent != "" {
			parent, _ := r.Element(spec.Parent)
			parent.AppendChild(el)
		}
		if spec.Value != nil {
			v, err := toValue(spec.Value)
			if err != nil {
				return nil, &ElementError{Index: i, ID: spec.ID, Field: "value", Message: "unsupported value type", Cause: err}
			}
			el.Set(dom.PropValue, v)
		}
		if spec.Min != nil {
			el.Set(dom.PropMin, dom.NumberValue(*spec.Min))
		}
		if spec.Max != nil {
			el.Set(dom.PropMax, dom.NumberValue(*spec.Max))
		}
		if spec.Rect != nil {
			el.SetBoundingClientRect(dom.Rect{X: spec.Rect.X, Y: spec.Rect.Y, Width: spec.Rect.Width, Height: spec.Rect.Height})
		}
		for k, v := range spec.Style {
			el.SetStyle(k, v)
		}
		for name, raw := range spec.Properties {
			p, ok := dom.LookupProperty(name)
			if !ok {
				return nil, &ElementError{Index: i, ID: spec.ID, Field: "properties", Message: "unsupported property " + name}
			}
			v, err := toValue(raw)
			if err != nil {
				return nil, &ElementError{Index: i, ID: spec.ID, Field: "properties." + name, Message: "unsupported value type", Cause: err}
			}
			el.Set(p, v)
		}
	}

	for _, g := range f.Gamepads {
		pad := &dom.Gamepad{
			ID:        g.ID,
			Mapping:   g.Mapping,
			Index:     g.Index,
			Connected: g.Connected,
			Axes:      append([]float64(nil), g.Axes...),
		}
		for _, b := range g.Buttons {
			pad.Buttons = append(pad.Buttons, dom.GamepadButton{Value: b.Value, Pressed: b.Pressed, Touched: b.Touched})
		}
		r.Navigator.SetGamepad(pad)
	}
	return r, nil
}

// RuntimeOptions returns the runtime options the file sets.
func (f *File) RuntimeOptions() []wasmdom.Option {
	var opts []wasmdom.Option
	if f.WordWidth != 0 {
		opts = append(opts, wasmdom.WithWordWidth(f.WordWidth))
	}
	if f.MemoryLimitPages != 0 {
		opts = append(opts, wasmdom.WithMemoryLimitPages(f.MemoryLimitPages))
	}
	return opts
}

// InstanceOptions builds the realm and returns the instance options the
// file sets. clock may be nil.
func (f *File) InstanceOptions(clock func() time.Time) ([]wasmdom.InstanceOption, error) {
	realm, err := f.BuildRealm(dom.WithClock(clock))
	if err != nil {
		return nil, err
	}
	opts := []wasmdom.InstanceOption{wasmdom.WithRealm(realm)}
	if f.Console.RateLimit > 0 {
		opts = append(opts, wasmdom.WithConsoleRateLimit(f.Console.RateLimit))
	}
	if f.Console.History > 0 {
		opts = append(opts, wasmdom.WithConsoleHistory(f.Console.History))
	}
	return opts, nil
}
