package replay

import (
	"context"

	"github.com/wasmdom/wasmdom-go/internal/script"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

// Dispatcher is the part of *wasmdom.Instance a player drives.
// DispatchEvent reports whether the default action is still allowed.
type Dispatcher interface {
	Update(fn func(r *dom.Realm))
	Target(name string) (dom.Target, error)
	DispatchEvent(ctx context.Context, target dom.Target, ev dom.Event) (bool, error)
}

// Apply applies the record's side effects to the realm, then dispatches its
// event. It reports whether the event's default action was prevented.
func Apply(ctx context.Context, d Dispatcher, rec *script.Record) (bool, error) {
	d.Update(func(r *dom.Realm) {
		if rec.Scroll != nil {
			r.Window.ScrollTo(rec.Scroll.X, rec.Scroll.Y)
		}
		if rec.Hidden != nil {
			r.Document.SetHidden(*rec.Hidden)
		}
		if rec.Kind == script.KindGamepad && rec.Gamepad != nil {
			if rec.Gamepad.Connected {
				r.Navigator.SetGamepad(rec.Gamepad.Pad())
			} else {
				r.Navigator.RemoveGamepad(rec.Gamepad.Index)
			}
		}
	})

	target, err := d.Target(rec.Target)
	if err != nil {
		return false, err
	}
	allowed, err := d.DispatchEvent(ctx, target, rec.Event())
	return !allowed, err
}
