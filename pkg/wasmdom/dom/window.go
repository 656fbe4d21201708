package dom

import "context"

// Window is the global scope of a realm.
type Window struct {
	EventTarget

	scrollX, scrollY float64
	screen           Rect
	pixelRatio       float64
}

// Scroll returns the scroll position.
func (w *Window) Scroll() (x, y float64) { return w.scrollX, w.scrollY }

// ScrollTo sets the scroll position.
func (w *Window) ScrollTo(x, y float64) { w.scrollX, w.scrollY = x, y }

// ScreenRect returns the window position and the screen size.
func (w *Window) ScreenRect() Rect { return w.screen }

func (w *Window) SetScreenRect(r Rect) { w.screen = r }

// DevicePixelRatio defaults to 1.
func (w *Window) DevicePixelRatio() float64 {
	if w.pixelRatio == 0 {
		return 1
	}
	return w.pixelRatio
}

func (w *Window) SetDevicePixelRatio(r float64) { w.pixelRatio = r }

// DispatchEvent dispatches ev with w as the target.
func (w *Window) DispatchEvent(ctx context.Context, ev Event) bool {
	return dispatch(ctx, w, ev)
}

func (w *Window) parentTarget() Target { return nil }
