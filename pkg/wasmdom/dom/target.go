package dom

import (
	"context"
	"slices"
)

// Target is an object that receives events: an *Element, the *Document or
// the *Window.
type Target interface {
	AddEventListener(typ string, l *Listener, capture bool) bool
	RemoveEventListener(typ string, l *Listener, capture bool) bool
	DispatchEvent(ctx context.Context, e Event) bool

	eventTarget() *EventTarget
	parentTarget() Target
}

// Listener wraps an event handler. Listeners are identified by pointer, so
// the same *Listener must be passed to RemoveEventListener.
type Listener struct {
	fn func(ctx context.Context, e Event)
}

// NewListener returns a listener calling fn.
func NewListener(fn func(ctx context.Context, e Event)) *Listener {
	return &Listener{fn: fn}
}

type listenerKey struct {
	typ     string
	capture bool
}

// EventTarget stores the listeners of one target.
type EventTarget struct {
	listeners map[listenerKey][]*Listener
}

// AddEventListener attaches l. Adding a listener that is already attached
// for the same type and phase does nothing and returns false.
func (t *EventTarget) AddEventListener(typ string, l *Listener, capture bool) bool {
	if l == nil {
		return false
	}
	k := listenerKey{typ, capture}
	if slices.Contains(t.listeners[k], l) {
		return false
	}
	if t.listeners == nil {
		t.listeners = make(map[listenerKey][]*Listener)
	}
	t.listeners[k] = append(t.listeners[k], l)
	return true
}

// RemoveEventListener detaches l and reports whether it was attached.
func (t *EventTarget) RemoveEventListener(typ string, l *Listener, capture bool) bool {
	k := listenerKey{typ, capture}
	ls := t.listeners[k]
	i := slices.Index(ls, l)
	if i < 0 {
		return false
	}
	ls = slices.Delete(slices.Clone(ls), i, i+1)
	if len(ls) == 0 {
		delete(t.listeners, k)
	} else {
		t.listeners[k] = ls
	}
	return true
}

// ListenerCount returns the number of listeners for typ in both phases.
func (t *EventTarget) ListenerCount(typ string) int {
	return len(t.listeners[listenerKey{typ, true}]) + len(t.listeners[listenerKey{typ, false}])
}

func (t *EventTarget) eventTarget() *EventTarget { return t }

// dispatch runs the capture, target and bubble phases and reports whether
// the default action is still allowed.
func dispatch(ctx context.Context, target Target, e Event) bool {
	b := e.Base()
	b.target = target
	b.stopped, b.stoppedNow, b.canceled = false, false, false

	path := []Target{target}
	for p := target.parentTarget(); p != nil; p = p.parentTarget() {
		path = append(path, p)
	}

	b.phase = PhaseCapturing
	for i := len(path) - 1; i > 0 && !b.stopped; i-- {
		invoke(ctx, path[i], e, true)
	}

	b.phase = PhaseAtTarget
	if !b.stopped {
		invoke(ctx, target, e, true)
	}
	if !b.stopped {
		invoke(ctx, target, e, false)
	}

	if b.Bubbles {
		b.phase = PhaseBubbling
		for i := 1; i < len(path) && !b.stopped; i++ {
			invoke(ctx, path[i], e, false)
		}
	}

	b.phase = PhaseNone
	b.currentTarget = nil
	return !b.canceled
}

// invoke calls a snapshot of the listeners, so removals made by a listener
// apply to later dispatches only.
func invoke(ctx context.Context, t Target, e Event, capture bool) {
	b := e.Base()
	ls := slices.Clone(t.eventTarget().listeners[listenerKey{b.Type, capture}])
	if len(ls) == 0 {
		return
	}
	b.currentTarget = t
	for _, l := range ls {
		l.fn(ctx, e)
		if b.stoppedNow {
			return
		}
	}
}
