// Package dom is a small in-process model of the browser objects a guest
// talks to: a window, a document with elements, and a navigator with
// gamepads.
//
// Dispatch follows the DOM event flow: capture listeners from the window
// down to the target's parent, listeners on the target, then bubble
// listeners back up when the event bubbles. Listeners run synchronously on
// the caller's goroutine. A Realm is not safe for concurrent use.
package dom

import "time"

// Scope classifies a target against the realm's global objects. The numeric
// values are the origin codes written into event records.
type Scope uint32

const (
	ScopeNone Scope = iota
	ScopeDocument
	ScopeWindow
)

func (s Scope) String() string {
	switch s {
	case ScopeDocument:
		return "document"
	case ScopeWindow:
		return "window"
	}
	return "none"
}

// Realm groups the global objects of one guest instance.
type Realm struct {
	Window    *Window
	Document  *Document
	Navigator *Navigator

	origin time.Time
	now    func() time.Time
}

// RealmOption configures a Realm.
type RealmOption func(*Realm)

// WithClock replaces time.Now as the realm's clock.
func WithClock(now func() time.Time) RealmOption {
	return func(r *Realm) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRealm returns a realm with an empty document.
func NewRealm(opts ...RealmOption) *Realm {
	r := &Realm{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.origin = r.now()
	r.Window = &Window{}
	r.Document = &Document{window: r.Window}
	r.Navigator = &Navigator{}
	return r
}

// Now returns the milliseconds elapsed since the realm was created.
func (r *Realm) Now() float64 {
	return float64(r.now().Sub(r.origin).Nanoseconds()) / 1e6
}

// Clock returns the realm's wall clock.
func (r *Realm) Clock() time.Time {
	return r.now()
}

// Classify reports whether t is the realm's document, its window or
// anything else.
func (r *Realm) Classify(t Target) Scope {
	if t == nil {
		return ScopeNone
	}
	if d, ok := t.(*Document); ok && d == r.Document {
		return ScopeDocument
	}
	if w, ok := t.(*Window); ok && w == r.Window {
		return ScopeWindow
	}
	return ScopeNone
}

// Element resolves an element id in the realm's document.
func (r *Realm) Element(id string) (*Element, bool) {
	return r.Document.GetElementByID(id)
}

// Stamp sets the event timestamp to the current realm time if it is unset.
func (r *Realm) Stamp(e Event) Event {
	if b := e.Base(); b.TimeStamp == 0 {
		b.TimeStamp = r.Now()
	}
	return e
}
