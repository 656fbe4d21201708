// Package listener keeps track of the DOM listeners a guest registers and
// bridges their firing back into guest callbacks.
//
// A registration is identified by its Key. Adding an existing key or
// removing an unknown one reports false and changes nothing, so the guest
// can branch on the result.
package listener

import (
	"fmt"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

// Scope names the kind of object a listener is attached to.
type Scope uint8

const (
	ScopeElement Scope = iota
	ScopeWindow
	ScopeDocument
)

func (s Scope) String() string {
	switch s {
	case ScopeWindow:
		return "window"
	case ScopeDocument:
		return "document"
	}
	return "element"
}

// Key identifies one registration. Data and Callback are opaque guest
// tokens passed back unchanged when the listener fires.
type Key struct {
	Scope    Scope
	TargetID string // element id; empty for window and document
	Name     string
	Data     uint32
	Callback uint32
	Capture  bool
}

func (k Key) String() string {
	target := k.Scope.String()
	if k.Scope == ScopeElement {
		target = "#" + k.TargetID
	}
	return fmt.Sprintf("%s/%s data=%#x cb=%#x capture=%t", target, k.Name, k.Data, k.Callback, k.Capture)
}

// Tokens are the host-side values staged along with each fired event.
type Tokens struct {
	NameCode uint32
	IDPtr    uint32
	IDLen    uint64
}

type entry struct {
	target   dom.Target
	listener *dom.Listener
}

// Registry maps keys to attached listeners. It belongs to one guest
// instance and is not safe for concurrent use.
type Registry struct {
	bridge  *Bridge
	entries map[Key]entry
}

// NewRegistry returns an empty registry firing through b.
func NewRegistry(b *Bridge) *Registry {
	return &Registry{bridge: b, entries: make(map[Key]entry)}
}

// Add attaches a bridging listener for key to target. It returns false if
// target is nil or key is already registered.
func (r *Registry) Add(key Key, target dom.Target, tokens Tokens) bool {
	if target == nil {
		return false
	}
	if _, ok := r.entries[key]; ok {
		return false
	}
	l := r.bridge.listener(key, tokens)
	if !target.AddEventListener(key.Name, l, key.Capture) {
		return false
	}
	r.entries[key] = entry{target: target, listener: l}
	return true
}

// Remove detaches the listener registered under key.
func (r *Registry) Remove(key Key) bool {
	e, ok := r.entries[key]
	if !ok {
		return false
	}
	delete(r.entries, key)
	e.target.RemoveEventListener(key.Name, e.listener, key.Capture)
	return true
}

// Has reports whether key is registered.
func (r *Registry) Has(key Key) bool {
	_, ok := r.entries[key]
	return ok
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clear detaches every listener.
func (r *Registry) Clear() {
	for k := range r.entries {
		r.Remove(k)
	}
}
