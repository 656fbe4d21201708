package dom

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateID is returned when an element id is already in use.
var ErrDuplicateID = errors.New("duplicate element id")

// Document owns the elements of a realm.
type Document struct {
	EventTarget

	window   *Window
	elements map[string]*Element
	hidden   bool
}

// CreateElement creates an element owned by d. A non-empty id must be unique.
func (d *Document) CreateElement(tag, id string) (*Element, error) {
	if id != "" {
		if _, ok := d.elements[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
	}
	el := &Element{id: id, tag: tag, doc: d}
	if id != "" {
		if d.elements == nil {
			d.elements = make(map[string]*Element)
		}
		d.elements[id] = el
	}
	return el, nil
}

// GetElementByID resolves an element id.
func (d *Document) GetElementByID(id string) (*Element, bool) {
	el, ok := d.elements[id]
	return el, ok
}

// Len returns the number of elements with an id.
func (d *Document) Len() int { return len(d.elements) }

// Hidden reports the visibility state.
func (d *Document) Hidden() bool { return d.hidden }

// SetHidden changes the visibility state. It does not fire
// visibilitychange; callers dispatch that themselves.
func (d *Document) SetHidden(hidden bool) { d.hidden = hidden }

// DispatchEvent dispatches ev with d as the target.
func (d *Document) DispatchEvent(ctx context.Context, ev Event) bool {
	return dispatch(ctx, d, ev)
}

func (d *Document) parentTarget() Target {
	if d.window != nil {
		return d.window
	}
	return nil
}
