package dom

import "context"

// Rect is a box in CSS pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Element is a node in a Document.
type Element struct {
	EventTarget

	id     string
	tag    string
	doc    *Document
	parent *Element
	props  map[Property]Value
	style  map[string]string
	rect   Rect
}

func (e *Element) ID() string          { return e.id }
func (e *Element) Tag() string         { return e.tag }
func (e *Element) Document() *Document { return e.doc }

// Parent returns the parent element, or nil for a top-level element.
func (e *Element) Parent() *Element { return e.parent }

// AppendChild makes child a child of e.
func (e *Element) AppendChild(child *Element) {
	child.parent = e
}

// Get returns a property value. Unset properties are undefined.
func (e *Element) Get(p Property) Value {
	return e.props[p]
}

// Set stores a property value.
func (e *Element) Set(p Property, v Value) {
	if e.props == nil {
		e.props = make(map[Property]Value)
	}
	e.props[p] = v
}

// Style returns an inline style declaration.
func (e *Element) Style(key string) string {
	return e.style[key]
}

// SetStyle sets an inline style declaration. An empty value removes it.
func (e *Element) SetStyle(key, value string) {
	if value == "" {
		delete(e.style, key)
		return
	}
	if e.style == nil {
		e.style = make(map[string]string)
	}
	e.style[key] = value
}

// BoundingClientRect returns the element box.
func (e *Element) BoundingClientRect() Rect { return e.rect }

// SetBoundingClientRect sets the element box.
func (e *Element) SetBoundingClientRect(r Rect) { e.rect = r }

// DispatchEvent dispatches ev with e as the target.
func (e *Element) DispatchEvent(ctx context.Context, ev Event) bool {
	return dispatch(ctx, e, ev)
}

func (e *Element) parentTarget() Target {
	if e.parent != nil {
		return e.parent
	}
	if e.doc != nil {
		return e.doc
	}
	return nil
}
