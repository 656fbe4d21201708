package event

import "github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"

// Env is the host state the codec consults besides the event itself.
type Env interface {
	// Classify reports whether a target is the global document or window.
	Classify(t dom.Target) dom.Scope
	// Scroll returns the window scroll position.
	Scroll() (x, y float64)
	// Visible reports whether the document is visible.
	Visible() bool
}

// RealmEnv adapts a realm to Env.
func RealmEnv(r *dom.Realm) Env {
	return realmEnv{r}
}

type realmEnv struct {
	r *dom.Realm
}

func (e realmEnv) Classify(t dom.Target) dom.Scope { return e.r.Classify(t) }
func (e realmEnv) Scroll() (float64, float64)      { return e.r.Window.Scroll() }
func (e realmEnv) Visible() bool                   { return !e.r.Document.Hidden() }
