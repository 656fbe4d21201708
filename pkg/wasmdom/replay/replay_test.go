package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmdom/wasmdom-go/internal/script"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

var errUnknownTarget = errors.New("unknown target")

// fakeDispatcher dispatches into a plain realm and records every event.
type fakeDispatcher struct {
	mu     sync.Mutex
	realm  *dom.Realm
	events []dom.Event
	err    error
}

func newFakeDispatcher(t *testing.T) *fakeDispatcher {
	t.Helper()
	r := dom.NewRealm()
	_, err := r.Document.CreateElement("button", "btn")
	require.NoError(t, err)
	return &fakeDispatcher{realm: r}
}

func (f *fakeDispatcher) Update(fn func(r *dom.Realm)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.realm)
}

func (f *fakeDispatcher) Target(name string) (dom.Target, error) {
	switch name {
	case "#window":
		return f.realm.Window, nil
	case "#document":
		return f.realm.Document, nil
	}
	el, ok := f.realm.Element(strings.TrimPrefix(name, "#"))
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTarget, name)
	}
	return el, nil
}

func (f *fakeDispatcher) DispatchEvent(ctx context.Context, target dom.Target, ev dom.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return target.DispatchEvent(ctx, ev), f.err
}

func (f *fakeDispatcher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, ev := range f.events {
		out = append(out, ev.Base().Type)
	}
	return out
}

func writeScript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

// collect drains both channels until the result channel closes.
func collect(t *testing.T, results <-chan Result, errs <-chan error) ([]Result, []error) {
	t.Helper()
	var got []Result
	var gotErrs []error
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r, ok := <-results:
			if !ok {
				if errs != nil {
					for err := range errs {
						gotErrs = append(gotErrs, err)
					}
				}
				return got, gotErrs
			}
			got = append(got, r)
		case err, ok := <-errs:
			if ok {
				gotErrs = append(gotErrs, err)
			} else {
				errs = nil
			}
		case <-timeout:
			t.Fatal("timed out waiting for playback to finish")
		}
	}
}

func TestPlayer_FromStart(t *testing.T) {
	path := writeScript(t,
		"# warm up",
		`{"target":"#window","type":"scroll","scroll":{"x":4,"y":8}}`,
		"",
		`{"target":"#document","type":"visibilitychange","hidden":true}`,
		`{"target":"btn","type":"click","kind":"mouse","bubbles":true,"mouse":{"client_x":2}}`,
	)
	d := newFakeDispatcher(t)

	p, err := NewPlayer(path, d)
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	got, gotErrs := collect(t, results, errs)

	assert.Empty(t, gotErrs)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, 5, got[2].Line)
	assert.Equal(t, []string{"scroll", "visibilitychange", "click"}, d.types())

	x, y := d.realm.Window.Scroll()
	assert.Equal(t, 4.0, x)
	assert.Equal(t, 8.0, y)
	assert.True(t, d.realm.Document.Hidden())

	_, ok := d.events[2].(*dom.MouseEvent)
	assert.True(t, ok, "click should be a mouse event")
}

func TestPlayer_DefaultPrevented(t *testing.T) {
	path := writeScript(t, `{"target":"btn","type":"submit","cancelable":true}`)
	d := newFakeDispatcher(t)
	btn, _ := d.realm.Element("btn")
	btn.AddEventListener("submit", dom.NewListener(func(_ context.Context, e dom.Event) {
		e.Base().PreventDefault()
	}), false)

	p, err := NewPlayer(path, d)
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	got, _ := collect(t, results, errs)
	require.Len(t, got, 1)
	assert.True(t, got[0].DefaultPrevented)
}

func TestPlayer_SkipsBadLines(t *testing.T) {
	path := writeScript(t,
		`{"target":"btn","type":"click"}`,
		`not json`,
		`{"target":"missing","type":"click"}`,
		`{"target":"btn","type":"dblclick"}`,
	)
	d := newFakeDispatcher(t)

	p, err := NewPlayer(path, d)
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	got, gotErrs := collect(t, results, errs)

	require.Len(t, got, 2)
	require.Len(t, gotErrs, 2)

	var perr *PlayError
	require.ErrorAs(t, gotErrs[0], &perr)
	assert.Equal(t, OpParse, perr.Op)
	assert.Equal(t, 2, perr.Line)
	assert.ErrorIs(t, gotErrs[0], script.ErrInvalidRecord)

	require.ErrorAs(t, gotErrs[1], &perr)
	assert.Equal(t, OpDispatch, perr.Op)
	assert.Equal(t, 3, perr.Line)
	assert.ErrorIs(t, gotErrs[1], errUnknownTarget)
}

func TestPlayer_StopOnError(t *testing.T) {
	path := writeScript(t,
		`{"target":"btn","type":"click"}`,
		`{"target":"btn"}`,
		`{"target":"btn","type":"click"}`,
	)
	d := newFakeDispatcher(t)

	p, err := NewPlayer(path, d, WithStopOnError(true))
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	got, gotErrs := collect(t, results, errs)
	assert.Len(t, got, 1)
	assert.Len(t, gotErrs, 1)
}

func TestPlayer_CallbackErrorsReported(t *testing.T) {
	path := writeScript(t, `{"target":"btn","type":"click"}`)
	d := newFakeDispatcher(t)
	d.err = errors.New("guest callback failed")

	p, err := NewPlayer(path, d)
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	got, gotErrs := collect(t, results, errs)
	assert.Empty(t, got)
	require.Len(t, gotErrs, 1)
	assert.ErrorIs(t, gotErrs[0], d.err)
	assert.Equal(t, []string{"click"}, d.types())
}

func TestPlayer_LastN(t *testing.T) {
	path := writeScript(t,
		`{"target":"btn","type":"a"}`,
		`{"target":"btn","type":"b"}`,
		`{"target":"btn","type":"c"}`,
		`{"target":"btn","type":"d"}`,
	)
	d := newFakeDispatcher(t)

	p, err := NewPlayer(path, d, WithLastN(2))
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	got, gotErrs := collect(t, results, errs)
	assert.Empty(t, gotErrs)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"c", "d"}, d.types())
}

func TestPlayer_Follow(t *testing.T) {
	path := writeScript(t, `{"target":"btn","type":"first"}`)
	d := newFakeDispatcher(t)

	p, err := NewPlayer(path, d, WithFollow(true), WithPoll(true))
	require.NoError(t, err)
	defer p.Close()

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)

	next := func() Result {
		select {
		case r, ok := <-results:
			require.True(t, ok, "results closed")
			return r
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a result")
		}
		return Result{}
	}

	assert.Equal(t, "first", next().Record.Type)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString(`{"target":"btn","type":"second"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r := next()
	assert.Equal(t, "second", r.Record.Type)
	assert.Equal(t, 2, r.Line)

	require.NoError(t, p.Close())
	_, ok := <-results
	assert.False(t, ok)
}

func TestPlayer_PlayStates(t *testing.T) {
	path := writeScript(t, `{"target":"btn","type":"click"}`)
	p, err := NewPlayer(path, newFakeDispatcher(t))
	require.NoError(t, err)

	results, errs, err := p.Play(context.Background())
	require.NoError(t, err)
	_, _, err = p.Play(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyPlaying)
	collect(t, results, errs)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	_, _, err = p.Play(context.Background())
	assert.ErrorIs(t, err, ErrPlayerClosed)
}

func TestNewPlayer_Errors(t *testing.T) {
	path := writeScript(t, `{"target":"btn","type":"click"}`)
	d := newFakeDispatcher(t)

	_, err := NewPlayer(path, nil)
	assert.Error(t, err)

	_, err = NewPlayer(filepath.Join(t.TempDir(), "missing.jsonl"), d)
	assert.Error(t, err)

	_, err = NewPlayer(path, d, WithLastN(-1))
	assert.ErrorContains(t, err, "invalid options")

	_, err = NewPlayer(path, d, WithLastN(DefaultMaxLastN+1))
	assert.ErrorContains(t, err, "exceeds maximum")

	_, err = NewPlayer(path, d, WithMaxLineBytes(-1))
	assert.Error(t, err)
}

func TestApply_Gamepad(t *testing.T) {
	d := newFakeDispatcher(t)

	connect := &script.Record{Target: "#window", Type: "gamepadconnected", Kind: script.KindGamepad,
		Gamepad: &script.Gamepad{Index: 2, ID: "pad", Connected: true}}
	_, err := Apply(context.Background(), d, connect)
	require.NoError(t, err)
	pad, ok := d.realm.Navigator.Gamepad(2)
	require.True(t, ok)
	assert.Equal(t, "pad", pad.ID)

	disconnect := &script.Record{Target: "#window", Type: "gamepaddisconnected", Kind: script.KindGamepad,
		Gamepad: &script.Gamepad{Index: 2, ID: "pad"}}
	_, err = Apply(context.Background(), d, disconnect)
	require.NoError(t, err)
	_, ok = d.realm.Navigator.Gamepad(2)
	assert.False(t, ok)
}
