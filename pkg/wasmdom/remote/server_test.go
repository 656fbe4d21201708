package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/dom"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	realm *dom.Realm
	types []string
}

func newFakeDispatcher(t *testing.T) *fakeDispatcher {
	t.Helper()
	r := dom.NewRealm()
	btn, err := r.Document.CreateElement("button", "btn")
	require.NoError(t, err)
	btn.AddEventListener("submit", dom.NewListener(func(_ context.Context, e dom.Event) {
		e.Base().PreventDefault()
	}), false)
	return &fakeDispatcher{realm: r}
}

func (f *fakeDispatcher) Update(fn func(r *dom.Realm)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.realm)
}

func (f *fakeDispatcher) Target(name string) (dom.Target, error) {
	if name == "#window" {
		return f.realm.Window, nil
	}
	el, ok := f.realm.Element(name)
	if !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}
	return el, nil
}

func (f *fakeDispatcher) DispatchEvent(ctx context.Context, target dom.Target, ev dom.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, ev.Base().Type)
	return target.DispatchEvent(ctx, ev), nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) Ack {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ack Ack
	require.NoError(t, conn.ReadJSON(&ack))
	return ack
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *fakeDispatcher, *httptest.Server) {
	t.Helper()
	d := newFakeDispatcher(t)
	s, err := NewServer(d, opts...)
	require.NoError(t, err)
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		hs.Close()
	})
	return s, d, hs
}

func TestServer_Acks(t *testing.T) {
	_, d, hs := newTestServer(t)
	conn := dial(t, hs)

	ack := roundTrip(t, conn, `{"seq":7,"target":"btn","type":"submit","cancelable":true}`)
	assert.Equal(t, Ack{Seq: 7, DefaultPrevented: true}, ack)

	// Without a seq the message count is echoed
	ack = roundTrip(t, conn, `{"target":"btn","type":"click"}`)
	assert.Equal(t, Ack{Seq: 2}, ack)

	ack = roundTrip(t, conn, `{"target":"#window","type":"scroll","scroll":{"x":1,"y":2}}`)
	assert.Empty(t, ack.Error)
	x, y := d.realm.Window.Scroll()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)

	d.mu.Lock()
	assert.Equal(t, []string{"submit", "click", "scroll"}, d.types)
	d.mu.Unlock()
}

func TestServer_ErrorAcks(t *testing.T) {
	_, _, hs := newTestServer(t)
	conn := dial(t, hs)

	ack := roundTrip(t, conn, `{"target":"btn"`)
	assert.Equal(t, int64(1), ack.Seq)
	assert.Contains(t, ack.Error, "invalid event record")

	ack = roundTrip(t, conn, `{"seq":9,"target":"nope","type":"click"}`)
	assert.Equal(t, int64(9), ack.Seq)
	assert.Contains(t, ack.Error, "unknown target")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2}))
	var bin Ack
	require.NoError(t, conn.ReadJSON(&bin))
	assert.Equal(t, int64(3), bin.Seq)
	assert.Contains(t, bin.Error, "text messages")
}

func TestServer_CommentsNotAcked(t *testing.T) {
	_, _, hs := newTestServer(t)
	conn := dial(t, hs)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("# hello")))
	ack := roundTrip(t, conn, `{"target":"btn","type":"click"}`)
	assert.Equal(t, int64(2), ack.Seq)
}

func TestServer_ReadLimit(t *testing.T) {
	_, _, hs := newTestServer(t, WithReadLimit(32))
	conn := dial(t, hs)

	big := `{"target":"btn","type":"` + strings.Repeat("x", 64) + `"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(big)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestServer_CloseDisconnectsClients(t *testing.T) {
	s, _, hs := newTestServer(t)
	conn := dial(t, hs)
	roundTrip(t, conn, `{"target":"btn","type":"click"}`)

	require.NoError(t, s.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	url := "ws" + strings.TrimPrefix(hs.URL, "http") + Path
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		defer late.Close()
		require.NoError(t, late.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err = late.ReadMessage()
		assert.Error(t, err)
	}
}

func TestServer_Serve(t *testing.T) {
	d := newFakeDispatcher(t)
	s, err := NewServer(d)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+Path, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Empty(t, roundTrip(t, conn, `{"target":"btn","type":"click"}`).Error)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrServerClosed), "Serve() = %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNewServer_Errors(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)

	d := newFakeDispatcher(t)
	_, err = NewServer(d, WithReadLimit(0))
	assert.ErrorContains(t, err, "read limit")
	_, err = NewServer(d, WithPingInterval(0))
	assert.ErrorContains(t, err, "ping interval")
}
